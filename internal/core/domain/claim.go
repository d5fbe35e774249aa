package domain

// ClaimKeyword identifies one of the known sustainability claim types.
type ClaimKeyword string

const (
	ClaimNetZero         ClaimKeyword = "net zero"
	ClaimCarbonNeutral   ClaimKeyword = "carbon neutral"
	ClaimZeroEmissions   ClaimKeyword = "zero emissions"
	ClaimRenewableEnergy ClaimKeyword = "renewable energy"
)

// KnownClaims returns the claim vocabulary in priority order.
func KnownClaims() []ClaimKeyword {
	return []ClaimKeyword{ClaimNetZero, ClaimCarbonNeutral, ClaimZeroEmissions, ClaimRenewableEnergy}
}

// IsEmissionsClaim reports whether the claim asserts something about direct
// carbon emissions, in which case scope metrics are its primary evidence.
func (k ClaimKeyword) IsEmissionsClaim() bool {
	switch k {
	case ClaimNetZero, ClaimCarbonNeutral, ClaimZeroEmissions:
		return true
	default:
		return false
	}
}

// Priority ranks claims for bounding under rate limits; lower is kept first.
func (k ClaimKeyword) Priority() int {
	switch k {
	case ClaimNetZero:
		return 1
	case ClaimCarbonNeutral:
		return 2
	case ClaimZeroEmissions:
		return 3
	case ClaimRenewableEnergy:
		return 4
	default:
		return 99
	}
}

// ExpectedUnits lists the canonical units that count as numeric evidence for
// the claim type. Unit-less metrics are always accepted.
func (k ClaimKeyword) ExpectedUnits() []string {
	if k.IsEmissionsClaim() {
		return []string{"tCO2e"}
	}
	return []string{"MWh", "kWh", "GWh", "%"}
}

// ClaimEvidence carries the flags derived from a claim's surrounding context.
type ClaimEvidence struct {
	HasTargetYear         bool     `json:"has_target_year"`
	HasNumericData        bool     `json:"has_numeric_data"`
	HasCommitmentLanguage bool     `json:"has_commitment_language"`
	KeyPhrases            []string `json:"key_phrases"`
}

// ClaimOccurrence is one detection of a claim keyword on one page. The same
// keyword appearing on several pages yields distinct occurrences. Immutable
// once extracted.
type ClaimOccurrence struct {
	Keyword    ClaimKeyword   `json:"claim"`
	Page       int            `json:"page"`
	Context    string         `json:"context"`
	TargetYear *int           `json:"target_year,omitempty"`
	Evidence   ClaimEvidence  `json:"evidence"`
	Metrics    EvidenceBundle `json:"metrics"`
}

package domain

// ClaimReview is the reasoning service's verdict on a single claim. Score is
// nil only on fallback paths; a validated service response always carries a
// score in [1,5].
type ClaimReview struct {
	Claim     string `json:"claim"`
	Page      int    `json:"page"`
	Score     *int   `json:"score"`
	Reason    string `json:"reason"`
	Citations []int  `json:"citations"`
}

// AuditResult is the outcome of auditing one document's claims. Every code
// path, including all fallbacks, yields a well-formed result: OverallScore is
// nil or in [1,5], and so is each review score.
type AuditResult struct {
	OverallScore   *int          `json:"overall_score"`
	OverallSummary string        `json:"overall_summary"`
	ClaimReviews   []ClaimReview `json:"claim_reviews"`

	// RawResponse holds a truncated copy of an unparseable service reply,
	// kept for debugging only.
	RawResponse string `json:"raw_response,omitempty"`
}

// AuditRequest is the bounded input handed to the reasoning service.
type AuditRequest struct {
	Company  string
	Year     int
	Evidence EvidenceBundle
	Claims   []ClaimOccurrence
}

// FallbackAudit builds the deterministic degraded result used whenever the
// reasoning service could not produce a usable answer. One review per input
// claim, all scores nil.
func FallbackAudit(claims []ClaimOccurrence, reason string) AuditResult {
	reviews := make([]ClaimReview, 0, len(claims))
	for _, c := range claims {
		reviews = append(reviews, ClaimReview{
			Claim:     string(c.Keyword),
			Page:      c.Page,
			Reason:    "Could not evaluate due to processing error",
			Citations: []int{},
		})
	}
	return AuditResult{
		OverallSummary: "Audit failed: " + reason,
		ClaimReviews:   reviews,
	}
}

// PartialAudit marks a reply the service produced but the client could not
// decode after exhausting retries. Unlike FallbackAudit it carries no
// per-claim reviews, so consumers can tell the low-confidence partial shape
// from a hard failure; the truncated raw copy is kept for debugging.
func PartialAudit(raw string) AuditResult {
	return AuditResult{
		OverallSummary: "Failed to parse AI response",
		ClaimReviews:   []ClaimReview{},
		RawResponse:    raw,
	}
}

// EmptyAudit is the always-success result for documents with no claims; the
// reasoning service is never contacted for these.
func EmptyAudit() AuditResult {
	return AuditResult{
		OverallSummary: "No sustainability claims found in document",
		ClaimReviews:   []ClaimReview{},
	}
}

// AuditRecord is the final per-document artifact: identity, the bounded
// claims that were audited, and the audit verdict.
type AuditRecord struct {
	DocumentID    string            `json:"document_id"`
	Filename      string            `json:"original_filename"`
	Company       string            `json:"company"`
	Year          int               `json:"year"`
	Source        string            `json:"source"`
	SchemaVersion string            `json:"schema_version"`
	ProcessedAt   string            `json:"processed_at"`
	Claims        []ClaimOccurrence `json:"claims"`
	Audit         AuditResult       `json:"ai_summary"`
	Scope1Total   float64           `json:"scope1_total"`
	Scope2Total   float64           `json:"scope2_total"`
}

package extract

import (
	"regexp"
	"strings"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

// commitmentWords is the fixed commitment-language vocabulary checked
// against claim context.
var commitmentWords = []string{
	"commit", "pledge", "target", "goal", "aim", "strive", "achieve", "reduce",
}

var digitRe = regexp.MustCompile(`\d`)

const maxKeyPhrases = 3

// DetectClaims finds every occurrence of every known claim keyword on one
// page. The same keyword matched at two positions yields two occurrences;
// occurrences are never deduplicated, only their attached metrics are.
func DetectClaims(text string, page int, scope1, scope2, generic []domain.Metric) []domain.ClaimOccurrence {
	lower := strings.ToLower(text)
	var claims []domain.ClaimOccurrence

	for _, keyword := range domain.KnownClaims() {
		kw := string(keyword)
		for pos := strings.Index(lower, kw); pos != -1; {
			context := claimContext(text, pos, len(kw))
			claims = append(claims, buildOccurrence(keyword, page, context, scope1, scope2, generic))

			next := strings.Index(lower[pos+len(kw):], kw)
			if next == -1 {
				break
			}
			pos += len(kw) + next
		}
	}
	return claims
}

func buildOccurrence(keyword domain.ClaimKeyword, page int, context string, scope1, scope2, generic []domain.Metric) domain.ClaimOccurrence {
	year := targetYear(context)

	occ := domain.ClaimOccurrence{
		Keyword:    keyword,
		Page:       page,
		Context:    context,
		TargetYear: year,
		Evidence: domain.ClaimEvidence{
			HasTargetYear:         year != nil,
			HasNumericData:        digitRe.MatchString(context),
			HasCommitmentLanguage: hasCommitmentLanguage(context),
			KeyPhrases:            keyPhrases(context),
		},
	}

	if keyword.IsEmissionsClaim() {
		occ.Metrics = domain.EvidenceBundle{
			Scope1:  scope1,
			Scope2:  scope2,
			Generic: []domain.Metric{},
		}
	} else {
		occ.Metrics = domain.EvidenceBundle{
			Scope1:  []domain.Metric{},
			Scope2:  []domain.Metric{},
			Generic: FilterMetricsByClaim(generic, keyword),
		}
	}
	return occ
}

// FilterMetricsByClaim keeps metrics whose unit belongs to the claim's
// expected-unit set. Unit-less metrics always pass.
func FilterMetricsByClaim(metrics []domain.Metric, keyword domain.ClaimKeyword) []domain.Metric {
	allowed := make(map[string]bool)
	for _, u := range keyword.ExpectedUnits() {
		allowed[NormalizeUnit(u)] = true
	}

	out := make([]domain.Metric, 0, len(metrics))
	for _, m := range metrics {
		if m.Unit == "" || allowed[m.Unit] {
			out = append(out, m)
		}
	}
	return out
}

func hasCommitmentLanguage(context string) bool {
	lower := strings.ToLower(context)
	for _, w := range commitmentWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// keyPhrases picks up to three evidentiary sentences: ones carrying digits
// or commitment language.
func keyPhrases(context string) []string {
	phrases := make([]string, 0, maxKeyPhrases)
	for _, s := range splitSentences(context) {
		text := strings.TrimSpace(s.text)
		if text == "" {
			continue
		}
		if !digitRe.MatchString(text) && !hasCommitmentLanguage(text) {
			continue
		}
		phrases = append(phrases, text)
		if len(phrases) == maxKeyPhrases {
			break
		}
	}
	return phrases
}

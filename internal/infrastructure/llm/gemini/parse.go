package gemini

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseAuditResponse decodes the model reply into a validated result. It
// tries the raw text first, then a fenced code block, then the widest brace
// span, since models wrap JSON in prose more often than not.
func parseAuditResponse(raw string) (domain.AuditResult, error) {
	candidates := []string{strings.TrimSpace(raw)}
	if match := fencedJSONRe.FindStringSubmatch(raw); match != nil {
		candidates = append(candidates, match[1])
	}
	if span := braceSpan(raw); span != "" {
		candidates = append(candidates, span)
	}

	var lastErr error
	for _, candidate := range candidates {
		var result domain.AuditResult
		if err := json.Unmarshal([]byte(candidate), &result); err != nil {
			lastErr = err
			continue
		}
		if err := validateResult(result); err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("empty response")
	}
	return domain.AuditResult{}, fmt.Errorf("parse audit response: %w", lastErr)
}

func braceSpan(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return ""
}

func validateResult(result domain.AuditResult) error {
	if result.OverallScore == nil {
		return fmt.Errorf("missing overall_score")
	}
	if *result.OverallScore < 1 || *result.OverallScore > 5 {
		return fmt.Errorf("overall_score %d outside [1,5]", *result.OverallScore)
	}
	for idx, review := range result.ClaimReviews {
		if review.Claim == "" {
			return fmt.Errorf("claim_reviews[%d]: missing claim", idx)
		}
		if review.Score == nil {
			return fmt.Errorf("claim_reviews[%d]: missing score", idx)
		}
		if *review.Score < 1 || *review.Score > 5 {
			return fmt.Errorf("claim_reviews[%d]: score %d outside [1,5]", idx, *review.Score)
		}
	}
	return nil
}

func truncateRaw(raw string, limit int) string {
	if len(raw) <= limit {
		return raw
	}
	return raw[:limit]
}

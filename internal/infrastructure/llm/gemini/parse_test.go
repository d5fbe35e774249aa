package gemini

import (
	"strings"
	"testing"
)

const validBody = `{"overall_score": 4, "overall_summary": "mostly substantiated", "claim_reviews": [{"claim": "net zero", "page": 3, "score": 4, "reason": "figures match", "citations": [3]}]}`

func TestParseAuditResponseDirectJSON(t *testing.T) {
	result, err := parseAuditResponse(validBody)
	if err != nil {
		t.Fatalf("parseAuditResponse() error = %v", err)
	}
	if result.OverallScore == nil || *result.OverallScore != 4 {
		t.Fatalf("unexpected overall score: %v", result.OverallScore)
	}
	if len(result.ClaimReviews) != 1 || result.ClaimReviews[0].Claim != "net zero" {
		t.Fatalf("unexpected reviews: %+v", result.ClaimReviews)
	}
}

func TestParseAuditResponseFencedBlock(t *testing.T) {
	raw := "Here is the assessment:\n```json\n" + validBody + "\n```\nLet me know if you need more."
	result, err := parseAuditResponse(raw)
	if err != nil {
		t.Fatalf("parseAuditResponse() error = %v", err)
	}
	if *result.OverallScore != 4 {
		t.Fatalf("unexpected score: %d", *result.OverallScore)
	}
}

func TestParseAuditResponseBraceSpan(t *testing.T) {
	raw := "Assessment follows. " + validBody + " End of assessment."
	result, err := parseAuditResponse(raw)
	if err != nil {
		t.Fatalf("parseAuditResponse() error = %v", err)
	}
	if result.OverallSummary != "mostly substantiated" {
		t.Fatalf("unexpected summary: %q", result.OverallSummary)
	}
}

func TestParseAuditResponseRejectsOutOfRangeScore(t *testing.T) {
	raw := `{"overall_score": 9, "overall_summary": "x", "claim_reviews": []}`
	if _, err := parseAuditResponse(raw); err == nil {
		t.Fatalf("expected validation error for score 9")
	}
}

func TestParseAuditResponseRejectsMissingReviewScore(t *testing.T) {
	raw := `{"overall_score": 3, "overall_summary": "x", "claim_reviews": [{"claim": "net zero", "page": 1, "reason": "r"}]}`
	if _, err := parseAuditResponse(raw); err == nil {
		t.Fatalf("expected validation error for scoreless review")
	}
}

func TestParseAuditResponseRejectsReviewWithoutClaim(t *testing.T) {
	raw := `{"overall_score": 3, "overall_summary": "x", "claim_reviews": [{"page": 1, "score": 3, "reason": "r"}]}`
	if _, err := parseAuditResponse(raw); err == nil {
		t.Fatalf("expected validation error for claimless review")
	}
}

func TestParseAuditResponseRejectsProse(t *testing.T) {
	if _, err := parseAuditResponse("I cannot assess this document."); err == nil {
		t.Fatalf("expected parse error for plain prose")
	}
}

func TestTruncateRaw(t *testing.T) {
	long := strings.Repeat("x", 700)
	if got := truncateRaw(long, rawResponseLimit); len(got) != rawResponseLimit {
		t.Fatalf("expected %d chars, got %d", rawResponseLimit, len(got))
	}
	if got := truncateRaw("short", rawResponseLimit); got != "short" {
		t.Fatalf("short input must pass through, got %q", got)
	}
}

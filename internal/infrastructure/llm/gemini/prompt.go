package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

func buildAuditPrompt(req domain.AuditRequest) string {
	evidence, _ := json.MarshalIndent(req.Evidence, "", "  ")

	var claims strings.Builder
	for idx, claim := range req.Claims {
		claims.WriteString(fmt.Sprintf("[%d] claim=%q page=%d", idx+1, claim.Keyword, claim.Page))
		if claim.TargetYear != nil {
			claims.WriteString(fmt.Sprintf(" target_year=%d", *claim.TargetYear))
		}
		claims.WriteString("\ncontext: " + claim.Context + "\n\n")
	}

	return fmt.Sprintf(`You are an ESG claims auditor. Assess whether the sustainability claims below are substantiated by the extracted evidence for %s (reporting year %d).

Score each claim 1 to 5: 1 means no supporting evidence, 5 means fully substantiated with verifiable figures.

Return a strict JSON object with exactly these keys:
overall_score (integer 1-5), overall_summary (string), claim_reviews (array of objects with keys claim, page, score, reason, citations where citations is an array of page numbers).
No markdown, no extra keys.

Claims:
%sExtracted evidence:
%s
`, req.Company, req.Year, claims.String(), evidence)
}

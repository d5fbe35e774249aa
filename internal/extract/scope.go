package extract

import (
	"regexp"
	"strings"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

// Ordered pattern lists per emissions class. All matching patterns
// contribute independently; per-page deduplication removes the redundancy.
var (
	scope1Patterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Scope\s*1[:\s]+([\d,]+(?:\.\d+)?)\s*(?:tCO2e|tCO2)?`),
		regexp.MustCompile(`(?i)Scope\s*1\s+emissions?[:\s]+([\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)Direct\s+emissions[:\s]+([\d,]+(?:\.\d+)?)`),
	}
	scope2Patterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Scope\s*2[:\s]+([\d,]+(?:\.\d+)?)\s*(?:tCO2e|tCO2)?`),
		regexp.MustCompile(`(?i)Scope\s*2\s+emissions?[:\s]+([\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)Indirect\s+emissions[:\s]+([\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)Energy\s+indirect[:\s]+([\d,]+(?:\.\d+)?)`),
	}
)

var (
	scope1RowKeywords = []string{"scope 1", "scope1", "direct emission"}
	scope2RowKeywords = []string{"scope 2", "scope2", "indirect emission", "energy indirect"}
)

// ScopeMetrics extracts scope 1 and scope 2 emissions figures from free
// text. Matches always carry the canonical tCO2e unit.
func ScopeMetrics(text string, page int) (scope1, scope2 []domain.Metric) {
	clean := strings.ReplaceAll(text, "\n", " ")
	scope1 = matchScope(clean, page, scope1Patterns)
	scope2 = matchScope(clean, page, scope2Patterns)
	return scope1, scope2
}

func matchScope(text string, page int, patterns []*regexp.Regexp) []domain.Metric {
	var out []domain.Metric
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, ok := ParseNumber(m[1])
			if !ok || v <= 0 {
				continue
			}
			out = append(out, domain.Metric{Value: v, Unit: "tCO2e", Page: page})
		}
	}
	return out
}

// TableScopeMetrics scans one extracted table. A row whose concatenated cell
// text names an emissions class contributes its numeric cells, skipping the
// label cell.
func TableScopeMetrics(table [][]string, page int) (scope1, scope2 []domain.Metric) {
	if len(table) < 2 {
		return nil, nil
	}
	for _, row := range table {
		if len(row) == 0 {
			continue
		}
		rowText := strings.ToLower(strings.Join(row, " "))
		if containsAny(rowText, scope1RowKeywords) {
			scope1 = append(scope1, rowMetrics(row, page)...)
		}
		if containsAny(rowText, scope2RowKeywords) {
			scope2 = append(scope2, rowMetrics(row, page)...)
		}
	}
	return scope1, scope2
}

func rowMetrics(row []string, page int) []domain.Metric {
	var out []domain.Metric
	for _, cell := range row[1:] {
		if cell == "" {
			continue
		}
		v, ok := ParseNumber(cell)
		if !ok || v <= 0 {
			continue
		}
		out = append(out, domain.Metric{Value: v, Unit: "tCO2e", Page: page})
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

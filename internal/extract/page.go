package extract

import "github.com/mkrivosheev/esg-auditor/internal/core/domain"

// Page runs the full extraction over one page's text and tables: scope
// metrics from text and tables, generic metrics, per-page deduplication, and
// claim detection with metrics attached. Callers handle page read failures;
// an empty text and nil tables simply produce empty results.
func Page(text string, tables [][][]string, page int) (domain.PageEvidence, []domain.ClaimOccurrence) {
	s1Text, s2Text := ScopeMetrics(text, page)

	var s1Table, s2Table []domain.Metric
	for _, table := range tables {
		t1, t2 := TableScopeMetrics(table, page)
		s1Table = append(s1Table, t1...)
		s2Table = append(s2Table, t2...)
	}

	scope1 := DedupeOnPage(append(s1Text, s1Table...))
	scope2 := DedupeOnPage(append(s2Text, s2Table...))
	generic := DedupeOnPage(GenericMetrics(text, page))

	evidence := domain.PageEvidence{
		Page:    page,
		Scope1:  scope1,
		Scope2:  scope2,
		Generic: generic,
	}
	claims := DetectClaims(text, page, scope1, scope2, generic)
	return evidence, claims
}

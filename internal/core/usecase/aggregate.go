package usecase

import (
	"sort"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

// MergeEvidence concatenates per-page metric lists into one document-level
// bundle, in page order, without deduplication.
func MergeEvidence(pages []domain.PageEvidence) domain.EvidenceBundle {
	bundle := domain.EvidenceBundle{
		Scope1:  []domain.Metric{},
		Scope2:  []domain.Metric{},
		Generic: []domain.Metric{},
	}
	for _, p := range pages {
		bundle.Scope1 = append(bundle.Scope1, p.Scope1...)
		bundle.Scope2 = append(bundle.Scope2, p.Scope2...)
		bundle.Generic = append(bundle.Generic, p.Generic...)
	}
	return bundle
}

// DedupeMetrics removes (value, page) duplicates within one category. When a
// unit-less entry and a unit-carrying entry share a key, the one with a unit
// wins; ties keep the first-seen entry. The operation is idempotent.
func DedupeMetrics(metrics []domain.Metric) []domain.Metric {
	type key struct {
		value float64
		page  int
	}
	index := make(map[key]int, len(metrics))
	out := make([]domain.Metric, 0, len(metrics))

	for _, m := range metrics {
		k := key{value: m.Value, page: m.Page}
		at, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, m)
			continue
		}
		if out[at].Unit == "" && m.Unit != "" {
			out[at] = m
		}
	}
	return out
}

// SampleByPage bounds a metric list to cap entries by proportional per-page
// sampling: group by page, give each page a quota of max(1, cap/pages), and
// take the first quota entries per page in ascending page order until the
// cap is reached.
func SampleByPage(metrics []domain.Metric, limit int) []domain.Metric {
	if limit <= 0 || len(metrics) <= limit {
		return metrics
	}

	byPage := make(map[int][]domain.Metric)
	for _, m := range metrics {
		byPage[m.Page] = append(byPage[m.Page], m)
	}

	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	quota := limit / len(pages)
	if quota < 1 {
		quota = 1
	}

	sampled := make([]domain.Metric, 0, limit)
	for _, p := range pages {
		pageMetrics := byPage[p]
		if len(pageMetrics) > quota {
			pageMetrics = pageMetrics[:quota]
		}
		sampled = append(sampled, pageMetrics...)
		if len(sampled) >= limit {
			break
		}
	}
	if len(sampled) > limit {
		sampled = sampled[:limit]
	}
	return sampled
}

// PrioritizeClaims bounds the claim list to cap entries by keyword priority
// rank, tie-broken by ascending page. The sort is stable, so kept claims
// keep their relative order within equal keys.
func PrioritizeClaims(claims []domain.ClaimOccurrence, limit int) []domain.ClaimOccurrence {
	if limit <= 0 || len(claims) <= limit {
		return claims
	}

	sorted := make([]domain.ClaimOccurrence, len(claims))
	copy(sorted, claims)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Keyword.Priority(), sorted[j].Keyword.Priority()
		if pi != pj {
			return pi < pj
		}
		return sorted[i].Page < sorted[j].Page
	})
	return sorted[:limit]
}

package usecase

import (
	"reflect"
	"testing"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

func TestDedupeMetricsByValueAndPage(t *testing.T) {
	in := []domain.Metric{
		{Value: 100, Unit: "tCO2e", Page: 1},
		{Value: 100, Unit: "tCO2e", Page: 1},
		{Value: 100, Unit: "tCO2e", Page: 2},
		{Value: 200, Page: 1},
	}
	out := DedupeMetrics(in)
	if len(out) != 3 {
		t.Fatalf("expected 3 metrics after dedupe, got %d: %+v", len(out), out)
	}
}

func TestDedupeMetricsPrefersUnitCarryingEntry(t *testing.T) {
	in := []domain.Metric{
		{Value: 500, Page: 3},
		{Value: 500, Unit: "MWh", Page: 3},
	}
	out := DedupeMetrics(in)
	if len(out) != 1 || out[0].Unit != "MWh" {
		t.Fatalf("expected the MWh entry to win, got %+v", out)
	}
}

func TestDedupeMetricsIsIdempotent(t *testing.T) {
	in := []domain.Metric{
		{Value: 100, Unit: "tCO2e", Page: 1},
		{Value: 100, Page: 1},
		{Value: 42, Page: 2},
		{Value: 42, Unit: "%", Page: 2},
	}
	once := DedupeMetrics(in)
	twice := DedupeMetrics(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("dedupe not idempotent: %+v vs %+v", once, twice)
	}
}

func TestSampleByPageProportionalQuota(t *testing.T) {
	// 60 metrics over 4 pages with cap 50: quota max(1, 50/4)=12 per page,
	// pages processed in ascending order.
	var in []domain.Metric
	for page := 1; page <= 4; page++ {
		for i := 0; i < 15; i++ {
			in = append(in, domain.Metric{Value: float64(page*100 + i), Page: page})
		}
	}

	out := SampleByPage(in, 50)
	if len(out) > 50 {
		t.Fatalf("sampling exceeded cap: %d", len(out))
	}

	perPage := map[int]int{}
	for _, m := range out {
		perPage[m.Page]++
	}
	for page, n := range perPage {
		if n > 12 {
			t.Fatalf("page %d contributed %d metrics, quota is 12", page, n)
		}
	}
	if out[0].Page != 1 {
		t.Fatalf("expected ascending page order, first metric on page %d", out[0].Page)
	}
}

func TestSampleByPageNoOpUnderCap(t *testing.T) {
	in := []domain.Metric{{Value: 1, Page: 1}, {Value: 2, Page: 2}}
	out := SampleByPage(in, 50)
	if len(out) != 2 {
		t.Fatalf("expected untouched list, got %d items", len(out))
	}
}

func TestPrioritizeClaimsOrderAndBound(t *testing.T) {
	var claims []domain.ClaimOccurrence
	for page := 1; page <= 10; page++ {
		claims = append(claims,
			domain.ClaimOccurrence{Keyword: domain.ClaimRenewableEnergy, Page: page},
			domain.ClaimOccurrence{Keyword: domain.ClaimNetZero, Page: page},
		)
	}

	out := PrioritizeClaims(claims, 15)
	if len(out) != 15 {
		t.Fatalf("expected 15 claims, got %d", len(out))
	}

	// All 10 net zero claims outrank renewable energy ones.
	for i := 0; i < 10; i++ {
		if out[i].Keyword != domain.ClaimNetZero {
			t.Fatalf("position %d: expected net zero, got %q", i, out[i].Keyword)
		}
		if i > 0 && out[i].Page < out[i-1].Page {
			t.Fatalf("page tie-break violated at %d: %+v", i, out[:i+1])
		}
	}
	for i := 10; i < 15; i++ {
		if out[i].Keyword != domain.ClaimRenewableEnergy {
			t.Fatalf("position %d: expected renewable energy, got %q", i, out[i].Keyword)
		}
	}
}

func TestPrioritizeClaimsNeverGrows(t *testing.T) {
	claims := []domain.ClaimOccurrence{
		{Keyword: domain.ClaimCarbonNeutral, Page: 2},
		{Keyword: domain.ClaimNetZero, Page: 5},
	}
	out := PrioritizeClaims(claims, 15)
	if len(out) != 2 {
		t.Fatalf("bounding must not grow the list: %d", len(out))
	}
}

func TestMergeEvidencePreservesPageOrder(t *testing.T) {
	pages := []domain.PageEvidence{
		{Page: 1, Generic: []domain.Metric{{Value: 1, Page: 1}}},
		{Page: 2, Generic: []domain.Metric{{Value: 2, Page: 2}}, Scope1: []domain.Metric{{Value: 10, Unit: "tCO2e", Page: 2}}},
	}
	bundle := MergeEvidence(pages)
	if len(bundle.Generic) != 2 || bundle.Generic[0].Page != 1 || bundle.Generic[1].Page != 2 {
		t.Fatalf("unexpected merged generics: %+v", bundle.Generic)
	}
	if len(bundle.Scope1) != 1 || bundle.Scope1[0].Value != 10 {
		t.Fatalf("unexpected merged scope1: %+v", bundle.Scope1)
	}
}

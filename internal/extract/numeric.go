// Package extract turns raw page text and table rows into normalized
// metrics and claim occurrences. Everything here is pure: no I/O, no
// network, page-scoped inputs in, domain values out.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

// numberUnitRe matches a number with optional thousands separators and
// decimals, followed by an optional unit from the known vocabulary.
var numberUnitRe = regexp.MustCompile(
	`(?i)(\d{1,3}(?:[,\s]?\d{3})*(?:\.\d+)?)\s*` +
		`(tCO2e|tCO2|tonnes\s+CO2e?|t\s+CO2e?|kg|tonnes?|%|percent|MWh|kWh|GWh|L|liters?|m3|m³)?`)

// ParseNumber parses a matched numeric string, tolerating commas and spaces
// as thousands separators and a trailing dot. The second result is false for
// anything that does not parse to a finite number.
func ParseNumber(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimRight(cleaned, ".")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeUnit maps the many unit spellings seen in reports onto a small
// canonical set: tCO2e, GWh, MWh, kWh, %, tonnes, kg, m3, L.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return ""
	}

	switch {
	case strings.Contains(u, "tco2e"), strings.Contains(u, "tonnes co2e"), strings.Contains(u, "t co2e"):
		return "tCO2e"
	case strings.Contains(u, "tco2"), strings.Contains(u, "t co2"):
		return "tCO2e"
	case strings.Contains(u, "gwh"):
		return "GWh"
	case strings.Contains(u, "mwh"):
		return "MWh"
	case strings.Contains(u, "kwh"):
		return "kWh"
	case u == "%", strings.Contains(u, "percent"):
		return "%"
	case strings.Contains(u, "tonne"), u == "t":
		return "tonnes"
	case u == "kg":
		return "kg"
	case u == "m3", u == "m³":
		return "m3"
	case u == "l", strings.HasPrefix(u, "liter"):
		return "L"
	}
	return unit
}

// GenericMetrics extracts every number+unit occurrence from free text.
// Non-positive values are extraction noise and are dropped.
func GenericMetrics(text string, page int) []domain.Metric {
	matches := numberUnitRe.FindAllStringSubmatch(text, -1)
	metrics := make([]domain.Metric, 0, len(matches))
	for _, m := range matches {
		v, ok := ParseNumber(m[1])
		if !ok || v <= 0 {
			continue
		}
		metrics = append(metrics, domain.Metric{
			Value: v,
			Unit:  NormalizeUnit(m[2]),
			Page:  page,
		})
	}
	return metrics
}

// DedupeOnPage removes (value, unit) duplicates within one page, keeping the
// first occurrence.
func DedupeOnPage(metrics []domain.Metric) []domain.Metric {
	type key struct {
		value float64
		unit  string
	}
	seen := make(map[key]bool, len(metrics))
	out := make([]domain.Metric, 0, len(metrics))
	for _, m := range metrics {
		k := key{value: m.Value, unit: m.Unit}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}

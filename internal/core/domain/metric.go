package domain

// Metric is a single normalized numeric fact extracted from a document page.
// Value is always positive; zero and negative matches are extraction noise
// and never survive the extractor.
type Metric struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Page  int     `json:"page"`
}

// EvidenceBundle groups the deduplicated metrics sent for audit, split by
// emissions class. Field names mirror the intermediate JSON schema.
type EvidenceBundle struct {
	Scope1  []Metric `json:"scope1_emissions_tco2e"`
	Scope2  []Metric `json:"scope2_emissions_tco2e"`
	Generic []Metric `json:"generic_metrics"`
}

func (b EvidenceBundle) Scope1Total() float64 { return sumValues(b.Scope1) }

func (b EvidenceBundle) Scope2Total() float64 { return sumValues(b.Scope2) }

func sumValues(metrics []Metric) float64 {
	var total float64
	for _, m := range metrics {
		total += m.Value
	}
	return total
}

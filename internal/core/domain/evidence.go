package domain

import "time"

// SchemaVersion tags intermediate and processed JSON artifacts.
const SchemaVersion = "0.5"

// PageEvidence holds everything extracted from a single page.
type PageEvidence struct {
	Page    int      `json:"page"`
	Scope1  []Metric `json:"scope1_emissions_tco2e"`
	Scope2  []Metric `json:"scope2_emissions_tco2e"`
	Generic []Metric `json:"generic_metrics"`
}

// ExtractionStats counts page-local failures for the extraction log line.
type ExtractionStats struct {
	TotalPages    int `json:"total_pages"`
	TextFailures  int `json:"text_extraction_failures"`
	TableFailures int `json:"table_extraction_failures"`
}

// Evidence is the per-document intermediate record written by the extract
// stage and consumed by the audit stage. A whole-document open failure yields
// an empty record with ProcessingError set; page-local failures only reduce
// the page's contribution.
type Evidence struct {
	DocumentID      string            `json:"document_id"`
	Filename        string            `json:"original_filename"`
	Company         string            `json:"company"`
	Year            int               `json:"year"`
	Source          string            `json:"source"`
	SchemaVersion   string            `json:"schema_version"`
	ProcessedAt     time.Time         `json:"processed_at"`
	Pages           []PageEvidence    `json:"page_metrics"`
	Claims          []ClaimOccurrence `json:"claims"`
	ProcessingError string            `json:"processing_error,omitempty"`
	Stats           ExtractionStats   `json:"stats"`
}

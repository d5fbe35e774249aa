package domain

import "time"

type ReportStatus string

const (
	StatusQueued     ReportStatus = "queued"
	StatusExtracting ReportStatus = "extracting"
	StatusAuditing   ReportStatus = "auditing"
	StatusHandoff    ReportStatus = "handoff"
	StatusDone       ReportStatus = "done"
	StatusFailed     ReportStatus = "failed"
)

// Report is the row persisted in the relational sink. The store is a
// best-effort consumer: the processed JSON artifact stays the source of
// truth, a store failure never rolls back the pipeline.
type Report struct {
	DocumentID   string            `json:"document_id"`
	Filename     string            `json:"original_filename"`
	Company      string            `json:"company"`
	Year         int               `json:"year"`
	Source       string            `json:"source"`
	Status       ReportStatus      `json:"status"`
	Error        string            `json:"error,omitempty"`
	OverallScore *int              `json:"overall_score,omitempty"`
	Summary      string            `json:"summary,omitempty"`
	Claims       []ClaimOccurrence `json:"claims,omitempty"`
	Scope1Total  float64           `json:"scope1_total"`
	Scope2Total  float64           `json:"scope2_total"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

package domain

import (
	"errors"
	"fmt"
)

// Stage names one phase of the document pipeline. Each stage has its own
// queue and worker pool.
type Stage string

const (
	StageExtract Stage = "extract"
	StageAudit   Stage = "audit"
	StageHandoff Stage = "handoff"
)

func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageExtract, StageAudit, StageHandoff:
		return Stage(s), nil
	default:
		return "", fmt.Errorf("unknown pipeline stage: %q", s)
	}
}

// ExtractPayload points at the raw source document.
type ExtractPayload struct {
	SourcePath string `json:"source_path"`
}

// AuditPayload points at the intermediate evidence record.
type AuditPayload struct {
	EvidencePath string `json:"evidence_path"`
}

// HandoffPayload points at the final audit record for downstream indexing.
type HandoffPayload struct {
	AuditPath string `json:"audit_path"`
}

// Task is one unit of pipeline work. It carries the accumulated document
// identity plus exactly one stage-specific payload matching Stage. Tasks are
// immutable once enqueued: a worker consumes a task and emits a new one for
// the next stage, it never mutates the one it received.
type Task struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"original_filename"`
	Company    string `json:"company"`
	Year       int    `json:"year"`
	Stage      Stage  `json:"stage"`

	Extract *ExtractPayload `json:"extract,omitempty"`
	Audit   *AuditPayload   `json:"audit,omitempty"`
	Handoff *HandoffPayload `json:"handoff,omitempty"`
}

// Validate checks the stage tag and the presence of the matching payload.
func (t *Task) Validate() error {
	if t.DocumentID == "" {
		return WrapError(ErrInvalidTask, "validate task", errors.New("missing document_id"))
	}
	switch t.Stage {
	case StageExtract:
		if t.Extract == nil || t.Extract.SourcePath == "" {
			return WrapError(ErrInvalidTask, "validate task", errors.New("extract task missing source_path"))
		}
	case StageAudit:
		if t.Audit == nil || t.Audit.EvidencePath == "" {
			return WrapError(ErrInvalidTask, "validate task", errors.New("audit task missing evidence_path"))
		}
	case StageHandoff:
		if t.Handoff == nil || t.Handoff.AuditPath == "" {
			return WrapError(ErrInvalidTask, "validate task", errors.New("handoff task missing audit_path"))
		}
	default:
		return WrapError(ErrInvalidTask, "validate task", fmt.Errorf("unknown stage %q", t.Stage))
	}
	return nil
}

// NextAudit builds the successor task for the audit stage, carrying identity
// forward and attaching the evidence location.
func (t Task) NextAudit(evidencePath string) Task {
	return Task{
		DocumentID: t.DocumentID,
		Filename:   t.Filename,
		Company:    t.Company,
		Year:       t.Year,
		Stage:      StageAudit,
		Audit:      &AuditPayload{EvidencePath: evidencePath},
	}
}

// NextHandoff builds the successor task for the handoff stage.
func (t Task) NextHandoff(auditPath string) Task {
	return Task{
		DocumentID: t.DocumentID,
		Filename:   t.Filename,
		Company:    t.Company,
		Year:       t.Year,
		Stage:      StageHandoff,
		Handoff:    &HandoffPayload{AuditPath: auditPath},
	}
}

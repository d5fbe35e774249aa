package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
	"github.com/mkrivosheev/esg-auditor/internal/core/ports"
)

// AuditUseCase runs the audit stage: it aggregates the intermediate
// evidence, bounds the payload, scores claims through the reasoning service
// and hands the document to the handoff stage. The reasoning service never
// fails this stage; only local I/O can.
type AuditUseCase struct {
	artifacts    ports.ArtifactStore
	auditor      ports.ClaimAuditor
	queue        ports.TaskQueue
	reports      ports.ReportRepository
	logger       *slog.Logger
	handoffQueue string

	maxClaims  int
	maxGeneric int
}

func NewAuditUseCase(
	artifacts ports.ArtifactStore,
	auditor ports.ClaimAuditor,
	queue ports.TaskQueue,
	reports ports.ReportRepository,
	logger *slog.Logger,
	handoffQueue string,
	maxClaims, maxGeneric int,
) *AuditUseCase {
	if maxClaims <= 0 {
		maxClaims = 15
	}
	if maxGeneric <= 0 {
		maxGeneric = 50
	}
	return &AuditUseCase{
		artifacts:    artifacts,
		auditor:      auditor,
		queue:        queue,
		reports:      reports,
		logger:       logger,
		handoffQueue: handoffQueue,
		maxClaims:    maxClaims,
		maxGeneric:   maxGeneric,
	}
}

func (uc *AuditUseCase) Handle(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if task.Stage != domain.StageAudit {
		return domain.WrapError(domain.ErrInvalidTask, "audit stage", fmt.Errorf("got stage %q", task.Stage))
	}

	var evidence domain.Evidence
	if err := uc.artifacts.LoadJSON(ctx, task.Audit.EvidencePath, &evidence); err != nil {
		uc.setStatus(ctx, task.DocumentID, domain.StatusFailed, err.Error())
		return fmt.Errorf("load intermediate evidence: %w", err)
	}

	uc.setStatus(ctx, task.DocumentID, domain.StatusAuditing, "")

	if evidence.ProcessingError != "" {
		// The extract stage already declared this document failed; record a
		// degraded audit for operators and stop the pipeline here.
		record := uc.buildRecord(task, nil, domain.EvidenceBundle{},
			domain.FallbackAudit(nil, "document extraction failed: "+evidence.ProcessingError))
		uc.persistRecord(ctx, task, record)
		uc.setStatus(ctx, task.DocumentID, domain.StatusFailed, evidence.ProcessingError)
		return domain.WrapError(domain.ErrDocumentFailed, "audit document", errors.New(evidence.ProcessingError))
	}

	bundle := uc.boundEvidence(task, evidence.Pages)
	claims := PrioritizeClaims(evidence.Claims, uc.maxClaims)

	var result domain.AuditResult
	if len(claims) == 0 {
		result = domain.EmptyAudit()
	} else {
		result = uc.auditor.Audit(ctx, domain.AuditRequest{
			Company:  task.Company,
			Year:     task.Year,
			Evidence: bundle,
			Claims:   claims,
		})
	}

	record := uc.buildRecord(task, claims, bundle, result)
	path, err := uc.artifacts.SaveJSON(ctx, artifactKey(task.Company, task.Year), record)
	if err != nil {
		uc.setStatus(ctx, task.DocumentID, domain.StatusFailed, err.Error())
		return fmt.Errorf("save audit record: %w", err)
	}

	// Best-effort relational sink; the JSON artifact is the source of truth.
	if uc.reports != nil {
		if err := uc.reports.SaveAudit(ctx, &record); err != nil {
			uc.logger.Warn("store audit in report sink", "document_id", task.DocumentID, "error", err)
		}
	}

	if err := uc.queue.Enqueue(ctx, uc.handoffQueue, task.NextHandoff(path)); err != nil {
		uc.setStatus(ctx, task.DocumentID, domain.StatusFailed, err.Error())
		return fmt.Errorf("enqueue handoff task: %w", err)
	}

	uc.logger.Info("document audited",
		"document_id", task.DocumentID,
		"company", task.Company,
		"year", task.Year,
		"claims", len(claims),
		"overall_score", scoreAttr(result.OverallScore),
	)
	return nil
}

// boundEvidence merges page evidence, deduplicates each category and samples
// the generic metrics down to the payload cap.
func (uc *AuditUseCase) boundEvidence(task *domain.Task, pages []domain.PageEvidence) domain.EvidenceBundle {
	bundle := MergeEvidence(pages)
	bundle.Scope1 = DedupeMetrics(bundle.Scope1)
	bundle.Scope2 = DedupeMetrics(bundle.Scope2)
	bundle.Generic = DedupeMetrics(bundle.Generic)

	if len(bundle.Generic) > uc.maxGeneric {
		before := len(bundle.Generic)
		bundle.Generic = SampleByPage(bundle.Generic, uc.maxGeneric)
		uc.logger.Info("sampled generic metrics",
			"document_id", task.DocumentID, "before", before, "after", len(bundle.Generic))
	}
	return bundle
}

func (uc *AuditUseCase) buildRecord(task *domain.Task, claims []domain.ClaimOccurrence, bundle domain.EvidenceBundle, result domain.AuditResult) domain.AuditRecord {
	if claims == nil {
		claims = []domain.ClaimOccurrence{}
	}
	return domain.AuditRecord{
		DocumentID:    task.DocumentID,
		Filename:      task.Filename,
		Company:       task.Company,
		Year:          task.Year,
		Source:        "Sustainability Report",
		SchemaVersion: domain.SchemaVersion,
		ProcessedAt:   time.Now().UTC().Format(time.RFC3339),
		Claims:        claims,
		Audit:         result,
		Scope1Total:   bundle.Scope1Total(),
		Scope2Total:   bundle.Scope2Total(),
	}
}

func (uc *AuditUseCase) persistRecord(ctx context.Context, task *domain.Task, record domain.AuditRecord) {
	if _, err := uc.artifacts.SaveJSON(ctx, artifactKey(task.Company, task.Year), record); err != nil {
		uc.logger.Error("save degraded audit record", "document_id", task.DocumentID, "error", err)
	}
}

func (uc *AuditUseCase) setStatus(ctx context.Context, documentID string, status domain.ReportStatus, errMessage string) {
	if uc.reports == nil {
		return
	}
	if err := uc.reports.UpdateStatus(ctx, documentID, status, errMessage); err != nil {
		uc.logger.Warn("update report status", "document_id", documentID, "status", status, "error", err)
	}
}

func scoreAttr(score *int) any {
	if score == nil {
		return nil
	}
	return *score
}

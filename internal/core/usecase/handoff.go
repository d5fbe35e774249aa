package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
	"github.com/mkrivosheev/esg-auditor/internal/core/ports"
)

// HandoffUseCase runs the terminal pipeline stage: it verifies the audit
// record reference, publishes it for the downstream indexing service and
// marks the document done. Indexing itself is outside this pipeline.
type HandoffUseCase struct {
	artifacts  ports.ArtifactStore
	queue      ports.TaskQueue
	reports    ports.ReportRepository
	logger     *slog.Logger
	indexQueue string
}

func NewHandoffUseCase(
	artifacts ports.ArtifactStore,
	queue ports.TaskQueue,
	reports ports.ReportRepository,
	logger *slog.Logger,
	indexQueue string,
) *HandoffUseCase {
	return &HandoffUseCase{
		artifacts:  artifacts,
		queue:      queue,
		reports:    reports,
		logger:     logger,
		indexQueue: indexQueue,
	}
}

func (uc *HandoffUseCase) Handle(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if task.Stage != domain.StageHandoff {
		return domain.WrapError(domain.ErrInvalidTask, "handoff stage", fmt.Errorf("got stage %q", task.Stage))
	}

	// The downstream reference must point at a readable, well-formed audit
	// record; a dangling path is a stage-local failure.
	var record domain.AuditRecord
	if err := uc.artifacts.LoadJSON(ctx, task.Handoff.AuditPath, &record); err != nil {
		uc.setStatus(ctx, task.DocumentID, domain.StatusFailed, err.Error())
		return fmt.Errorf("verify audit record: %w", err)
	}

	if err := uc.queue.Enqueue(ctx, uc.indexQueue, *task); err != nil {
		uc.setStatus(ctx, task.DocumentID, domain.StatusFailed, err.Error())
		return fmt.Errorf("publish indexing reference: %w", err)
	}

	uc.setStatus(ctx, task.DocumentID, domain.StatusDone, "")
	uc.logger.Info("document handed off",
		"document_id", task.DocumentID,
		"company", task.Company,
		"year", task.Year,
		"audit_path", task.Handoff.AuditPath,
	)
	return nil
}

func (uc *HandoffUseCase) setStatus(ctx context.Context, documentID string, status domain.ReportStatus, errMessage string) {
	if uc.reports == nil {
		return
	}
	if err := uc.reports.UpdateStatus(ctx, documentID, status, errMessage); err != nil {
		uc.logger.Warn("update report status", "document_id", documentID, "status", status, "error", err)
	}
}

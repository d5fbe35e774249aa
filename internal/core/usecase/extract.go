package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
	"github.com/mkrivosheev/esg-auditor/internal/core/ports"
	"github.com/mkrivosheev/esg-auditor/internal/extract"
)

// ExtractUseCase runs the extract stage: it opens the source document, walks
// its pages, builds the intermediate evidence record and enqueues the audit
// task. Page-local failures reduce that page's contribution; only a
// whole-document open failure is terminal.
type ExtractUseCase struct {
	openers    map[string]ports.DocumentOpener
	artifacts  ports.ArtifactStore
	queue      ports.TaskQueue
	reports    ports.ReportRepository
	logger     *slog.Logger
	auditQueue string

	onPageFailure func(kind string)
}

func NewExtractUseCase(
	openers map[string]ports.DocumentOpener,
	artifacts ports.ArtifactStore,
	queue ports.TaskQueue,
	reports ports.ReportRepository,
	logger *slog.Logger,
	auditQueue string,
) *ExtractUseCase {
	return &ExtractUseCase{
		openers:    openers,
		artifacts:  artifacts,
		queue:      queue,
		reports:    reports,
		logger:     logger,
		auditQueue: auditQueue,
	}
}

// SetPageFailureObserver installs a callback invoked once per page-local
// extraction failure, with kind "text" or "table".
func (uc *ExtractUseCase) SetPageFailureObserver(fn func(kind string)) {
	uc.onPageFailure = fn
}

func (uc *ExtractUseCase) Handle(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if task.Stage != domain.StageExtract {
		return domain.WrapError(domain.ErrInvalidTask, "extract stage", fmt.Errorf("got stage %q", task.Stage))
	}

	uc.setStatus(ctx, task.DocumentID, domain.StatusExtracting, "")

	evidence, err := uc.extractDocument(ctx, task)
	if err != nil {
		// Whole-document failure: persist the error-tagged record for
		// operators, mark the report failed, enqueue nothing.
		evidence.ProcessingError = err.Error()
		if _, saveErr := uc.artifacts.SaveJSON(ctx, artifactKey(task.Company, task.Year), evidence); saveErr != nil {
			uc.logger.Error("save failed-extraction record", "document_id", task.DocumentID, "error", saveErr)
		}
		uc.setStatus(ctx, task.DocumentID, domain.StatusFailed, err.Error())
		return domain.WrapError(domain.ErrDocumentFailed, "extract document", err)
	}

	path, err := uc.artifacts.SaveJSON(ctx, artifactKey(task.Company, task.Year), evidence)
	if err != nil {
		uc.setStatus(ctx, task.DocumentID, domain.StatusFailed, err.Error())
		return fmt.Errorf("save intermediate evidence: %w", err)
	}

	if err := uc.queue.Enqueue(ctx, uc.auditQueue, task.NextAudit(path)); err != nil {
		uc.setStatus(ctx, task.DocumentID, domain.StatusFailed, err.Error())
		return fmt.Errorf("enqueue audit task: %w", err)
	}

	uc.logger.Info("document extracted",
		"document_id", task.DocumentID,
		"company", task.Company,
		"year", task.Year,
		"pages", evidence.Stats.TotalPages,
		"claims", len(evidence.Claims),
		"text_failures", evidence.Stats.TextFailures,
		"table_failures", evidence.Stats.TableFailures,
	)
	return nil
}

func (uc *ExtractUseCase) extractDocument(ctx context.Context, task *domain.Task) (domain.Evidence, error) {
	evidence := domain.Evidence{
		DocumentID:    task.DocumentID,
		Filename:      task.Filename,
		Company:       task.Company,
		Year:          task.Year,
		Source:        "Sustainability Report",
		SchemaVersion: domain.SchemaVersion,
		ProcessedAt:   time.Now().UTC(),
		Pages:         []domain.PageEvidence{},
		Claims:        []domain.ClaimOccurrence{},
	}

	opener, err := uc.openerFor(task.Extract.SourcePath)
	if err != nil {
		return evidence, err
	}

	doc, err := opener.Open(ctx, task.Extract.SourcePath)
	if err != nil {
		return evidence, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	evidence.Stats.TotalPages = doc.PageCount()
	for page := 1; page <= doc.PageCount(); page++ {
		text, tables := uc.readPage(doc, task.DocumentID, page, &evidence.Stats)
		pageEvidence, claims := extract.Page(text, tables, page)
		evidence.Pages = append(evidence.Pages, pageEvidence)
		evidence.Claims = append(evidence.Claims, claims...)
	}
	return evidence, nil
}

// readPage pulls text and tables for one page, absorbing page-local
// failures: each failed read is logged and counted, and the page simply
// contributes less.
func (uc *ExtractUseCase) readPage(doc ports.PageDocument, documentID string, page int, stats *domain.ExtractionStats) (string, [][][]string) {
	text, err := doc.PageText(page)
	if err != nil {
		stats.TextFailures++
		uc.observePageFailure("text")
		uc.logger.Warn("page text extraction failed", "document_id", documentID, "page", page, "error", err)
		text = ""
	}

	tables, err := doc.PageTables(page)
	if err != nil {
		stats.TableFailures++
		uc.observePageFailure("table")
		uc.logger.Warn("page table extraction failed", "document_id", documentID, "page", page, "error", err)
		tables = nil
	}
	return text, tables
}

func (uc *ExtractUseCase) openerFor(path string) (ports.DocumentOpener, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	opener, ok := uc.openers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported document format: %q", ext)
	}
	return opener, nil
}

func (uc *ExtractUseCase) observePageFailure(kind string) {
	if uc.onPageFailure != nil {
		uc.onPageFailure(kind)
	}
}

// setStatus updates the report row best-effort; the queue and JSON artifacts
// drive the pipeline, not the relational sink.
func (uc *ExtractUseCase) setStatus(ctx context.Context, documentID string, status domain.ReportStatus, errMessage string) {
	if uc.reports == nil {
		return
	}
	if err := uc.reports.UpdateStatus(ctx, documentID, status, errMessage); err != nil {
		uc.logger.Warn("update report status", "document_id", documentID, "status", status, "error", err)
	}
}

// artifactKey builds the stable per-document artifact filename,
// Company_Name_2024.json style.
func artifactKey(company string, year int) string {
	safe := strings.ReplaceAll(company, " ", "_")
	return fmt.Sprintf("%s_%d.json", safe, year)
}

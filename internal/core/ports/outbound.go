package ports

import (
	"context"
	"io"
	"time"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

// TaskQueue is the durable, at-least-once queue the pipeline stages share.
// Dequeue blocks up to wait and returns (nil, nil) when no task arrived,
// allowing periodic liveness checks and graceful shutdown polling.
type TaskQueue interface {
	Enqueue(ctx context.Context, queue string, task domain.Task) error
	Dequeue(ctx context.Context, queue string, wait time.Duration) (*domain.Task, error)
}

// PageDocument exposes a document's pages sequentially. Page numbers are
// 1-based. Page-level failures are returned per call and are non-fatal for
// the document.
type PageDocument interface {
	PageCount() int
	PageText(page int) (string, error)
	PageTables(page int) ([][][]string, error)
	Close() error
}

// DocumentOpener opens a stored source document for page-sequential reads.
type DocumentOpener interface {
	Open(ctx context.Context, path string) (PageDocument, error)
}

// ClaimAuditor scores claims against evidence via the external reasoning
// service. It never fails: every exit path yields a well-formed AuditResult,
// possibly a low-confidence fallback.
type ClaimAuditor interface {
	Audit(ctx context.Context, req domain.AuditRequest) domain.AuditResult
}

// ArtifactStore persists intermediate and processed JSON records.
type ArtifactStore interface {
	SaveJSON(ctx context.Context, key string, v any) (string, error)
	LoadJSON(ctx context.Context, path string, v any) error
}

// ObjectStorage stores raw source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Path(key string) string
}

// ReportRepository is the best-effort relational sink for final results and
// stage status.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	UpdateStatus(ctx context.Context, documentID string, status domain.ReportStatus, errMessage string) error
	SaveAudit(ctx context.Context, record *domain.AuditRecord) error
}

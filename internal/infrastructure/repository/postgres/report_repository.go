package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

// ReportRepository mirrors pipeline progress and audit outcomes into
// Postgres for querying. It is a best-effort sink: callers treat its
// failures as warnings, the JSON artifacts stay authoritative.
type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS company_reports (
	document_id TEXT PRIMARY KEY,
	original_filename TEXT NOT NULL,
	company TEXT NOT NULL,
	year INT NOT NULL,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	overall_score INT,
	summary TEXT,
	claims JSONB NOT NULL DEFAULT '[]'::jsonb,
	scope1_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	scope2_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_company_reports_status ON company_reports(status);
CREATE INDEX IF NOT EXISTS idx_company_reports_company_year ON company_reports(company, year);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO company_reports (
	document_id, original_filename, company, year, source, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (document_id) DO NOTHING
`,
		report.DocumentID, report.Filename, report.Company, report.Year, report.Source,
		string(report.Status), report.Error, report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, documentID string, status domain.ReportStatus, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE company_reports
SET status = $2, error_message = $3, updated_at = $4
WHERE document_id = $1
`, documentID, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	return nil
}

// SaveAudit upserts the audit verdict so a re-run of the same document
// overwrites its previous row instead of duplicating it.
func (r *ReportRepository) SaveAudit(ctx context.Context, record *domain.AuditRecord) error {
	claimsJSON, err := json.Marshal(record.Claims)
	if err != nil {
		return fmt.Errorf("marshal claims: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
INSERT INTO company_reports (
	document_id, original_filename, company, year, source, status,
	overall_score, summary, claims, scope1_total, scope2_total, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
ON CONFLICT (document_id) DO UPDATE SET
	overall_score = EXCLUDED.overall_score,
	summary = EXCLUDED.summary,
	claims = EXCLUDED.claims,
	scope1_total = EXCLUDED.scope1_total,
	scope2_total = EXCLUDED.scope2_total,
	updated_at = EXCLUDED.updated_at
`,
		record.DocumentID, record.Filename, record.Company, record.Year, record.Source,
		string(domain.StatusAuditing), record.Audit.OverallScore, record.Audit.OverallSummary,
		claimsJSON, record.Scope1Total, record.Scope2Total, now,
	)
	if err != nil {
		return fmt.Errorf("upsert audit: %w", err)
	}
	return nil
}

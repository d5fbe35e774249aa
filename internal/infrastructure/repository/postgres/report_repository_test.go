package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*ReportRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ReportRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestCreateInsertsReportRow(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO company_reports").
		WithArgs("doc-1", "Acme_Corp_2024.pdf", "Acme Corp", 2024, "Sustainability Report",
			string(domain.StatusQueued), "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Report{
		DocumentID: "doc-1",
		Filename:   "Acme_Corp_2024.pdf",
		Company:    "Acme Corp",
		Year:       2024,
		Source:     "Sustainability Report",
		Status:     domain.StatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusWritesErrorMessage(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE company_reports").
		WithArgs("doc-1", string(domain.StatusFailed), "open document: corrupt file", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "doc-1", domain.StatusFailed, "open document: corrupt file")
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveAuditUpsertsVerdict(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	score := 4
	mock.ExpectExec("INSERT INTO company_reports").
		WithArgs("doc-1", "Acme_Corp_2024.pdf", "Acme Corp", 2024, "Sustainability Report",
			string(domain.StatusAuditing), &score, "mostly substantiated",
			sqlmock.AnyArg(), 1234.5, 240.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveAudit(context.Background(), &domain.AuditRecord{
		DocumentID:  "doc-1",
		Filename:    "Acme_Corp_2024.pdf",
		Company:     "Acme Corp",
		Year:        2024,
		Source:      "Sustainability Report",
		Claims:      []domain.ClaimOccurrence{{Keyword: domain.ClaimNetZero, Page: 3}},
		Audit:       domain.AuditResult{OverallScore: &score, OverallSummary: "mostly substantiated"},
		Scope1Total: 1234.5,
		Scope2Total: 240.0,
	})
	if err != nil {
		t.Fatalf("SaveAudit() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

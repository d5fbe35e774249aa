package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
	"github.com/mkrivosheev/esg-auditor/internal/core/ports"
)

// IngestUseCase registers a raw document into the pipeline: it copies the
// source into raw storage, creates the report row and enqueues the extract
// task.
type IngestUseCase struct {
	storage      ports.ObjectStorage
	queue        ports.TaskQueue
	reports      ports.ReportRepository
	logger       *slog.Logger
	extractQueue string
}

func NewIngestUseCase(
	storage ports.ObjectStorage,
	queue ports.TaskQueue,
	reports ports.ReportRepository,
	logger *slog.Logger,
	extractQueue string,
) *IngestUseCase {
	return &IngestUseCase{
		storage:      storage,
		queue:        queue,
		reports:      reports,
		logger:       logger,
		extractQueue: extractQueue,
	}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, filename string, body io.Reader) (*domain.Task, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save raw document: %w", err)
	}

	company, year := ParseIdentity(filename)
	task := domain.Task{
		DocumentID: id,
		Filename:   filename,
		Company:    company,
		Year:       year,
		Stage:      domain.StageExtract,
		Extract:    &domain.ExtractPayload{SourcePath: uc.storage.Path(storageKey)},
	}

	if uc.reports != nil {
		now := time.Now().UTC()
		report := &domain.Report{
			DocumentID: id,
			Filename:   filename,
			Company:    company,
			Year:       year,
			Source:     "Sustainability Report",
			Status:     domain.StatusQueued,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := uc.reports.Create(ctx, report); err != nil {
			uc.logger.Warn("create report row", "document_id", id, "error", err)
		}
	}

	if err := uc.queue.Enqueue(ctx, uc.extractQueue, task); err != nil {
		return nil, fmt.Errorf("enqueue extract task: %w", err)
	}

	uc.logger.Info("document ingested", "document_id", id, "company", company, "year", year)
	return &task, nil
}

// ParseIdentity derives company and reporting year from a filename like
// Company_Name_2024.pdf. A missing or malformed year falls back to the
// current year.
func ParseIdentity(filename string) (string, int) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if idx := strings.LastIndex(base, "_"); idx > 0 {
		yearPart := base[idx+1:]
		if len(yearPart) == 4 {
			if year, err := strconv.Atoi(yearPart); err == nil {
				company := strings.ReplaceAll(base[:idx], "_", " ")
				return company, year
			}
		}
	}
	return strings.ReplaceAll(base, "_", " "), time.Now().UTC().Year()
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}

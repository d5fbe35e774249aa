package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mkrivosheev/esg-auditor/internal/bootstrap"
	"github.com/mkrivosheev/esg-auditor/internal/config"
	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
	"github.com/mkrivosheev/esg-auditor/internal/observability/logging"
)

// ingest registers report files with the pipeline:
//
//	ingest Acme_Corp_2024.pdf Green_Energy_Ltd_2023.xlsx
func main() {
	os.Exit(run())
}

// run returns the exit code instead of calling os.Exit so deferred cleanup,
// the queue connection flush included, happens before the process ends.
func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <report-file> [<report-file> ...]\n", filepath.Base(os.Args[0]))
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	logger := logging.NewJSONLogger("esg-ingest", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		return 1
	}
	defer app.Close()

	return ingestAll(ctx, app.IngestUC, os.Stdout, logger, os.Args[1:])
}

type documentIngester interface {
	Ingest(ctx context.Context, filename string, body io.Reader) (*domain.Task, error)
}

func ingestAll(ctx context.Context, ing documentIngester, out io.Writer, logger *slog.Logger, paths []string) int {
	code := 0
	for _, path := range paths {
		task, err := ingestFile(ctx, ing, path)
		if err != nil {
			logger.Error("ingest failed", "path", path, "error", err)
			code = 1
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%d\t%s\n", task.DocumentID, task.Company, task.Year, path)
	}
	return code
}

func ingestFile(ctx context.Context, ing documentIngester, path string) (*domain.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	return ing.Ingest(ctx, filepath.Base(path), f)
}

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkrivosheev/esg-auditor/internal/config"
	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
	"github.com/mkrivosheev/esg-auditor/internal/core/ports"
	"github.com/mkrivosheev/esg-auditor/internal/core/usecase"
	"github.com/mkrivosheev/esg-auditor/internal/infrastructure/document/pdf"
	"github.com/mkrivosheev/esg-auditor/internal/infrastructure/document/xlsx"
	"github.com/mkrivosheev/esg-auditor/internal/infrastructure/llm/gemini"
	"github.com/mkrivosheev/esg-auditor/internal/infrastructure/queue/nats"
	"github.com/mkrivosheev/esg-auditor/internal/infrastructure/repository/postgres"
	"github.com/mkrivosheev/esg-auditor/internal/infrastructure/resilience"
	"github.com/mkrivosheev/esg-auditor/internal/infrastructure/storage/localfs"
	"github.com/mkrivosheev/esg-auditor/internal/observability/metrics"
	"github.com/mkrivosheev/esg-auditor/internal/worker"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.PipelineMetrics

	Runner   *worker.Runner
	IngestUC *usecase.IngestUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	reports := postgres.NewReportRepository(db)
	if err := reports.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	rawStorage, err := localfs.New(cfg.RawStoragePath)
	if err != nil {
		return nil, fmt.Errorf("init raw storage: %w", err)
	}
	intermediate, err := localfs.NewArtifactStore(cfg.IntermediatePath)
	if err != nil {
		return nil, fmt.Errorf("init intermediate store: %w", err)
	}
	processed, err := localfs.NewArtifactStore(cfg.ProcessedPath)
	if err != nil {
		return nil, fmt.Errorf("init processed store: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)
	queue, err := nats.NewWithOptions(cfg.NATSURL, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init task queue: %w", err)
	}

	auditor := gemini.New(cfg.GeminiURL, cfg.GeminiModel, cfg.GeminiAPIKey, gemini.Options{
		Timeout:         time.Duration(cfg.GeminiTimeoutSeconds) * time.Second,
		RequestInterval: time.Duration(cfg.GeminiIntervalSeconds) * time.Second,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
		Logger:          logger,
	})

	pipelineMetrics := metrics.NewPipelineMetrics()

	openers := map[string]ports.DocumentOpener{
		"pdf":  pdf.New(),
		"xlsx": xlsx.New(),
	}

	extractUC := usecase.NewExtractUseCase(openers, intermediate, queue, reports, logger, cfg.AuditQueue)
	extractUC.SetPageFailureObserver(pipelineMetrics.ObservePageFailure)
	auditUC := usecase.NewAuditUseCase(processed, auditor, queue, reports, logger, cfg.HandoffQueue, cfg.MaxClaims, cfg.MaxGenericMetrics)
	handoffUC := usecase.NewHandoffUseCase(processed, queue, reports, logger, cfg.IndexQueue)
	ingestUC := usecase.NewIngestUseCase(rawStorage, queue, reports, logger, cfg.ExtractQueue)

	runner := worker.NewRunner(queue, []worker.Binding{
		{Queue: cfg.ExtractQueue, Stage: domain.StageExtract, Handle: extractUC.Handle},
		{Queue: cfg.AuditQueue, Stage: domain.StageAudit, Handle: auditUC.Handle},
		{Queue: cfg.HandoffQueue, Stage: domain.StageHandoff, Handle: handoffUC.Handle},
	}, logger, worker.Options{
		DequeueWait: time.Duration(cfg.DequeueWaitSeconds) * time.Second,
		ErrorPause:  time.Duration(cfg.ErrorPauseSeconds) * time.Second,
		Metrics:     pipelineMetrics,
	})

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  pipelineMetrics,
		Runner:   runner,
		IngestUC: ingestUC,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

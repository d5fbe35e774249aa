package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
	"github.com/mkrivosheev/esg-auditor/internal/core/ports"
	"github.com/mkrivosheev/esg-auditor/internal/observability/metrics"
)

type Handler func(ctx context.Context, task *domain.Task) error

// Binding ties one queue to the stage handler that consumes it.
type Binding struct {
	Queue  string
	Stage  domain.Stage
	Handle Handler
}

// Runner drives the pipeline: one goroutine per binding polls its queue with
// a short blocking wait and hands tasks to the stage handler. A handler
// error or panic fails that task only; the loop always continues.
type Runner struct {
	queue    ports.TaskQueue
	bindings []Binding
	logger   *slog.Logger
	metrics  *metrics.PipelineMetrics

	dequeueWait time.Duration
	errorPause  time.Duration
}

type Options struct {
	DequeueWait time.Duration
	ErrorPause  time.Duration
	Metrics     *metrics.PipelineMetrics
}

func NewRunner(queue ports.TaskQueue, bindings []Binding, logger *slog.Logger, options Options) *Runner {
	dequeueWait := options.DequeueWait
	if dequeueWait <= 0 {
		dequeueWait = 5 * time.Second
	}
	errorPause := options.ErrorPause
	if errorPause <= 0 {
		errorPause = 5 * time.Second
	}
	return &Runner{
		queue:       queue,
		bindings:    bindings,
		logger:      logger,
		metrics:     options.Metrics,
		dequeueWait: dequeueWait,
		errorPause:  errorPause,
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, binding := range r.bindings {
		wg.Add(1)
		go func(b Binding) {
			defer wg.Done()
			r.consume(ctx, b)
		}(binding)
	}
	wg.Wait()
}

func (r *Runner) consume(ctx context.Context, b Binding) {
	r.logger.Info("stage consumer started", "stage", b.Stage, "queue", b.Queue)

	for ctx.Err() == nil {
		task, err := r.queue.Dequeue(ctx, b.Queue, r.dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.logger.Error("dequeue failed", "stage", b.Stage, "queue", b.Queue, "error", err)
			r.pause(ctx)
			continue
		}
		if task == nil {
			continue
		}
		r.process(ctx, b, task)
	}

	r.logger.Info("stage consumer stopped", "stage", b.Stage)
}

func (r *Runner) process(ctx context.Context, b Binding, task *domain.Task) {
	if r.metrics != nil {
		r.metrics.StartTask()
	}
	started := time.Now()

	err := r.runHandler(ctx, b, task)

	if r.metrics != nil {
		r.metrics.FinishTask(string(b.Stage), time.Since(started), err)
	}
	if err != nil {
		r.logger.Error("task failed",
			"stage", b.Stage,
			"document_id", task.DocumentID,
			"company", task.Company,
			"year", task.Year,
			"error", err,
		)
		return
	}
	r.logger.Debug("task completed",
		"stage", b.Stage,
		"document_id", task.DocumentID,
		"duration_ms", time.Since(started).Milliseconds(),
	)
}

func (r *Runner) runHandler(ctx context.Context, b Binding, task *domain.Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stage panic: %v", rec)
		}
	}()
	return b.Handle(ctx, task)
}

func (r *Runner) pause(ctx context.Context) {
	timer := time.NewTimer(r.errorPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

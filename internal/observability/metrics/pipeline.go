package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics tracks per-stage task throughput and the extraction
// failure counters on a private registry.
type PipelineMetrics struct {
	registry *prometheus.Registry

	tasksTotal    *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	tasksInFlight prometheus.Gauge
	pageFailures  *prometheus.CounterVec
}

func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	tasksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esg",
			Subsystem: "pipeline",
			Name:      "tasks_total",
			Help:      "Total processed tasks by stage and status.",
		},
		[]string{"stage", "status"},
	)
	taskDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "esg",
			Subsystem: "pipeline",
			Name:      "task_duration_seconds",
			Help:      "Task processing duration in seconds by stage and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "status"},
	)
	tasksInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "esg",
			Subsystem: "pipeline",
			Name:      "tasks_in_flight",
			Help:      "Number of tasks currently being processed.",
		},
	)
	pageFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esg",
			Subsystem: "pipeline",
			Name:      "page_failures_total",
			Help:      "Page-local extraction failures by kind (text or table).",
		},
		[]string{"kind"},
	)

	registry.MustRegister(tasksTotal, taskDuration, tasksInFlight, pageFailures)

	return &PipelineMetrics{
		registry:      registry,
		tasksTotal:    tasksTotal,
		taskDuration:  taskDuration,
		tasksInFlight: tasksInFlight,
		pageFailures:  pageFailures,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartTask() {
	m.tasksInFlight.Inc()
}

func (m *PipelineMetrics) FinishTask(stage string, duration time.Duration, err error) {
	m.tasksInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.tasksTotal.WithLabelValues(stage, status).Inc()
	m.taskDuration.WithLabelValues(stage, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObservePageFailure(kind string) {
	m.pageFailures.WithLabelValues(kind).Inc()
}

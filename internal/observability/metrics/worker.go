package metrics

import (
	"net/http"
	"time"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry
	pipeline *PipelineMetrics

	runTotal       *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	runInFlight    prometheus.Gauge
	queueLag       *prometheus.HistogramVec
	chunksTotal    *prometheus.CounterVec
	documentsTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	runTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Total ingestion runs by status.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Ingestion run duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"service", "status"},
	)
	runInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "runs_in_flight",
			Help:      "Number of in-flight ingestion runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "queue_lag_seconds",
			Help:      "Delay between an ingest request and the start of its run.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	chunksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Chunks produced by ingestion runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Knowledge documents seen by ingestion runs by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(runTotal, runDuration, runInFlight, queueLag, chunksTotal, documentsTotal)

	return &WorkerMetrics{
		registry:       registry,
		pipeline:       newPipelineMetrics(service, registry),
		runTotal:       runTotal,
		runDuration:    runDuration,
		runInFlight:    runInFlight,
		queueLag:       queueLag,
		chunksTotal:    chunksTotal,
		documentsTotal: documentsTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) Pipeline() *PipelineMetrics {
	return m.pipeline
}

func (m *WorkerMetrics) StartRun() {
	m.runInFlight.Inc()
}

func (m *WorkerMetrics) FinishRun(service string, duration time.Duration, report domain.IngestReport, err error) {
	m.runInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.runTotal.WithLabelValues(service, status).Inc()
	m.runDuration.WithLabelValues(service, status).Observe(duration.Seconds())

	m.documentsTotal.WithLabelValues(service, "loaded").Add(float64(report.Files))
	m.documentsTotal.WithLabelValues(service, "skipped").Add(float64(report.Skipped))
	m.chunksTotal.WithLabelValues(service, "embedded").Add(float64(report.Embedded))
	m.chunksTotal.WithLabelValues(service, "embed_failed").Add(float64(report.EmbedFailures))
	m.chunksTotal.WithLabelValues(service, "upserted").Add(float64(report.Upserted))
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

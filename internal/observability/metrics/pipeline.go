package metrics

import (
	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics counts retrieval pipeline events. It satisfies ports.PipelineMetrics
// and is registered into the registry of whichever process owns it.
type PipelineMetrics struct {
	service string

	embeddingCorrections *prometheus.CounterVec
	retrievalsTotal      *prometheus.CounterVec
	retrievalFallbacks   *prometheus.CounterVec
	retrievalHits        *prometheus.HistogramVec
	upsertBatchesTotal   *prometheus.CounterVec
	upsertRecordsTotal   *prometheus.CounterVec
}

func newPipelineMetrics(service string, registry *prometheus.Registry) *PipelineMetrics {
	embeddingCorrections := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "dimension_corrections_total",
			Help:      "Embeddings padded or truncated to the configured dimension.",
		},
		[]string{"service", "kind"},
	)
	retrievalsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total routed retrievals by intent and response type.",
		},
		[]string{"service", "intent", "response_type"},
	)
	retrievalFallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "fallback_total",
			Help:      "Retrievals answered with a fixed fallback instead of composed text.",
		},
		[]string{"service", "intent"},
	)
	retrievalHits := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "hits",
			Help:      "Distribution of hits used as composer context.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 15},
		},
		[]string{"service", "intent"},
	)
	upsertBatchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "upsert_batches_total",
			Help:      "Total vector index upsert batches by status.",
		},
		[]string{"service", "status"},
	)
	upsertRecordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "upsert_records_total",
			Help:      "Total records sent to the vector index by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		embeddingCorrections,
		retrievalsTotal,
		retrievalFallbacks,
		retrievalHits,
		upsertBatchesTotal,
		upsertRecordsTotal,
	)

	return &PipelineMetrics{
		service:              service,
		embeddingCorrections: embeddingCorrections,
		retrievalsTotal:      retrievalsTotal,
		retrievalFallbacks:   retrievalFallbacks,
		retrievalHits:        retrievalHits,
		upsertBatchesTotal:   upsertBatchesTotal,
		upsertRecordsTotal:   upsertRecordsTotal,
	}
}

func (m *PipelineMetrics) RecordEmbeddingCorrection(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.embeddingCorrections.WithLabelValues(m.service, kind).Inc()
}

func (m *PipelineMetrics) RecordRetrieval(result domain.SolutionResult) {
	intent := string(result.Intent)
	if intent == "" {
		intent = "unknown"
	}
	m.retrievalsTotal.WithLabelValues(m.service, intent, string(result.ResponseType)).Inc()
	m.retrievalHits.WithLabelValues(m.service, intent).Observe(float64(result.Hits))
	if result.Fallback {
		m.retrievalFallbacks.WithLabelValues(m.service, intent).Inc()
	}
}

func (m *PipelineMetrics) RecordUpsertBatch(ok bool, records int) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.upsertBatchesTotal.WithLabelValues(m.service, status).Inc()
	if records > 0 {
		m.upsertRecordsTotal.WithLabelValues(m.service, status).Add(float64(records))
	}
}

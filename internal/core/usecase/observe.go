package usecase

import (
	"log/slog"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
)

type noopMetrics struct{}

func (noopMetrics) RecordEmbeddingCorrection(string) {}
func (noopMetrics) RecordRetrieval(domain.SolutionResult) {}
func (noopMetrics) RecordUpsertBatch(bool, int) {}

func metricsOrNoop(m ports.PipelineMetrics) ports.PipelineMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
)

const DefaultEmbeddingDimension = 1536

// EmbeddingClient turns text into fixed-width vectors. Provider output of the
// wrong width is zero-padded or truncated so every record in the index shares
// one dimension.
type EmbeddingClient struct {
	provider  ports.Embedder
	dimension int
	logger    *slog.Logger
	metrics   ports.PipelineMetrics
}

func NewEmbeddingClient(
	provider ports.Embedder,
	dimension int,
	logger *slog.Logger,
	metrics ports.PipelineMetrics,
) *EmbeddingClient {
	if dimension <= 0 {
		dimension = DefaultEmbeddingDimension
	}
	return &EmbeddingClient{
		provider:  provider,
		dimension: dimension,
		logger:    loggerOrDefault(logger),
		metrics:   metricsOrNoop(metrics),
	}
}

func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

func (c *EmbeddingClient) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	raw, err := c.provider.EmbedQuery(ctx, text)
	if err != nil {
		c.logger.Error("embedding_failed", "error", err, "text_len", len(text))
		return nil, domain.WrapError(domain.ErrProviderUnavailable, "embed text", err)
	}

	vector := c.fit(raw)
	if vector.IsZero() {
		c.logger.Error("embedding_degenerate", "text_len", len(text))
		return nil, domain.WrapError(domain.ErrDegenerateResult, "embed text", errors.New("all-zero embedding"))
	}
	return vector, nil
}

func (c *EmbeddingClient) fit(raw []float32) domain.EmbeddingVector {
	if len(raw) == c.dimension {
		return domain.EmbeddingVector(raw)
	}

	kind := "padded"
	if len(raw) > c.dimension {
		kind = "truncated"
	}
	c.logger.Warn("embedding_dimension_mismatch", "got", len(raw), "expected", c.dimension, "correction", kind)
	c.metrics.RecordEmbeddingCorrection(kind)

	out := make(domain.EmbeddingVector, c.dimension)
	copy(out, raw)
	return out
}

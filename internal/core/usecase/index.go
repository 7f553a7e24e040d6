package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
)

const UpsertBatchSize = 100

type VectorIndexClient struct {
	store      ports.VectorStore
	embeddings *EmbeddingClient
	logger     *slog.Logger
	metrics    ports.PipelineMetrics
}

func NewVectorIndexClient(
	store ports.VectorStore,
	embeddings *EmbeddingClient,
	logger *slog.Logger,
	metrics ports.PipelineMetrics,
) *VectorIndexClient {
	return &VectorIndexClient{
		store:      store,
		embeddings: embeddings,
		logger:     loggerOrDefault(logger),
		metrics:    metricsOrNoop(metrics),
	}
}

// UpsertAll writes records in fixed-size batches. A failed batch is logged and
// counted; batches already written stay written and later ones still run.
func (c *VectorIndexClient) UpsertAll(ctx context.Context, records []domain.IndexRecord) domain.UpsertReport {
	var report domain.UpsertReport
	for start := 0; start < len(records); start += UpsertBatchSize {
		end := min(start+UpsertBatchSize, len(records))
		batch := records[start:end]
		report.Batches++

		if err := c.store.Upsert(ctx, batch); err != nil {
			report.FailedBatches++
			report.Failed += len(batch)
			c.metrics.RecordUpsertBatch(false, len(batch))
			c.logger.Error("upsert_batch_failed", "batch", report.Batches, "records", len(batch), "error", err)
			continue
		}
		report.Upserted += len(batch)
		c.metrics.RecordUpsertBatch(true, len(batch))
		c.logger.Info("upsert_batch_done", "batch", report.Batches, "records", len(batch))
	}
	return report
}

// Search embeds query and returns at most topK hits by descending score. It
// never fails: embedding or store errors yield an empty result.
func (c *VectorIndexClient) Search(ctx context.Context, query string, topK int, filter domain.SearchFilter) []domain.RetrievalHit {
	vector, err := c.embeddings.Embed(ctx, query)
	if err != nil {
		c.logger.Warn("search_embedding_failed", "doc_type", filter.DocType, "error", err)
		return []domain.RetrievalHit{}
	}

	hits, err := c.store.Query(ctx, vector, topK, filter)
	if err != nil {
		c.logger.Error("search_query_failed", "doc_type", filter.DocType, "top_k", topK, "error", err)
		return []domain.RetrievalHit{}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

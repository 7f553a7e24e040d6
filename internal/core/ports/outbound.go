package ports

import (
	"context"
	"io"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

// Embedder is a raw embedding provider. Output is not validated.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is a raw similarity index.
type VectorStore interface {
	Upsert(ctx context.Context, records []domain.IndexRecord) error
	Query(ctx context.Context, vector domain.EmbeddingVector, topK int, filter domain.SearchFilter) ([]domain.RetrievalHit, error)
}

// TextGenerator is a chat-style text generation provider.
type TextGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// Chunker splits text into semantically usable chunks.
type Chunker interface {
	Split(text string) []string
}

// SourceFile is one entry of a knowledge document source.
type SourceFile struct {
	Name string
	Path string
}

// DocumentSource lists and opens knowledge files for ingestion.
type DocumentSource interface {
	List(ctx context.Context, dir string) ([]SourceFile, error)
	Open(ctx context.Context, file SourceFile) (io.ReadCloser, error)
}

// TextExtractor serializes a knowledge file into text.
type TextExtractor interface {
	Supports(filename string) bool
	Extract(ctx context.Context, filename string, r io.Reader) (string, error)
}

// ClientDirectory looks up prior knowledge about visitors.
type ClientDirectory interface {
	FindClient(ctx context.Context, name, company string) (*domain.ClientProfile, error)
}

// SessionStore persists conversation contexts between tool calls.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*domain.ConversationContext, error)
	Save(ctx context.Context, conv *domain.ConversationContext) error
}

// IngestQueue publishes/consumes ingestion requests.
type IngestQueue interface {
	PublishIngestRequested(ctx context.Context, dir string) error
	SubscribeIngestRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// PipelineMetrics receives retrieval pipeline counters. Implementations must
// be safe for concurrent use.
type PipelineMetrics interface {
	RecordEmbeddingCorrection(kind string)
	RecordRetrieval(result domain.SolutionResult)
	RecordUpsertBatch(ok bool, records int)
}

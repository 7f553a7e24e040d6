package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
)

type IngestUseCase struct {
	source     ports.DocumentSource
	extractor  ports.TextExtractor
	chunker    ports.Chunker
	embeddings *EmbeddingClient
	index      *VectorIndexClient
	logger     *slog.Logger
}

func NewIngestUseCase(
	source ports.DocumentSource,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embeddings *EmbeddingClient,
	index *VectorIndexClient,
	logger *slog.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		source:     source,
		extractor:  extractor,
		chunker:    chunker,
		embeddings: embeddings,
		index:      index,
		logger:     loggerOrDefault(logger),
	}
}

// Run loads every supported file under dir, chunks it, embeds each chunk and
// upserts the result. Record ids are positional over the whole run, so a
// re-run over the same corpus overwrites instead of duplicating.
func (uc *IngestUseCase) Run(ctx context.Context, dir string) (domain.IngestReport, error) {
	report := domain.IngestReport{Dir: dir}

	files, err := uc.source.List(ctx, dir)
	if err != nil {
		return report, fmt.Errorf("list knowledge documents: %w", err)
	}

	chunks := make([]domain.Chunk, 0)
	for _, file := range files {
		if !uc.extractor.Supports(file.Name) {
			uc.logger.Debug("document_ignored", "source", file.Name)
			continue
		}
		doc, err := uc.load(ctx, file)
		if err != nil {
			report.Skipped++
			uc.logger.Warn("document_skipped", "source", file.Name, "error", err)
			continue
		}
		report.Files++

		docChunks := uc.split(doc)
		uc.logger.Info("document_chunked", "source", doc.Source, "doc_type", doc.DocType, "chunks", len(docChunks))
		chunks = append(chunks, docChunks...)
	}
	report.Chunks = len(chunks)

	if len(chunks) == 0 {
		uc.logger.Warn("ingest_no_documents", "dir", dir)
		return report, nil
	}

	records := make([]domain.IndexRecord, 0, len(chunks))
	for pos, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		vector, err := uc.embeddings.Embed(ctx, chunk.Text)
		if err != nil {
			report.EmbedFailures++
			continue
		}
		records = append(records, domain.IndexRecord{
			ID:     domain.RecordID(pos),
			Values: vector,
			Metadata: domain.ChunkMetadata{
				Source:      chunk.Source,
				DocType:     chunk.DocType,
				ChunkID:     chunk.ChunkID,
				TotalChunks: chunk.TotalChunks,
				Text:        chunk.Preview(),
			},
		})
	}
	report.Embedded = len(records)

	upsert := uc.index.UpsertAll(ctx, records)
	report.Upserted = upsert.Upserted
	report.FailedBatches = upsert.FailedBatches

	uc.logger.Info("ingest_done",
		"dir", dir,
		"files", report.Files,
		"skipped", report.Skipped,
		"chunks", report.Chunks,
		"embedded", report.Embedded,
		"upserted", report.Upserted,
		"failed_batches", report.FailedBatches,
	)
	return report, nil
}

func (uc *IngestUseCase) load(ctx context.Context, file ports.SourceFile) (domain.Document, error) {
	rc, err := uc.source.Open(ctx, file)
	if err != nil {
		return domain.Document{}, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	text, err := uc.extractor.Extract(ctx, file.Name, rc)
	if err != nil {
		return domain.Document{}, domain.WrapError(domain.ErrMalformedDocument, "extract "+file.Name, err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.Document{}, domain.WrapError(domain.ErrMalformedDocument, "extract "+file.Name, fmt.Errorf("no text"))
	}
	return domain.Document{
		Source:  file.Name,
		DocType: domain.DocTypeFromFilename(file.Name),
		Text:    text,
	}, nil
}

func (uc *IngestUseCase) split(doc domain.Document) []domain.Chunk {
	parts := uc.chunker.Split(doc.Text)
	out := make([]domain.Chunk, 0, len(parts))
	for i, part := range parts {
		out = append(out, domain.Chunk{
			Text:        part,
			Source:      doc.Source,
			DocType:     doc.DocType,
			ChunkID:     i,
			TotalChunks: len(parts),
		})
	}
	return out
}

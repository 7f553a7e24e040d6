package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

func makeRecords(n int) []domain.IndexRecord {
	out := make([]domain.IndexRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.IndexRecord{ID: domain.RecordID(i), Values: domain.EmbeddingVector{1}})
	}
	return out
}

func TestUpsertAllBatchesAndContinuesPastFailure(t *testing.T) {
	store := &storeFake{failBatch: map[int]bool{2: true}}
	metrics := &metricsFake{}
	client := NewVectorIndexClient(store, nil, nil, metrics)

	report := client.UpsertAll(context.Background(), makeRecords(250))

	if len(store.upserts) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(store.upserts))
	}
	sizes := []int{len(store.upserts[0]), len(store.upserts[1]), len(store.upserts[2])}
	if sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
		t.Fatalf("unexpected batch sizes %v", sizes)
	}
	if store.upserts[2][0].ID != "chunk-200" {
		t.Fatalf("expected third batch to start at chunk-200, got %s", store.upserts[2][0].ID)
	}
	if report.Batches != 3 || report.FailedBatches != 1 || report.Upserted != 150 || report.Failed != 100 {
		t.Fatalf("unexpected report %+v", report)
	}
	if metrics.batchesOK != 2 || metrics.batchesFail != 1 {
		t.Fatalf("unexpected metrics ok=%d fail=%d", metrics.batchesOK, metrics.batchesFail)
	}
}

func TestUpsertAllEmptyIsNoop(t *testing.T) {
	store := &storeFake{}
	report := NewVectorIndexClient(store, nil, nil, nil).UpsertAll(context.Background(), nil)
	if len(store.upserts) != 0 || report.Batches != 0 {
		t.Fatalf("expected no batches, got %+v", report)
	}
}

func TestSearchSortsByDescendingScore(t *testing.T) {
	store := &storeFake{hits: []domain.RetrievalHit{
		{Text: "low", Score: 0.1},
		{Text: "high", Score: 0.9},
		{Text: "mid-a", Score: 0.5},
		{Text: "mid-b", Score: 0.5},
	}}
	embeddings := NewEmbeddingClient(&embedderFake{vector: []float32{1}}, 1, nil, nil)
	client := NewVectorIndexClient(store, embeddings, nil, nil)

	hits := client.Search(context.Background(), "automation", 10, domain.SearchFilter{DocType: domain.DocTypeServices})

	got := make([]string, 0, len(hits))
	for _, h := range hits {
		got = append(got, h.Text)
	}
	want := []string{"high", "mid-a", "mid-b", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if store.queries[0].DocType != domain.DocTypeServices {
		t.Fatalf("expected filter to reach the store, got %+v", store.queries[0])
	}
}

func TestSearchReturnsEmptyOnFailures(t *testing.T) {
	failingEmbeddings := NewEmbeddingClient(&embedderFake{err: errors.New("down")}, 1, nil, nil)
	store := &storeFake{}
	hits := NewVectorIndexClient(store, failingEmbeddings, nil, nil).Search(context.Background(), "q", 5, domain.SearchFilter{})
	if hits == nil || len(hits) != 0 {
		t.Fatalf("expected empty non-nil hits, got %#v", hits)
	}
	if len(store.queries) != 0 {
		t.Fatalf("store must not be queried without a vector")
	}

	embeddings := NewEmbeddingClient(&embedderFake{vector: []float32{1}}, 1, nil, nil)
	hits = NewVectorIndexClient(&storeFake{queryErr: errors.New("timeout")}, embeddings, nil, nil).Search(context.Background(), "q", 5, domain.SearchFilter{})
	if hits == nil || len(hits) != 0 {
		t.Fatalf("expected empty non-nil hits on store error, got %#v", hits)
	}
}

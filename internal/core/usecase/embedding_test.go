package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

func TestEmbedPadsShortVectors(t *testing.T) {
	metrics := &metricsFake{}
	client := NewEmbeddingClient(&embedderFake{vector: []float32{0.5, 0.25}}, 4, nil, metrics)

	vector, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	want := domain.EmbeddingVector{0.5, 0.25, 0, 0}
	if len(vector) != len(want) {
		t.Fatalf("expected %d dims, got %d", len(want), len(vector))
	}
	for i := range want {
		if vector[i] != want[i] {
			t.Fatalf("vector[%d] = %v, want %v", i, vector[i], want[i])
		}
	}
	if len(metrics.corrections) != 1 || metrics.corrections[0] != "padded" {
		t.Fatalf("expected padded correction, got %v", metrics.corrections)
	}
}

func TestEmbedTruncatesLongVectors(t *testing.T) {
	metrics := &metricsFake{}
	client := NewEmbeddingClient(&embedderFake{vector: []float32{1, 2, 3, 4, 5}}, 3, nil, metrics)

	vector, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vector) != 3 || vector[2] != 3 {
		t.Fatalf("unexpected vector %v", vector)
	}
	if len(metrics.corrections) != 1 || metrics.corrections[0] != "truncated" {
		t.Fatalf("expected truncated correction, got %v", metrics.corrections)
	}
}

func TestEmbedRejectsZeroVector(t *testing.T) {
	client := NewEmbeddingClient(&embedderFake{vector: []float32{0, 0, 0}}, 3, nil, nil)

	_, err := client.Embed(context.Background(), "hello")
	if !domain.IsKind(err, domain.ErrDegenerateResult) {
		t.Fatalf("expected degenerate result, got %v", err)
	}
}

func TestEmbedWrapsProviderFailure(t *testing.T) {
	client := NewEmbeddingClient(&embedderFake{err: errors.New("connection refused")}, 3, nil, nil)

	_, err := client.Embed(context.Background(), "hello")
	if !domain.IsKind(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
}

func TestEmbeddingClientDefaultsDimension(t *testing.T) {
	client := NewEmbeddingClient(&embedderFake{}, 0, nil, nil)
	if client.Dimension() != DefaultEmbeddingDimension {
		t.Fatalf("expected default dimension, got %d", client.Dimension())
	}
}

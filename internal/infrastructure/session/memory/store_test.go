package memory

import (
	"context"
	"testing"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

func TestStoreLoadMissing(t *testing.T) {
	_, err := New().Load(context.Background(), "nope")
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreCopiesChallenges(t *testing.T) {
	store := New()
	conv := domain.NewConversationContext("s-1")
	conv.RecordChallenge("routing")
	if err := store.Save(context.Background(), conv); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	conv.Challenges[0] = "mutated"

	loaded, err := store.Load(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Challenges[0] != "routing" {
		t.Fatalf("stored session was mutated through caller slice: %v", loaded.Challenges)
	}
	loaded.RecordChallenge("billing")
	again, _ := store.Load(context.Background(), "s-1")
	if len(again.Challenges) != 1 {
		t.Fatalf("loaded copy leaked into store: %v", again.Challenges)
	}
}

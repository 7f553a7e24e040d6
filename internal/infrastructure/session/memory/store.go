package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

// Store keeps sessions in process memory. Values are copied on the way in
// and out so callers never share a Challenges slice.
type Store struct {
	mu    sync.RWMutex
	items map[string]domain.ConversationContext
}

func New() *Store {
	return &Store{items: make(map[string]domain.ConversationContext)}
}

func (s *Store) Load(_ context.Context, sessionID string) (*domain.ConversationContext, error) {
	s.mu.RLock()
	conv, ok := s.items[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "load session", errors.New(sessionID))
	}
	out := clone(conv)
	return &out, nil
}

func (s *Store) Save(_ context.Context, conv *domain.ConversationContext) error {
	if conv == nil {
		return domain.WrapError(domain.ErrInvalidInput, "save session", errors.New("nil session"))
	}
	s.mu.Lock()
	s.items[conv.SessionID] = clone(*conv)
	s.mu.Unlock()
	return nil
}

func clone(conv domain.ConversationContext) domain.ConversationContext {
	conv.Challenges = append([]string{}, conv.Challenges...)
	return conv
}

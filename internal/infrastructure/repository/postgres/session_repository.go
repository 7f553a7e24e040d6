package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

// SessionRepository stores one JSONB document per conversation session.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*domain.ConversationContext, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT payload
FROM conversation_sessions
WHERE session_id = $1
`, sessionID)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSessionNotFound, "load session", err)
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var conv domain.ConversationContext
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	conv.SessionID = sessionID
	if conv.Challenges == nil {
		conv.Challenges = []string{}
	}
	return &conv, nil
}

func (r *SessionRepository) Save(ctx context.Context, conv *domain.ConversationContext) error {
	if conv == nil {
		return domain.WrapError(domain.ErrInvalidInput, "save session", errors.New("nil session"))
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode session payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO conversation_sessions (session_id, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (session_id) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
`, conv.SessionID, payload, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

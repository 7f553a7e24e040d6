package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// FindClient matches company OR contact name case-insensitively anywhere in
// the stored value. A blank term does not participate in the match.
func (r *ClientRepository) FindClient(ctx context.Context, name, company string) (*domain.ClientProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, company, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(industry, ''), COALESCE(summary, '')
FROM clients
WHERE ($1 <> '' AND company ILIKE $1 ESCAPE '\')
   OR ($2 <> '' AND name ILIKE $2 ESCAPE '\')
ORDER BY updated_at DESC
LIMIT 1
`, likePattern(company), likePattern(name))

	var p domain.ClientProfile
	if err := row.Scan(&p.RecordID, &p.Name, &p.Company, &p.Email, &p.Phone, &p.Industry, &p.Summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrClientNotFound, "find client", err)
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &p, nil
}

func likePattern(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}

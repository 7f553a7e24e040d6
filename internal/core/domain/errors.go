package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTemporary           = errors.New("temporary failure")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrDegenerateResult    = errors.New("degenerate result")
	ErrMalformedDocument   = errors.New("malformed document")
	ErrClientNotFound      = errors.New("client not found")
	ErrSessionNotFound     = errors.New("session not found")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

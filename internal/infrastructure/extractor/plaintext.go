package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

type PlainText struct{}

func (PlainText) Extensions() []string { return []string{".txt", ".md"} }

func (PlainText) Extract(_ context.Context, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text document: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("not valid utf-8")
	}
	return strings.TrimSpace(string(raw)), nil
}

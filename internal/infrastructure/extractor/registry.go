package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format extracts text from one family of file extensions.
type Format interface {
	Extensions() []string
	Extract(ctx context.Context, r io.Reader) (string, error)
}

// Registry dispatches on the lowercased file extension.
type Registry struct {
	byExt map[string]Format
}

func NewRegistry(formats ...Format) *Registry {
	r := &Registry{byExt: make(map[string]Format)}
	for _, f := range formats {
		for _, ext := range f.Extensions() {
			r.byExt[strings.ToLower(ext)] = f
		}
	}
	return r
}

// Default knows every knowledge-file format the ingester reads.
func Default() *Registry {
	return NewRegistry(JSON{}, YAML{}, PlainText{}, PDF{}, XLSX{})
}

func (r *Registry) Supports(filename string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func (r *Registry) Extract(ctx context.Context, filename string, src io.Reader) (string, error) {
	f, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", fmt.Errorf("unsupported file type: %s", filename)
	}
	text, err := f.Extract(ctx, src)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	return text, nil
}

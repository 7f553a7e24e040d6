package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
)

// Source lists knowledge documents from a directory on local disk. Listing is
// confined to basePath: relative directories resolve below it, and anything
// that would leave it is rejected.
type Source struct {
	basePath string
}

func New(basePath string) *Source {
	if basePath == "" {
		basePath = "."
	}
	return &Source{basePath: basePath}
}

// List returns the regular files directly inside dir, sorted by name.
// Subdirectories are not walked.
func (s *Source) List(_ context.Context, dir string) ([]ports.SourceFile, error) {
	root, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}

	out := make([]ports.SourceFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		out = append(out, ports.SourceFile{
			Name: entry.Name(),
			Path: filepath.Join(root, entry.Name()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Source) Open(_ context.Context, file ports.SourceFile) (io.ReadCloser, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// resolve maps dir onto a path inside basePath. The empty string and basePath
// itself both name the root.
func (s *Source) resolve(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" || filepath.Clean(dir) == filepath.Clean(s.basePath) {
		return s.basePath, nil
	}

	target := dir
	if !filepath.IsAbs(dir) {
		target = filepath.Join(s.basePath, dir)
	}
	base, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("resolve base dir: %w", err)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve dir %s: %w", dir, err)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve knowledge dir", errors.New(dir+" is outside "+s.basePath))
	}
	return target, nil
}

package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// JSON re-serializes a JSON document compactly, keeping non-ASCII and HTML
// characters literal so the embedded text matches what a reader sees.
type JSON struct{}

func (JSON) Extensions() []string { return []string{".json"} }

func (JSON) Extract(_ context.Context, r io.Reader) (string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var content any
	if err := dec.Decode(&content); err != nil {
		return "", fmt.Errorf("decode json: %w", err)
	}
	return marshalCompact(content)
}

// YAML documents are flattened into the same compact JSON form so both
// formats chunk identically.
type YAML struct{}

func (YAML) Extensions() []string { return []string{".yaml", ".yml"} }

func (YAML) Extract(_ context.Context, r io.Reader) (string, error) {
	dec := yaml.NewDecoder(r)
	docs := make([]any, 0, 1)
	for {
		var doc any
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode yaml: %w", err)
		}
		docs = append(docs, stringKeys(doc))
	}

	switch len(docs) {
	case 0:
		return "", nil
	case 1:
		return marshalCompact(docs[0])
	default:
		return marshalCompact(docs)
	}
}

func marshalCompact(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// stringKeys converts map[any]any produced for non-string YAML keys into
// map[string]any so the value can be encoded as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}

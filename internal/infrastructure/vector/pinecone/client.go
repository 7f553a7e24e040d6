package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/resilience"
)

const apiVersion = "2024-07"

// Client talks to a single Pinecone index through its data-plane host.
type Client struct {
	host       string
	apiKey     string
	namespace  string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(host, apiKey, namespace string, executor *resilience.Executor) *Client {
	host = strings.TrimRight(host, "/")
	if host != "" && !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return &Client{
		host:       host,
		apiKey:     apiKey,
		namespace:  namespace,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

// WithTimeout overrides the per-request HTTP timeout; non-positive values keep the default.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.httpClient.Timeout = d
	}
	return c
}

type vector struct {
	ID       string               `json:"id"`
	Values   []float32            `json:"values"`
	Metadata domain.ChunkMetadata `json:"metadata"`
}

func (c *Client) Upsert(ctx context.Context, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}
	vectors := make([]vector, 0, len(records))
	for _, record := range records {
		vectors = append(vectors, vector{ID: record.ID, Values: record.Values, Metadata: record.Metadata})
	}
	body := map[string]any{"vectors": vectors}
	if c.namespace != "" {
		body["namespace"] = c.namespace
	}
	return c.post(ctx, "/vectors/upsert", body, nil, "upsert")
}

func (c *Client) Query(
	ctx context.Context,
	queryVector domain.EmbeddingVector,
	topK int,
	filter domain.SearchFilter,
) ([]domain.RetrievalHit, error) {
	body := map[string]any{
		"vector":          queryVector,
		"topK":            topK,
		"includeMetadata": true,
	}
	if f := buildFilter(filter); f != nil {
		body["filter"] = f
	}
	if c.namespace != "" {
		body["namespace"] = c.namespace
	}

	var response struct {
		Matches []struct {
			ID       string        `json:"id"`
			Score    float64       `json:"score"`
			Metadata matchMetadata `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.post(ctx, "/query", body, &response, "query"); err != nil {
		return nil, err
	}

	out := make([]domain.RetrievalHit, 0, len(response.Matches))
	for _, m := range response.Matches {
		out = append(out, domain.RetrievalHit{
			Source:  m.Metadata.Source,
			DocType: m.Metadata.DocType,
			ChunkID: metadataInt(m.Metadata.ChunkID),
			Score:   m.Score,
			Text:    m.Metadata.Text,
		})
	}
	return out, nil
}

// matchMetadata mirrors domain.ChunkMetadata on the read path. Pinecone keeps
// metadata numbers as floats, so chunk positions may come back as 3.0.
type matchMetadata struct {
	Source      string         `json:"source"`
	DocType     domain.DocType `json:"doc_type"`
	ChunkID     json.Number    `json:"chunk_id"`
	TotalChunks json.Number    `json:"total_chunks"`
	Text        string         `json:"text"`
}

func metadataInt(n json.Number) int {
	if n == "" {
		return 0
	}
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return int(f)
}

func buildFilter(filter domain.SearchFilter) map[string]any {
	if filter.DocType == "" {
		return nil
	}
	return map[string]any{
		"doc_type": map[string]any{"$eq": string(filter.DocType)},
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	call := func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.host+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Api-Key", c.apiKey)
		req.Header.Set("X-Pinecone-API-Version", apiVersion)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("pinecone %s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &HTTPStatusError{Operation: operation, StatusCode: resp.StatusCode, Status: resp.Status, Body: string(raw)}
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		return nil
	}

	err = resilience.Run(ctx, c.executor, "pinecone."+operation, call, classifyPineconeError)
	if err == nil {
		return nil
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
		return domain.WrapError(domain.ErrUnauthorized, "pinecone "+operation, err)
	}
	if classifyPineconeError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "pinecone "+operation, err)
	}
	return err
}

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if msg := strings.TrimSpace(e.Body); msg != "" {
		return fmt.Sprintf("pinecone %s status: %s: %s", e.Operation, e.Status, msg)
	}
	return fmt.Sprintf("pinecone %s status: %s", e.Operation, e.Status)
}

func classifyPineconeError(err error) resilience.ErrorClassification {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		retry := statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
		return resilience.ErrorClassification{Retryable: retry, RecordFailure: retry}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

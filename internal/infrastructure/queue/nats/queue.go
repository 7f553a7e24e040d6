package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/kirillkom/sales-assistant/internal/infrastructure/resilience"
)

const workerQueueGroup = "ingest-workers"

type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
	logger   *slog.Logger
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func New(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("sales-assistant"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
		logger:   logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// IngestRequest is the wire form of an ingestion request.
type IngestRequest struct {
	ID          string    `json:"id"`
	Dir         string    `json:"dir"`
	RequestedAt time.Time `json:"requested_at"`
}

func encodeIngestRequest(dir string, now time.Time) ([]byte, error) {
	return json.Marshal(IngestRequest{ID: uuid.NewString(), Dir: dir, RequestedAt: now.UTC()})
}

// decodeIngestRequest also accepts a bare directory path so requests can be
// published by hand with the nats CLI.
func decodeIngestRequest(data []byte) (IngestRequest, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return IngestRequest{}, errors.New("empty ingest request")
	}
	if !strings.HasPrefix(raw, "{") {
		return IngestRequest{Dir: raw}, nil
	}
	var req IngestRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return IngestRequest{}, fmt.Errorf("decode ingest request: %w", err)
	}
	return req, nil
}

type requestedAtKey struct{}

func withRequestedAt(ctx context.Context, at time.Time) context.Context {
	if at.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, requestedAtKey{}, at)
}

// RequestedAtFromContext reports when the ingest request being handled was published.
func RequestedAtFromContext(ctx context.Context) (time.Time, bool) {
	at, ok := ctx.Value(requestedAtKey{}).(time.Time)
	return at, ok
}

func (q *Queue) PublishIngestRequested(ctx context.Context, dir string) error {
	payload, err := encodeIngestRequest(dir, time.Now())
	if err != nil {
		return fmt.Errorf("encode ingest request: %w", err)
	}
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if err := resilience.Run(ctx, q.executor, "nats.publish", call, classifyNATSError); err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

func (q *Queue) SubscribeIngestRequested(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		req, err := decodeIngestRequest(msg.Data)
		if err != nil {
			q.logger.Error("ingest_request_invalid", "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(withRequestedAt(ctx, req.RequestedAt))
		defer cancel()
		if err := handler(handlerCtx, req.Dir); err != nil {
			q.logger.Error("ingest_request_failed", "request_id", req.ID, "dir", req.Dir, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

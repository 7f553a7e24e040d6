package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kirillkom/sales-assistant/internal/config"
	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
	"github.com/kirillkom/sales-assistant/internal/core/speech"
	"github.com/kirillkom/sales-assistant/internal/core/usecase"
	"github.com/kirillkom/sales-assistant/internal/observability/metrics"
)

const (
	serviceName     = "sales-api"
	maxRequestBytes = 1 << 20
)

type Router struct {
	cfg       config.Config
	assistant ports.Assistant
	queue     ports.IngestQueue
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger
}

func NewRouter(
	cfg config.Config,
	assistant ports.Assistant,
	queue ports.IngestQueue,
	httpMetrics *metrics.HTTPServerMetrics,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:       cfg,
		assistant: assistant,
		queue:     queue,
		metrics:   httpMetrics,
		logger:    logger,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/solutions", rt.getSolutions)
	api.HandleFunc("POST /v1/clients/search", rt.searchClient)
	api.HandleFunc("POST /v1/greeting", rt.personalizedGreeting)
	api.HandleFunc("POST /v1/sessions/{session_id}/followup", rt.scheduleFollowup)
	api.HandleFunc("GET /v1/sessions/{session_id}/summary", rt.summarizeConversation)
	api.HandleFunc("POST /v1/speech/normalize", rt.normalizeSpeech)
	api.HandleFunc("POST /v1/ingest", rt.requestIngest)

	var v1 http.Handler = api
	if rt.cfg.APIRequestValidation {
		validator, err := newRequestValidator()
		if err != nil {
			rt.logger.Error("openapi_contract_invalid", "error", err)
		} else {
			v1 = validator.middleware(v1)
		}
	}
	v1 = backpressureMiddleware(v1, rt.cfg.APIMaxInFlight, rt.cfg.BackpressureWait())
	v1 = rateLimitMiddleware(v1, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.Handle("/v1/", v1)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type solutionsRequest struct {
	SessionID string `json:"session_id"`
	Challenge string `json:"challenge"`
	Industry  string `json:"industry"`
}

func (rt *Router) getSolutions(w http.ResponseWriter, r *http.Request) {
	var req solutionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := rt.assistant.GetSolutions(r.Context(), sessionOrDefault(req.SessionID), req.Challenge, req.Industry)
	rt.recordToolCall("get_solutions", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type searchClientRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Company   string `json:"company"`
}

func (rt *Router) searchClient(w http.ResponseWriter, r *http.Request) {
	var req searchClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sessionID := sessionOrDefault(req.SessionID)
	message, err := rt.assistant.SearchClient(r.Context(), sessionID, req.Name, req.Company)
	rt.recordToolCall("search_client_in_database", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": sessionID, "message": message})
}

type greetingRequest struct {
	Name    string `json:"name"`
	Company string `json:"company"`
}

func (rt *Router) personalizedGreeting(w http.ResponseWriter, r *http.Request) {
	var req greetingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Company) == "" {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "greeting", errors.New("name and company are required")))
		return
	}

	greeting := rt.assistant.PersonalizedGreeting(r.Context(), req.Name, req.Company)
	rt.recordToolCall("personalized_greeting", nil)
	writeJSON(w, http.StatusOK, map[string]string{"greeting": greeting})
}

type followupRequest struct {
	Reason string `json:"reason"`
}

func (rt *Router) scheduleFollowup(w http.ResponseWriter, r *http.Request) {
	var req followupRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	message, err := rt.assistant.ScheduleFollowup(r.Context(), r.PathValue("session_id"), req.Reason)
	rt.recordToolCall("schedule_followup", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (rt *Router) summarizeConversation(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.assistant.SummarizeConversation(r.Context(), r.PathValue("session_id"))
	rt.recordToolCall("summarize_conversation", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

type normalizeRequest struct {
	Text string `json:"text"`
}

func (rt *Router) normalizeSpeech(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": speech.Normalize(req.Text)})
}

type ingestRequest struct {
	Dir string `json:"dir"`
}

func (rt *Router) requestIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if rt.queue == nil {
		writeError(w, domain.WrapError(domain.ErrTemporary, "request ingest", errors.New("ingest queue is not configured")))
		return
	}

	dir := strings.TrimSpace(req.Dir)
	if dir == "" {
		dir = rt.cfg.DocsDir
	}
	// Anything other than DOCS_DIR itself names a directory below it.
	if dir != rt.cfg.DocsDir && !filepath.IsLocal(dir) {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "request ingest", errors.New("dir must be a relative path inside the knowledge directory")))
		return
	}
	err := rt.queue.PublishIngestRequested(r.Context(), dir)
	if rt.metrics != nil {
		rt.metrics.RecordIngestPublished(serviceName, err)
	}
	if err != nil {
		rt.logger.Error("ingest_publish_failed", "request_id", requestIDFromContext(r.Context()), "dir", dir, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "dir": dir})
}

func (rt *Router) recordToolCall(tool string, err error) {
	if rt.metrics != nil {
		rt.metrics.RecordToolCall(serviceName, tool, err)
	}
}

func sessionOrDefault(sessionID string) string {
	if strings.TrimSpace(sessionID) == "" {
		return usecase.DefaultSessionID
	}
	return sessionID
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid json: %v", err)})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

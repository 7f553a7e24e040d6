package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
)

type embedderFake struct {
	vector []float32
	err    error
	byText map[string][]float32
	calls  int
}

func (f *embedderFake) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := f.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.byText[text]; ok {
		return v, nil
	}
	return f.vector, nil
}

type storeFake struct {
	mu        sync.Mutex
	upserts   [][]domain.IndexRecord
	failBatch map[int]bool
	hits      []domain.RetrievalHit
	queryErr  error
	queries   []domain.SearchFilter
}

func (f *storeFake) Upsert(_ context.Context, records []domain.IndexRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := len(f.upserts) + 1
	f.upserts = append(f.upserts, records)
	if f.failBatch[batch] {
		return errors.New("index unavailable")
	}
	return nil
}

func (f *storeFake) Query(_ context.Context, _ domain.EmbeddingVector, _ int, filter domain.SearchFilter) ([]domain.RetrievalHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, filter)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	out := make([]domain.RetrievalHit, len(f.hits))
	copy(out, f.hits)
	return out, nil
}

type searchCall struct {
	Query   string
	TopK    int
	DocType domain.DocType
}

type searcherFake struct {
	calls  []searchCall
	byType map[domain.DocType][]domain.RetrievalHit
}

func (f *searcherFake) Search(_ context.Context, query string, topK int, filter domain.SearchFilter) []domain.RetrievalHit {
	f.calls = append(f.calls, searchCall{Query: query, TopK: topK, DocType: filter.DocType})
	return f.byType[filter.DocType]
}

type composerFake struct {
	called  bool
	query   string
	context string
	rt      domain.ResponseType
	reply   string
}

func (f *composerFake) Compose(_ context.Context, query, contextText string, rt domain.ResponseType) string {
	f.called = true
	f.query = query
	f.context = contextText
	f.rt = rt
	return f.reply
}

type generatorFake struct {
	out  string
	err  error
	reqs []domain.GenerationRequest
}

func (f *generatorFake) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.out, f.err
}

type resolverFake struct {
	result    domain.SolutionResult
	challenge string
	industry  string
	calls     int
}

func (f *resolverFake) Resolve(_ context.Context, challenge, industry string) domain.SolutionResult {
	f.calls++
	f.challenge = challenge
	f.industry = industry
	return f.result
}

type directoryFake struct {
	profile *domain.ClientProfile
	err     error
	lookups [][2]string
}

func (f *directoryFake) FindClient(_ context.Context, name, company string) (*domain.ClientProfile, error) {
	f.lookups = append(f.lookups, [2]string{name, company})
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return nil, domain.WrapError(domain.ErrClientNotFound, "find client", errors.New("no match"))
	}
	p := *f.profile
	return &p, nil
}

type sessionsFake struct {
	items   map[string]domain.ConversationContext
	loadErr error
	saves   int
}

func newSessionsFake() *sessionsFake {
	return &sessionsFake{items: map[string]domain.ConversationContext{}}
}

func (f *sessionsFake) Load(_ context.Context, id string) (*domain.ConversationContext, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	conv, ok := f.items[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "load session", errors.New(id))
	}
	return &conv, nil
}

func (f *sessionsFake) Save(_ context.Context, conv *domain.ConversationContext) error {
	f.saves++
	f.items[conv.SessionID] = *conv
	return nil
}

type metricsFake struct {
	corrections []string
	retrievals  []domain.SolutionResult
	batchesOK   int
	batchesFail int
}

func (f *metricsFake) RecordEmbeddingCorrection(kind string) {
	f.corrections = append(f.corrections, kind)
}

func (f *metricsFake) RecordRetrieval(result domain.SolutionResult) {
	f.retrievals = append(f.retrievals, result)
}

func (f *metricsFake) RecordUpsertBatch(ok bool, _ int) {
	if ok {
		f.batchesOK++
		return
	}
	f.batchesFail++
}

type sourceFake struct {
	files map[string]string
	order []string
	err   error
}

func (f *sourceFake) List(context.Context, string) ([]ports.SourceFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ports.SourceFile, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, ports.SourceFile{Name: name, Path: "/kb/" + name})
	}
	return out, nil
}

func (f *sourceFake) Open(_ context.Context, file ports.SourceFile) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.files[file.Name])), nil
}

// extractorFake accepts .json and rejects content starting with "!".
type extractorFake struct{}

func (extractorFake) Supports(filename string) bool {
	return strings.HasSuffix(filename, ".json")
}

func (extractorFake) Extract(_ context.Context, _ string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(string(raw), "!") {
		return "", errors.New("unexpected token")
	}
	return string(raw), nil
}

// lineChunker splits on newlines.
type lineChunker struct{}

func (lineChunker) Split(text string) []string {
	return strings.Split(text, "\n")
}

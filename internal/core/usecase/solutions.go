package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
)

const (
	PrimaryTopK   = 10
	SecondaryTopK = 5
	FallbackTopK  = 15
	MaxContextHit = 15
)

type hitSearcher interface {
	Search(ctx context.Context, query string, topK int, filter domain.SearchFilter) []domain.RetrievalHit
}

type responseComposer interface {
	Compose(ctx context.Context, query, contextText string, rt domain.ResponseType) string
}

type SolutionsUseCase struct {
	index       hitSearcher
	composer    responseComposer
	companyName string
	logger      *slog.Logger
	metrics     ports.PipelineMetrics
}

func NewSolutionsUseCase(
	index hitSearcher,
	composer responseComposer,
	companyName string,
	logger *slog.Logger,
	metrics ports.PipelineMetrics,
) *SolutionsUseCase {
	if strings.TrimSpace(companyName) == "" {
		companyName = DefaultCompanyName
	}
	return &SolutionsUseCase{
		index:       index,
		composer:    composer,
		companyName: companyName,
		logger:      loggerOrDefault(logger),
		metrics:     metricsOrNoop(metrics),
	}
}

func (uc *SolutionsUseCase) GetSolutions(ctx context.Context, challenge, industry string) string {
	return uc.Resolve(ctx, challenge, industry).Text
}

// Resolve routes the challenge to the content class its wording suggests,
// widens to an unfiltered search when both classes come back empty and
// composes a reply from the merged hits.
func (uc *SolutionsUseCase) Resolve(ctx context.Context, challenge, industry string) domain.SolutionResult {
	query := EnhanceQuery(challenge, industry)
	intent := ClassifyIntent(query)
	primary := intent.PrimaryDocType()

	hits := uc.index.Search(ctx, query, PrimaryTopK, domain.SearchFilter{DocType: primary})
	hits = append(hits, uc.index.Search(ctx, query, SecondaryTopK, domain.SearchFilter{DocType: primary.Other()})...)

	responseType := domain.ResponseType(primary)
	if len(hits) == 0 {
		uc.logger.Info("retrieval_widened", "query", query, "intent", intent)
		hits = uc.index.Search(ctx, query, FallbackTopK, domain.SearchFilter{})
		responseType = domain.ResponseGeneral
	}

	result := domain.SolutionResult{
		Query:        query,
		Intent:       intent,
		ResponseType: responseType,
		Hits:         len(hits),
	}

	contextText := BuildContext(hits)
	if strings.TrimSpace(contextText) == "" {
		uc.logger.Warn("retrieval_fallback", "query", query, "intent", intent)
		result.Text = noContextFallback(uc.companyName)
		result.Fallback = true
		uc.metrics.RecordRetrieval(result)
		return result
	}

	result.Text = uc.composer.Compose(ctx, query, contextText, responseType)
	uc.logger.Info("retrieval_done", "intent", intent, "response_type", responseType, "hits", len(hits))
	uc.metrics.RecordRetrieval(result)
	return result
}

func EnhanceQuery(challenge, industry string) string {
	if industry = strings.TrimSpace(industry); industry != "" {
		return challenge + " in " + industry + " industry"
	}
	return challenge
}

// BuildContext renders at most MaxContextHit hits as "[DOC_TYPE] text"
// paragraphs in the order given.
func BuildContext(hits []domain.RetrievalHit) string {
	if len(hits) > MaxContextHit {
		hits = hits[:MaxContextHit]
	}
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		parts = append(parts, "["+strings.ToUpper(string(hit.DocType))+"] "+hit.Text)
	}
	return strings.Join(parts, "\n\n")
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

func TestClassifyIntent(t *testing.T) {
	cases := map[string]domain.Intent{
		"What ROI can we expect?":       domain.IntentUseCase,
		"show me a case study":          domain.IntentUseCase,
		"Cost Savings for invoicing":    domain.IntentUseCase,
		"implementation timeline":       domain.IntentUseCase,
		"what services do you offer":    domain.IntentServices,
		"automate onboarding in retail": domain.IntentServices,
		"android app development":       domain.IntentUseCase,
		"":                              domain.IntentServices,
	}
	for query, want := range cases {
		if got := ClassifyIntent(query); got != want {
			t.Fatalf("ClassifyIntent(%q) = %s, want %s", query, got, want)
		}
	}
}

func TestUseCaseKeywordsReturnsCopy(t *testing.T) {
	kws := UseCaseKeywords()
	if len(kws) != 9 {
		t.Fatalf("expected 9 keywords, got %d", len(kws))
	}
	kws[0] = "mutated"
	if UseCaseKeywords()[0] != "roi" {
		t.Fatalf("keyword list must not be mutable through the accessor")
	}
}

func TestEnhanceQuery(t *testing.T) {
	if got := EnhanceQuery("reduce churn", "Retail"); got != "reduce churn in Retail industry" {
		t.Fatalf("unexpected enhanced query %q", got)
	}
	if got := EnhanceQuery("reduce churn", "   "); got != "reduce churn" {
		t.Fatalf("blank industry must not change the query, got %q", got)
	}
}

func TestResolveServicesIntentQueriesServicesFirst(t *testing.T) {
	searcher := &searcherFake{byType: map[domain.DocType][]domain.RetrievalHit{
		domain.DocTypeServices: {{DocType: domain.DocTypeServices, Text: "S1"}},
		domain.DocTypeUseCases: {{DocType: domain.DocTypeUseCases, Text: "U1"}},
	}}
	composer := &composerFake{reply: "composed"}
	uc := NewSolutionsUseCase(searcher, composer, "", nil, nil)

	result := uc.Resolve(context.Background(), "automate invoicing", "logistics")

	if len(searcher.calls) != 2 {
		t.Fatalf("expected 2 searches, got %+v", searcher.calls)
	}
	if searcher.calls[0] != (searchCall{Query: "automate invoicing in logistics industry", TopK: 10, DocType: domain.DocTypeServices}) {
		t.Fatalf("unexpected primary search %+v", searcher.calls[0])
	}
	if searcher.calls[1] != (searchCall{Query: "automate invoicing in logistics industry", TopK: 5, DocType: domain.DocTypeUseCases}) {
		t.Fatalf("unexpected secondary search %+v", searcher.calls[1])
	}
	if composer.context != "[SERVICES] S1\n\n[USE_CASES] U1" {
		t.Fatalf("unexpected context %q", composer.context)
	}
	if composer.rt != domain.ResponseServices || result.ResponseType != domain.ResponseServices {
		t.Fatalf("expected services response type, got %s", composer.rt)
	}
	if result.Text != "composed" || result.Hits != 2 || result.Fallback {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestResolveUseCaseIntentQueriesUseCasesFirst(t *testing.T) {
	searcher := &searcherFake{byType: map[domain.DocType][]domain.RetrievalHit{
		domain.DocTypeServices: {{DocType: domain.DocTypeServices, Text: "S1"}},
		domain.DocTypeUseCases: {{DocType: domain.DocTypeUseCases, Text: "U1"}, {DocType: domain.DocTypeUseCases, Text: "U2"}},
	}}
	composer := &composerFake{reply: "composed"}
	metrics := &metricsFake{}
	uc := NewSolutionsUseCase(searcher, composer, "", nil, metrics)

	result := uc.Resolve(context.Background(), "what ROI do clients see", "")

	if searcher.calls[0].DocType != domain.DocTypeUseCases || searcher.calls[0].TopK != 10 {
		t.Fatalf("unexpected primary search %+v", searcher.calls[0])
	}
	if searcher.calls[1].DocType != domain.DocTypeServices || searcher.calls[1].TopK != 5 {
		t.Fatalf("unexpected secondary search %+v", searcher.calls[1])
	}
	if composer.context != "[USE_CASES] U1\n\n[USE_CASES] U2\n\n[SERVICES] S1" {
		t.Fatalf("primary hits must precede secondary hits, got %q", composer.context)
	}
	if result.Intent != domain.IntentUseCase || result.ResponseType != domain.ResponseUseCases {
		t.Fatalf("unexpected routing %+v", result)
	}
	if len(metrics.retrievals) != 1 {
		t.Fatalf("expected retrieval metric, got %d", len(metrics.retrievals))
	}
}

func TestResolveWidensOnceWhenBothClassesEmpty(t *testing.T) {
	searcher := &searcherFake{byType: map[domain.DocType][]domain.RetrievalHit{
		"": {{DocType: domain.DocTypeServices, Text: "general hit"}},
	}}
	composer := &composerFake{reply: "general reply"}
	uc := NewSolutionsUseCase(searcher, composer, "", nil, nil)

	result := uc.Resolve(context.Background(), "help with chatbots", "")

	if len(searcher.calls) != 3 {
		t.Fatalf("expected exactly one widened search, got %+v", searcher.calls)
	}
	if searcher.calls[2] != (searchCall{Query: "help with chatbots", TopK: 15}) {
		t.Fatalf("unexpected widened search %+v", searcher.calls[2])
	}
	if composer.rt != domain.ResponseGeneral || result.ResponseType != domain.ResponseGeneral {
		t.Fatalf("expected general response type, got %s", composer.rt)
	}
}

func TestResolveReturnsFixedMessageWithoutContext(t *testing.T) {
	searcher := &searcherFake{}
	composer := &composerFake{reply: "should not be used"}
	uc := NewSolutionsUseCase(searcher, composer, "Tekisho", nil, nil)

	result := uc.Resolve(context.Background(), "anything", "")

	if composer.called {
		t.Fatalf("composer must not be called without context")
	}
	if !result.Fallback || result.ResponseType != domain.ResponseGeneral {
		t.Fatalf("unexpected result %+v", result)
	}
	want := "I'd love to help you with that challenge. While I don't have specific details right now, " +
		"Tekisho specializes in custom AI and automation solutions that can significantly reduce costs " +
		"and improve efficiency. Would you like me to connect you with one of our solution architects " +
		"who can discuss your specific needs in detail?"
	if result.Text != want {
		t.Fatalf("unexpected fallback text %q", result.Text)
	}
	if got := uc.GetSolutions(context.Background(), "anything", ""); got != want {
		t.Fatalf("GetSolutions() = %q", got)
	}
}

func TestBuildContextLimitsHits(t *testing.T) {
	hits := make([]domain.RetrievalHit, 0, 20)
	for i := 0; i < 20; i++ {
		hits = append(hits, domain.RetrievalHit{DocType: domain.DocTypeServices, Text: fmt.Sprintf("hit-%d", i)})
	}
	contextText := BuildContext(hits)
	if n := strings.Count(contextText, "[SERVICES]"); n != 15 {
		t.Fatalf("expected 15 hits in context, got %d", n)
	}
	if strings.Contains(contextText, "hit-15") {
		t.Fatalf("hit beyond the limit leaked into context")
	}
	if BuildContext(nil) != "" {
		t.Fatalf("expected empty context for no hits")
	}
}

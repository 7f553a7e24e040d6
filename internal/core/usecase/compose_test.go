package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

func TestComposeUsesTemplateAndSamplingDefaults(t *testing.T) {
	gen := &generatorFake{out: "Here is what we do."}
	composer := NewResponseComposer(gen, ComposerOptions{CompanyName: "Acme"}, nil)

	out := composer.Compose(context.Background(), "what ROI", "[USE_CASES] 180-260% ROI", domain.ResponseUseCases)

	if out != "Here is what we do." {
		t.Fatalf("unexpected output %q", out)
	}
	req := gen.reqs[0]
	if req.Model != "gpt-4o-mini" || req.Temperature != 0.7 || req.TopP != 0.9 || req.MaxTokens != 600 {
		t.Fatalf("unexpected sampling parameters %+v", req)
	}
	if !strings.Contains(req.System, "business-focused AI assistant for Acme") || !strings.Contains(req.System, `"180-260% ROI"`) {
		t.Fatalf("unexpected system prompt %q", req.System)
	}
	if !strings.HasPrefix(req.User, "Question: what ROI\n\nContext from Acme's documentation:\n[USE_CASES] 180-260% ROI") {
		t.Fatalf("unexpected user prompt %q", req.User)
	}
}

func TestComposeSelectsTemplatePerResponseType(t *testing.T) {
	cases := map[domain.ResponseType]string{
		domain.ResponseServices: "knowledgeable AI assistant",
		domain.ResponseUseCases: "business-focused AI assistant",
		domain.ResponseGeneral:  "helpful AI assistant",
	}
	for rt, marker := range cases {
		gen := &generatorFake{out: "ok"}
		NewResponseComposer(gen, ComposerOptions{}, nil).Compose(context.Background(), "q", "c", rt)
		if !strings.Contains(gen.reqs[0].System, marker) {
			t.Fatalf("response type %s: expected %q in system prompt", rt, marker)
		}
	}
}

func TestComposeFallsBackOnFailureOrBlankOutput(t *testing.T) {
	want := "I'd be happy to discuss Tekisho's AI solutions with you. Could you tell me more about what specific challenges you're facing?"

	failing := NewResponseComposer(&generatorFake{err: errors.New("rate limited")}, ComposerOptions{}, nil)
	if got := failing.Compose(context.Background(), "q", "c", domain.ResponseGeneral); got != want {
		t.Fatalf("unexpected fallback %q", got)
	}
	blank := NewResponseComposer(&generatorFake{out: "  \n"}, ComposerOptions{}, nil)
	if got := blank.Compose(context.Background(), "q", "c", domain.ResponseGeneral); got != want {
		t.Fatalf("unexpected fallback for blank output %q", got)
	}
}

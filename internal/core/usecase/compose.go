package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
)

type ComposerOptions struct {
	CompanyName string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

func DefaultComposerOptions() ComposerOptions {
	return ComposerOptions{
		CompanyName: DefaultCompanyName,
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   600,
	}
}

type ResponseComposer struct {
	generator ports.TextGenerator
	opts      ComposerOptions
	logger    *slog.Logger
}

func NewResponseComposer(generator ports.TextGenerator, opts ComposerOptions, logger *slog.Logger) *ResponseComposer {
	def := DefaultComposerOptions()
	if strings.TrimSpace(opts.CompanyName) == "" {
		opts.CompanyName = def.CompanyName
	}
	if opts.Model == "" {
		opts.Model = def.Model
	}
	if opts.Temperature <= 0 {
		opts.Temperature = def.Temperature
	}
	if opts.TopP <= 0 {
		opts.TopP = def.TopP
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	return &ResponseComposer{generator: generator, opts: opts, logger: loggerOrDefault(logger)}
}

// Compose asks the generator for a spoken reply grounded in context. Any
// provider failure or blank output degrades to a fixed invitation to share
// more about the challenge.
func (c *ResponseComposer) Compose(ctx context.Context, query, contextText string, rt domain.ResponseType) string {
	out, err := c.generator.Generate(ctx, domain.GenerationRequest{
		Model:       c.opts.Model,
		System:      systemPrompt(c.opts.CompanyName, rt),
		User:        composeUserPrompt(c.opts.CompanyName, query, contextText),
		Temperature: c.opts.Temperature,
		TopP:        c.opts.TopP,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		c.logger.Error("compose_failed", "response_type", rt, "error", err)
		return composeFallback(c.opts.CompanyName)
	}
	if strings.TrimSpace(out) == "" {
		c.logger.Warn("compose_empty_output", "response_type", rt)
		return composeFallback(c.opts.CompanyName)
	}
	return out
}

func (c *ResponseComposer) CompanyName() string {
	return c.opts.CompanyName
}

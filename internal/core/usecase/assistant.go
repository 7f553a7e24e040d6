package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
	"github.com/kirillkom/sales-assistant/internal/core/speech"
)

const (
	DefaultSessionID      = "default"
	DefaultFollowupReason = "discuss solutions in detail"
	greetingInsightRunes  = 200
	greetingInsightHits   = 3
	greetingSearchTopK    = 5
)

type AssistantOptions struct {
	CompanyName         string
	GreetingModel       string
	GreetingTemperature float64
	GreetingMaxTokens   int
}

func DefaultAssistantOptions() AssistantOptions {
	return AssistantOptions{
		CompanyName:         DefaultCompanyName,
		GreetingModel:       "gpt-4o",
		GreetingTemperature: 0.8,
		GreetingMaxTokens:   200,
	}
}

type solutionResolver interface {
	Resolve(ctx context.Context, challenge, industry string) domain.SolutionResult
}

// AssistantUseCase backs the tools the voice agent calls during a session.
// Directory and generator failures never reach the caller; they degrade to
// fixed conversational replies.
type AssistantUseCase struct {
	solutions solutionResolver
	index     hitSearcher
	directory ports.ClientDirectory
	sessions  ports.SessionStore
	generator ports.TextGenerator
	opts      AssistantOptions
	logger    *slog.Logger
}

func NewAssistantUseCase(
	solutions solutionResolver,
	index hitSearcher,
	directory ports.ClientDirectory,
	sessions ports.SessionStore,
	generator ports.TextGenerator,
	opts AssistantOptions,
	logger *slog.Logger,
) *AssistantUseCase {
	def := DefaultAssistantOptions()
	if strings.TrimSpace(opts.CompanyName) == "" {
		opts.CompanyName = def.CompanyName
	}
	if opts.GreetingModel == "" {
		opts.GreetingModel = def.GreetingModel
	}
	if opts.GreetingTemperature <= 0 {
		opts.GreetingTemperature = def.GreetingTemperature
	}
	if opts.GreetingMaxTokens <= 0 {
		opts.GreetingMaxTokens = def.GreetingMaxTokens
	}
	return &AssistantUseCase{
		solutions: solutions,
		index:     index,
		directory: directory,
		sessions:  sessions,
		generator: generator,
		opts:      opts,
		logger:    loggerOrDefault(logger),
	}
}

func (uc *AssistantUseCase) SearchClient(ctx context.Context, sessionID, name, company string) (string, error) {
	name = strings.TrimSpace(name)
	company = strings.TrimSpace(company)
	if name == "" && company == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "search client", errors.New("name or company is required"))
	}

	if uc.directory == nil {
		return warmDiscoveryPrompt(name, company), nil
	}

	profile, err := uc.directory.FindClient(ctx, name, company)
	switch {
	case domain.IsKind(err, domain.ErrClientNotFound) || (err == nil && profile == nil):
		uc.logger.Info("client_not_found", "name", name, "company", company)
		return fmt.Sprintf(
			"Nice to meet you, %s! I don't have prior information about %s in our system yet, "+
				"but I'd love to learn more about your business and the challenges you're facing. "+
				"Could you tell me a bit about what %s does and what brings you here today?",
			name, company, company,
		), nil
	case err != nil:
		uc.logger.Error("client_lookup_failed", "name", name, "company", company, "error", err)
		return warmDiscoveryPrompt(name, company), nil
	}

	conv, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	conv.ApplyClientProfile(*profile)
	conv.MarkGreeted()
	if err := uc.sessions.Save(ctx, conv); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	uc.logger.Info("client_found", "record_id", profile.RecordID, "company", profile.Company)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! ", profile.Name)
	if profile.Company != "" {
		fmt.Fprintf(&b, "I see you're from %s. ", profile.Company)
	}
	if profile.Industry != "" {
		fmt.Fprintf(&b, "Your company operates in the %s industry. ", profile.Industry)
	}
	if profile.Summary != "" {
		b.WriteString(profile.Summary)
		b.WriteString(" ")
	}
	b.WriteString("It's wonderful to connect with you! What specific challenges or opportunities can I help you explore today?")
	return b.String(), nil
}

// GetSolutions records the challenge on the session, fills in the industry
// learned from the directory when none is given and returns a reply with
// numbers spelled out for speech. It always produces speakable text: a blank
// challenge or an unavailable session store degrades to the fixed reply or
// to an unsaved session, never to an error.
func (uc *AssistantUseCase) GetSolutions(ctx context.Context, sessionID, challenge, industry string) (domain.SolutionResult, error) {
	if strings.TrimSpace(challenge) == "" {
		uc.logger.Warn("solutions_blank_challenge", "session_id", sessionID)
		return domain.SolutionResult{Text: speech.Normalize(solutionsFallback), Fallback: true}, nil
	}

	persist := true
	conv, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		uc.logger.Error("session_load_failed", "session_id", sessionID, "error", err)
		conv = domain.NewConversationContext(sessionIDOrDefault(sessionID))
		persist = false
	}
	conv.RecordChallenge(challenge)
	industry = conv.ResolveIndustry(industry)

	result := uc.solutions.Resolve(ctx, challenge, industry)
	if strings.TrimSpace(result.Text) == "" {
		result.Text = solutionsFallback
		result.Fallback = true
	}
	result.Text = speech.Normalize(result.Text)

	if !persist {
		return result, nil
	}
	if err := uc.sessions.Save(ctx, conv); err != nil {
		uc.logger.Error("session_save_failed", "session_id", conv.SessionID, "error", err)
	}
	return result, nil
}

func (uc *AssistantUseCase) ScheduleFollowup(ctx context.Context, sessionID, reason string) (string, error) {
	conv, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultFollowupReason
	}
	return fmt.Sprintf(
		"I'd love to connect you with one of our solution architects who can %s specifically for %s. "+
			"They'll provide a customized proposal and answer any technical questions you might have. "+
			"Would that be helpful, %s?",
		reason, conv.CompanyOr("your company"), conv.NameOr("there"),
	), nil
}

func (uc *AssistantUseCase) SummarizeConversation(ctx context.Context, sessionID string) (string, error) {
	conv, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	company := conv.CompanyOr("your organization")
	var summary string
	if len(conv.Challenges) > 0 {
		discussed := conv.Challenges
		if len(discussed) > 2 {
			discussed = discussed[:2]
		}
		summary = fmt.Sprintf(
			"It's been great talking with you, %s! We've discussed how %s can help %s with %s. ",
			conv.NameOr("you"), uc.opts.CompanyName, company, strings.Join(discussed, ", "),
		)
	} else {
		summary = fmt.Sprintf("Thank you for sharing about %s's goals. ", company)
	}
	return summary + "I can connect you with our team to dive deeper into solutions, " +
		"provide specific ROI calculations, and discuss implementation timelines. " +
		"Would you like me to arrange that?", nil
}

func (uc *AssistantUseCase) AskForClarification(question string) string {
	uc.logger.Info("clarification_requested", "question", question)
	return question
}

// PersonalizedGreeting combines what the directory knows about the company
// with a few retrieved insights. The directory and retrieval are optional
// inputs; only the generation step has a fallback.
func (uc *AssistantUseCase) PersonalizedGreeting(ctx context.Context, name, company string) string {
	companyContext := uc.companyContext(ctx, company)

	hits := uc.index.Search(ctx, company+" industry solutions challenges", greetingSearchTopK, domain.SearchFilter{})
	if len(hits) > greetingInsightHits {
		hits = hits[:greetingInsightHits]
	}
	insights := make([]string, 0, len(hits))
	for _, hit := range hits {
		insights = append(insights, domain.TruncateRunes(hit.Text, greetingInsightRunes))
	}

	out, err := uc.generator.Generate(ctx, domain.GenerationRequest{
		Model:       uc.opts.GreetingModel,
		System:      fmt.Sprintf(greetingSystemPrompt, uc.opts.CompanyName),
		User:        greetingUserPrompt(name, company, companyContext, strings.Join(insights, "\n")),
		Temperature: uc.opts.GreetingTemperature,
		MaxTokens:   uc.opts.GreetingMaxTokens,
	})
	if err != nil || strings.TrimSpace(out) == "" {
		uc.logger.Error("greeting_generation_failed", "company", company, "error", err)
		return fmt.Sprintf(
			"Hi %s! Great to connect with you from %s. I'm here to learn about your business challenges "+
				"and show you how %s's AI solutions can help. What brings you here today?",
			name, company, uc.opts.CompanyName,
		)
	}
	return out
}

func (uc *AssistantUseCase) companyContext(ctx context.Context, company string) string {
	if uc.directory == nil || strings.TrimSpace(company) == "" {
		return ""
	}
	profile, err := uc.directory.FindClient(ctx, "", company)
	if err != nil || profile == nil {
		if err != nil && !domain.IsKind(err, domain.ErrClientNotFound) {
			uc.logger.Error("client_lookup_failed", "company", company, "error", err)
		}
		return ""
	}
	switch {
	case profile.Summary != "":
		return "Company Summary: " + profile.Summary
	case profile.Industry != "":
		return "Research: " + profile.Industry
	default:
		return ""
	}
}

func (uc *AssistantUseCase) loadSession(ctx context.Context, sessionID string) (*domain.ConversationContext, error) {
	sessionID = sessionIDOrDefault(sessionID)
	conv, err := uc.sessions.Load(ctx, sessionID)
	if domain.IsKind(err, domain.ErrSessionNotFound) {
		return domain.NewConversationContext(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return conv, nil
}

func sessionIDOrDefault(sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return DefaultSessionID
	}
	return sessionID
}

func warmDiscoveryPrompt(name, company string) string {
	return fmt.Sprintf(
		"Great to meet you, %s from %s! I'd love to understand more about your business challenges. "+
			"What specific areas are you looking to improve or automate?",
		name, company,
	)
}

const solutionsFallback = "Our AI solutions typically deliver ROI ranging from one fifty to three hundred percent " +
	"within the first six to twelve weeks. Cost savings usually fall between twenty five and forty percent, " +
	"with productivity improvements of fifty to eighty percent. " +
	"Would you like me to connect you with a solution architect to discuss specific numbers for your use case?"

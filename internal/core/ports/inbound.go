package ports

import (
	"context"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

// SolutionRetriever is the retrieval contract consumed by the voice-session collaborator.
// It never fails; every failure degrades to presentable text.
type SolutionRetriever interface {
	GetSolutions(ctx context.Context, challenge, industry string) string
	Resolve(ctx context.Context, challenge, industry string) domain.SolutionResult
}

// Assistant is the inbound contract for the agent tools.
type Assistant interface {
	SearchClient(ctx context.Context, sessionID, name, company string) (string, error)
	GetSolutions(ctx context.Context, sessionID, challenge, industry string) (domain.SolutionResult, error)
	ScheduleFollowup(ctx context.Context, sessionID, reason string) (string, error)
	SummarizeConversation(ctx context.Context, sessionID string) (string, error)
	AskForClarification(question string) string
	PersonalizedGreeting(ctx context.Context, name, company string) string
}

// KnowledgeIngestor loads a knowledge directory into the vector index.
type KnowledgeIngestor interface {
	Run(ctx context.Context, dir string) (domain.IngestReport, error)
}

package mcpadapter

import (
	"context"
	"io"
	"log"
	"log/slog"
	"strings"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
	"github.com/kirillkom/sales-assistant/internal/core/ports"
	"github.com/kirillkom/sales-assistant/internal/core/usecase"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "sales-assistant"
	ServerVersion = "1.0.0"

	instructions = "Tools for a voice sales assistant. Pass session_id to keep per-caller context; " +
		"without it the MCP session id is used."
)

// Server exposes the assistant tools to a voice-session agent over MCP.
type Server struct {
	assistant ports.Assistant
	logger    *slog.Logger
	mcp       *server.MCPServer
}

func NewServer(assistant ports.Assistant, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		assistant: assistant,
		logger:    logger,
		mcp: server.NewMCPServer(
			ServerName,
			ServerVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
			server.WithInstructions(instructions),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks until stdin closes or the process is signalled.
func (s *Server) ServeStdio(errOut io.Writer) error {
	return server.ServeStdio(s.mcp, server.WithErrorLogger(log.New(errOut, "mcp: ", log.LstdFlags)))
}

func (s *Server) registerTools() {
	sessionArg := mcp.WithString("session_id",
		mcp.Description("Conversation session id. Defaults to the MCP session."),
		mcp.MaxLength(128),
	)

	s.mcp.AddTool(mcp.NewTool("search_client_in_database",
		mcp.WithDescription("Look up the caller in the client directory by name and company and load their profile into the session."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Caller's name.")),
		mcp.WithString("company", mcp.Required(), mcp.Description("Caller's company.")),
		sessionArg,
	), s.searchClient)

	s.mcp.AddTool(mcp.NewTool("get_solutions",
		mcp.WithDescription("Find relevant services or industry use cases for a business challenge and return a spoken answer."),
		mcp.WithString("challenge", mcp.Required(), mcp.Description("The challenge or question in the caller's words.")),
		mcp.WithString("industry", mcp.Description("Industry hint. Falls back to what is known about the caller.")),
		sessionArg,
	), s.getSolutions)

	s.mcp.AddTool(mcp.NewTool("ask_for_clarification",
		mcp.WithDescription("Ask the caller a clarifying question."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to ask.")),
	), s.askForClarification)

	s.mcp.AddTool(mcp.NewTool("schedule_followup",
		mcp.WithDescription("Offer a follow-up with a solution architect."),
		mcp.WithString("reason", mcp.Description("What the follow-up should cover.")),
		sessionArg,
	), s.scheduleFollowup)

	s.mcp.AddTool(mcp.NewTool("summarize_conversation",
		mcp.WithDescription("Summarize the challenges discussed so far."),
		sessionArg,
	), s.summarizeConversation)

	s.mcp.AddTool(mcp.NewTool("personalized_greeting",
		mcp.WithDescription("Build an opening greeting tailored to the caller's company."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Caller's name.")),
		mcp.WithString("company", mcp.Required(), mcp.Description("Caller's company.")),
	), s.personalizedGreeting)
}

func (s *Server) searchClient(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	company := req.GetString("company", "")
	text, err := s.assistant.SearchClient(ctx, sessionID(ctx, req), name, company)
	return s.result("search_client_in_database", text, err), nil
}

func (s *Server) getSolutions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	challenge, err := req.RequireString("challenge")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.assistant.GetSolutions(ctx, sessionID(ctx, req), challenge, req.GetString("industry", ""))
	return s.result("get_solutions", result.Text, err), nil
}

func (s *Server) askForClarification(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.assistant.AskForClarification(question)), nil
}

func (s *Server) scheduleFollowup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.assistant.ScheduleFollowup(ctx, sessionID(ctx, req), req.GetString("reason", ""))
	return s.result("schedule_followup", text, err), nil
}

func (s *Server) summarizeConversation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.assistant.SummarizeConversation(ctx, sessionID(ctx, req))
	return s.result("summarize_conversation", text, err), nil
}

func (s *Server) personalizedGreeting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	company := req.GetString("company", "")
	return mcp.NewToolResultText(s.assistant.PersonalizedGreeting(ctx, name, company)), nil
}

// result turns tool failures into tool-level errors so the agent can recover
// in conversation. Only invalid input is echoed back verbatim.
func (s *Server) result(tool, text string, err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultText(text)
	}
	s.logger.Error("mcp_tool_failed", "tool", tool, "error", err)
	if domain.IsKind(err, domain.ErrInvalidInput) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError("The assistant could not complete " + tool + " right now.")
}

func sessionID(ctx context.Context, req mcp.CallToolRequest) string {
	if id := strings.TrimSpace(req.GetString("session_id", "")); id != "" {
		return id
	}
	if session := server.ClientSessionFromContext(ctx); session != nil {
		if id := strings.TrimSpace(session.SessionID()); id != "" {
			return id
		}
	}
	return usecase.DefaultSessionID
}

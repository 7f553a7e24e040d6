package main

import (
	"context"
	"os"

	mcpadapter "github.com/kirillkom/sales-assistant/internal/adapters/mcp"
	"github.com/kirillkom/sales-assistant/internal/bootstrap"
	"github.com/kirillkom/sales-assistant/internal/config"
	"github.com/kirillkom/sales-assistant/internal/observability/logging"
)

// Stdout carries the MCP protocol, so every log line goes to stderr.
func main() {
	cfg := config.Load()
	logger := logging.NewTextLogger(os.Stderr, "sales-mcp", cfg.LogLevel)

	app, err := bootstrap.New(context.Background(), cfg, logger, bootstrap.Options{})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	logger.Info("mcp_serving_stdio", "company", cfg.CompanyName)
	if err := mcpadapter.NewServer(app.Assistant, logger).ServeStdio(os.Stderr); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		app.Close()
		os.Exit(1)
	}
}

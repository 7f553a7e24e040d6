package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/sales-assistant/internal/bootstrap"
	"github.com/kirillkom/sales-assistant/internal/config"
	"github.com/kirillkom/sales-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	dir := flag.String("dir", cfg.DocsDir, "knowledge directory, DOCS_DIR or a directory below it")
	publish := flag.Bool("publish", false, "publish an ingest request for the worker instead of ingesting locally")
	flag.Parse()

	logger := logging.NewTextLogger(os.Stderr, "sales-ingest", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{WithQueue: *publish})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if *publish {
		if err := app.Queue.PublishIngestRequested(ctx, *dir); err != nil {
			logger.Error("ingest_publish_failed", "dir", *dir, "error", err)
			os.Exit(1)
		}
		logger.Info("ingest_request_published", "dir", *dir, "subject", cfg.NATSSubject)
		return
	}

	report, err := app.Ingest.Run(ctx, *dir)
	if err != nil {
		logger.Error("ingest_failed", "dir", *dir, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
	if report.FailedBatches > 0 {
		os.Exit(2)
	}
}

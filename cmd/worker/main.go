package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/sales-assistant/internal/bootstrap"
	"github.com/kirillkom/sales-assistant/internal/config"
	"github.com/kirillkom/sales-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/sales-assistant/internal/observability/logging"
	"github.com/kirillkom/sales-assistant/internal/observability/metrics"
)

const serviceName = "sales-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(os.Stdout, serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{
		Metrics:   workerMetrics.Pipeline(),
		WithQueue: true,
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Queue.SubscribeIngestRequested(ctx, func(handlerCtx context.Context, dir string) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Minute)
		defer cancel()

		start := time.Now()
		if requestedAt, ok := nats.RequestedAtFromContext(handlerCtx); ok {
			workerMetrics.ObserveQueueLag(serviceName, start.Sub(requestedAt))
		}
		workerMetrics.StartRun()
		report, err := app.Ingest.Run(runCtx, dir)
		workerMetrics.FinishRun(serviceName, time.Since(start), report, err)
		if err != nil {
			logger.Error("ingest_run_failed", "dir", dir, "error", err)
		}
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

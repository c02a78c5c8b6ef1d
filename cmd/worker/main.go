package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkravets/docqa/internal/bootstrap"
	"github.com/dkravets/docqa/internal/config"
	"github.com/dkravets/docqa/internal/observability/logging"
	"github.com/dkravets/docqa/internal/observability/metrics"
)

const (
	serviceName    = "worker"
	processTimeout = 5 * time.Minute
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Logger: logger})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           metricsHandler(workerMetrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics_server_failed", "error", err)
		}
	}()

	logger.Info("worker_started", "subject", cfg.NATSSubject)

	err = app.Queue.SubscribeDocumentEmbed(ctx, func(msgCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(msgCtx, processTimeout)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(serviceName, time.Since(start), processErr)

		if processErr != nil {
			logger.Error("document_process_failed", "document_id", documentID, "error", processErr)
			return processErr
		}
		logger.Info("document_processed", "document_id", documentID, "duration_ms", time.Since(start).Milliseconds())
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("subscription_failed", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
	logger.Info("worker_stopped")
}

func metricsHandler(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

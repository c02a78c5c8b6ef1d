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

	httpadapter "github.com/dkravets/docqa/internal/adapters/http"
	"github.com/dkravets/docqa/internal/bootstrap"
	"github.com/dkravets/docqa/internal/config"
	"github.com/dkravets/docqa/internal/observability/logging"
	"github.com/dkravets/docqa/internal/observability/metrics"
)

const serviceName = "api"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverMetrics := metrics.NewHTTPServerMetrics(serviceName)

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger:            logger,
		EmbedCacheCounter: serverMetrics.EmbedCacheCounter(),
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		app.ChatUC,
		app.IngestUC,
		app.Repo,
		serverMetrics,
		logger,
		httpadapter.RouterConfig{
			ServiceName:    serviceName,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		},
	)

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown_signal_received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	logger.Info("api_stopped")
}

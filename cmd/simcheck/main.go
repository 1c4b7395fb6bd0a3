package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/app"
	"github.com/kailas-cloud/simcheck/internal/config"
	logpkg "github.com/kailas-cloud/simcheck/internal/logger"
	"github.com/kailas-cloud/simcheck/internal/metrics"
	chiTransport "github.com/kailas-cloud/simcheck/internal/transport/chi"
	"github.com/kailas-cloud/simcheck/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, env, logger); err != nil {
		logger.Fatal("simcheck stopped", zap.Error(err))
	}
}

func run(cfg config.Config, env string, logger *zap.Logger) error {
	logger.Info("Starting simcheck API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterAnalysisMetrics()

	ctx := logpkg.ContextWithLogger(context.Background(), logger)
	a, err := app.Build(ctx, cfg, app.Options{RunStore: true}, logger)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("Error closing stores", zap.Error(err))
		}
	}()

	if err := a.Runner.RecoverInterrupted(ctx); err != nil {
		logger.Warn("Could not mark interrupted gap runs", zap.Error(err))
	}

	server := chiTransport.NewServer(a.Similarity, a.Search, a.Runner, a.Health, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	// Running gap analyses stop at their next batch and persist partial results.
	if err := a.Runner.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gap runs did not stop in time", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

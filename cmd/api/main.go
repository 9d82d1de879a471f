package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"royaltyflow/internal/cache"
	"royaltyflow/internal/config"
	"royaltyflow/internal/handlers"
	"royaltyflow/internal/logging"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	logger.Info("api_starting",
		"port", cfg.APIPort,
		"timeout_ms", cfg.APITimeout.Milliseconds(),
		"redis_url", cfg.RedisURL,
	)

	reader, err := cache.NewReader(cfg.RedisURL, cfg.RedisPassword, logger)
	if err != nil {
		logger.Error("failed to create cache reader", "error", err)
		os.Exit(1)
	}
	defer reader.Close()

	api := handlers.NewAPI(reader, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(handlers.RequestIDMiddleware)
	r.Use(handlers.LoggingMiddleware(logger))
	r.Use(handlers.TimeoutMiddleware(cfg.APITimeout, logger))

	r.Get("/health", api.Health)
	r.Get("/api/orders", api.GetOrders)
	r.Get("/api/summary", api.GetSummary)
	r.Get("/api/momentum", api.GetMomentum)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.APIPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("shutdown_signal_received", "signal", sig.String())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	logger.Info("api_stopped")
}

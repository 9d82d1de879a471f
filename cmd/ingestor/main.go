package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"royaltyflow/internal/config"
	"royaltyflow/internal/feed"
	"royaltyflow/internal/logging"
	"royaltyflow/internal/models"
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

	logger.Info("ingestor_starting",
		"feed_url", cfg.FeedURL,
		"poll_interval", cfg.PollInterval,
		"stream_key", cfg.StreamKey,
	)

	client, err := feed.NewClient(cfg.FeedURL, cfg.FeedTimeout, logger)
	if err != nil {
		logger.Error("failed to create feed client", "error", err)
		os.Exit(1)
	}

	publisher, err := feed.NewStreamPublisher(cfg.RedisURL, cfg.RedisPassword, cfg.StreamKey, logger)
	if err != nil {
		logger.Error("failed to create stream publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown_signal_received", "signal", sig.String())
		cancel()
	}()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	logger.Info("ingestor_running")

	// First poll immediately, then on the ticker.
	pollOnce(ctx, client, publisher, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("ingestor_stopped")
			return
		case <-ticker.C:
			pollOnce(ctx, client, publisher, logger)
		}
	}
}

func pollOnce(ctx context.Context, client *feed.Client, publisher *feed.StreamPublisher, logger *slog.Logger) {
	startTime := time.Now()

	orders, dropped, err := client.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("feed_fetch_failed", "error", err)
		}
		return
	}

	envelope := &models.OrderBatchEnvelope{
		Source:    "musicow",
		FetchedAt: time.Now().UTC(),
		Orders:    orders,
	}

	if err := publisher.Publish(ctx, envelope); err != nil {
		if ctx.Err() == nil {
			logger.Error("batch_publish_failed", "error", err)
		}
		return
	}

	logger.Info("poll_completed",
		"orders", len(orders),
		"dropped", dropped,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
}

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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"royaltyflow/internal/cache"
	"royaltyflow/internal/config"
	"royaltyflow/internal/consumer"
	"royaltyflow/internal/engine"
	"royaltyflow/internal/instrumentation"
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

	logger.Info("engine_starting",
		"redis_url", cfg.RedisURL,
		"stream_key", cfg.StreamKey,
		"consumer_group", cfg.ConsumerGroup,
		"cache_ttl", cfg.CacheTTL,
	)

	publisher, err := cache.NewPublisher(cfg.RedisURL, cfg.RedisPassword, cfg.CacheTTL, logger)
	if err != nil {
		logger.Error("failed to create cache publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	metrics := instrumentation.NewMetrics()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.PrometheusPort)
		http.Handle("/metrics", promhttp.Handler())
		logger.Info("metrics_server_starting", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error("metrics_server_failed", "error", err)
		}
	}()

	eng := engine.New(cfg.Thresholds(), cfg.LiquidityConfig())

	processor := &batchProcessor{
		engine:    eng,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("component", "batch_processor"),
		topN:      cfg.MomentumTopN,
	}

	cons, err := consumer.New(consumer.Config{
		RedisURL:      cfg.RedisURL,
		RedisPassword: cfg.RedisPassword,
		StreamKey:     cfg.StreamKey,
		ConsumerGroup: cfg.ConsumerGroup,
		ConsumerName:  fmt.Sprintf("engine-%s", os.Getenv("HOSTNAME")),
	}, processor.Process, logger)
	if err != nil {
		logger.Error("failed to create consumer", "error", err)
		os.Exit(1)
	}
	defer cons.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := cons.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	logger.Info("engine_running")

	select {
	case sig := <-sigChan:
		logger.Info("shutdown_signal_received", "signal", sig.String())
		cancel()
	case err := <-errChan:
		logger.Error("consumer_error", "error", err)
		cancel()
	}

	logger.Info("engine_stopped")
}

// batchProcessor runs the metrics engine over each consumed batch and
// publishes the three derived documents.
type batchProcessor struct {
	engine    *engine.Engine
	publisher *cache.Publisher
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
	topN      int
}

func (p *batchProcessor) Process(ctx context.Context, envelope *models.OrderBatchEnvelope, streamID string) error {
	startTime := time.Now()

	p.metrics.RecordBatch(len(envelope.Orders))
	p.metrics.RecordBatchLag(float64(time.Since(envelope.FetchedAt).Milliseconds()))

	enriched := p.engine.ComputeMetrics(envelope.Orders)
	summary := p.engine.Summary(enriched, time.Now().UTC())
	momentum := p.engine.TopMomentum(envelope.Orders, p.topN)

	p.metrics.RecordComputeLatency(float64(time.Since(startTime).Milliseconds()))

	generatedAt := time.Now().UTC()

	if err := p.publisher.PublishOrders(ctx, &models.OrdersSnapshot{
		GeneratedAt: generatedAt,
		Source:      envelope.Source,
		Orders:      enriched,
	}); err != nil {
		p.metrics.RecordError("batch_processor", "publish_orders")
		return err
	}

	if err := p.publisher.PublishSummary(ctx, &summary); err != nil {
		p.metrics.RecordError("batch_processor", "publish_summary")
		return err
	}

	if err := p.publisher.PublishMomentum(ctx, &models.MomentumSnapshot{
		GeneratedAt: generatedAt,
		Songs:       momentum,
	}); err != nil {
		p.metrics.RecordError("batch_processor", "publish_momentum")
		return err
	}

	p.metrics.RecordSnapshotAge(time.Since(envelope.FetchedAt).Seconds())

	p.logger.Info("batch_processed",
		"stream_id", streamID,
		"orders", len(enriched),
		"momentum_songs", len(momentum),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return nil
}

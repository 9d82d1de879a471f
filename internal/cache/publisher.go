// Package cache moves derived documents between the engine and the API
// through Redis KV with TTL. The API side never computes; it only reads what
// the engine last published.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"royaltyflow/internal/models"
)

// Cache keys for the derived documents.
const (
	KeyOrders   = "royaltyflow:orders"
	KeySummary  = "royaltyflow:summary"
	KeyMomentum = "royaltyflow:momentum"
)

// Publisher writes derived documents to the Redis cache.
type Publisher struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewPublisher connects to Redis and returns a publisher. Documents expire
// after ttl so the API never serves data older than the refresh policy allows.
func NewPublisher(redisURL, redisPassword string, ttl time.Duration, logger *slog.Logger) (*Publisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if redisPassword != "" {
		opt.Password = redisPassword
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Publisher{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "cache_publisher"),
	}, nil
}

// PublishOrders stores the enriched order snapshot.
func (p *Publisher) PublishOrders(ctx context.Context, snapshot *models.OrdersSnapshot) error {
	return p.set(ctx, KeyOrders, snapshot)
}

// PublishSummary stores the batch summary.
func (p *Publisher) PublishSummary(ctx context.Context, summary *models.SummaryMetrics) error {
	return p.set(ctx, KeySummary, summary)
}

// PublishMomentum stores the ranked momentum snapshot.
func (p *Publisher) PublishMomentum(ctx context.Context, snapshot *models.MomentumSnapshot) error {
	return p.set(ctx, KeyMomentum, snapshot)
}

func (p *Publisher) set(ctx context.Context, key string, doc interface{}) error {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}

	if err := p.client.Set(ctx, key, jsonBytes, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s failed: %w", key, err)
	}

	p.logger.Debug("document_published", "cache_key", key, "bytes", len(jsonBytes))
	return nil
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

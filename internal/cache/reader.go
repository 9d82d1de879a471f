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

// Reader reads derived documents from the Redis cache. A missing document is
// returned as nil with no error; the engine simply has not published yet or
// the TTL has lapsed.
type Reader struct {
	client *redis.Client
	logger *slog.Logger
}

// NewReader connects to Redis and returns a cache reader.
func NewReader(redisURL, redisPassword string, logger *slog.Logger) (*Reader, error) {
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

	return &Reader{
		client: client,
		logger: logger.With("component", "cache_reader"),
	}, nil
}

// GetOrders fetches the latest enriched order snapshot.
func (r *Reader) GetOrders(ctx context.Context) (*models.OrdersSnapshot, error) {
	var snapshot models.OrdersSnapshot
	ok, err := r.get(ctx, KeyOrders, &snapshot)
	if err != nil || !ok {
		return nil, err
	}
	return &snapshot, nil
}

// GetSummary fetches the latest batch summary.
func (r *Reader) GetSummary(ctx context.Context) (*models.SummaryMetrics, error) {
	var summary models.SummaryMetrics
	ok, err := r.get(ctx, KeySummary, &summary)
	if err != nil || !ok {
		return nil, err
	}
	return &summary, nil
}

// GetMomentum fetches the latest ranked momentum snapshot.
func (r *Reader) GetMomentum(ctx context.Context) (*models.MomentumSnapshot, error) {
	var snapshot models.MomentumSnapshot
	ok, err := r.get(ctx, KeyMomentum, &snapshot)
	if err != nil || !ok {
		return nil, err
	}
	return &snapshot, nil
}

func (r *Reader) get(ctx context.Context, key string, out interface{}) (bool, error) {
	startTime := time.Now()

	jsonBytes, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			r.logger.Debug("document_not_in_cache", "cache_key", key)
			return false, nil
		}
		return false, fmt.Errorf("redis GET %s failed: %w", key, err)
	}

	if err := json.Unmarshal(jsonBytes, out); err != nil {
		return false, fmt.Errorf("json unmarshal failed: %w", err)
	}

	r.logger.Debug("document_retrieved",
		"cache_key", key,
		"latency_ms", time.Since(startTime).Milliseconds(),
	)

	return true, nil
}

// Close closes the Redis connection.
func (r *Reader) Close() error {
	return r.client.Close()
}

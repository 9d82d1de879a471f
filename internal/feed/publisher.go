package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"royaltyflow/internal/models"
)

// StreamPublisher appends normalized order batches to the Redis stream the
// engine consumes from.
type StreamPublisher struct {
	client    *redis.Client
	streamKey string
	logger    *slog.Logger
}

// NewStreamPublisher connects to Redis and returns a publisher for streamKey.
func NewStreamPublisher(redisURL, redisPassword, streamKey string, logger *slog.Logger) (*StreamPublisher, error) {
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

	return &StreamPublisher{
		client:    client,
		streamKey: streamKey,
		logger:    logger.With("component", "stream_publisher", "stream_key", streamKey),
	}, nil
}

// Publish serializes the envelope and appends it to the stream as a single
// entry under the "data" field.
func (p *StreamPublisher) Publish(ctx context.Context, envelope *models.OrderBatchEnvelope) error {
	jsonBytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamKey,
		Values: map[string]interface{}{"data": jsonBytes},
	}).Result()
	if err != nil {
		return fmt.Errorf("redis XADD failed: %w", err)
	}

	p.logger.Info("batch_published",
		"stream_id", id,
		"orders", len(envelope.Orders),
		"source", envelope.Source,
	)

	return nil
}

// Close closes the Redis connection.
func (p *StreamPublisher) Close() error {
	return p.client.Close()
}

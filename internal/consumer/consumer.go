// Package consumer reads order batches from the Redis stream using the
// XREADGROUP/XACK consumer-group pattern for at-least-once delivery.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"royaltyflow/internal/models"
)

// BatchHandler processes a deserialized order batch.
type BatchHandler func(ctx context.Context, envelope *models.OrderBatchEnvelope, streamID string) error

// Config holds consumer configuration.
type Config struct {
	RedisURL      string
	RedisPassword string
	StreamKey     string
	ConsumerGroup string
	ConsumerName  string
	BlockTime     time.Duration // how long XREADGROUP blocks waiting for entries
	BatchSize     int64         // entries read per XREADGROUP call
}

// Consumer reads order batch envelopes from a Redis stream.
type Consumer struct {
	client        *redis.Client
	streamKey     string
	consumerGroup string
	consumerName  string
	handler       BatchHandler
	logger        *slog.Logger
	blockTime     time.Duration
	batchSize     int64
}

// New connects to Redis, ensures the consumer group exists and returns a
// consumer ready to Start.
func New(cfg Config, handler BatchHandler, logger *slog.Logger) (*Consumer, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.RedisPassword != "" {
		opt.Password = cfg.RedisPassword
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	// XGroupCreateMkStream creates the stream if it does not exist yet.
	err = client.XGroupCreateMkStream(ctx, cfg.StreamKey, cfg.ConsumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	blockTime := cfg.BlockTime
	if blockTime <= 0 {
		blockTime = 5 * time.Second
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	return &Consumer{
		client:        client,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		consumerName:  cfg.ConsumerName,
		handler:       handler,
		logger:        logger.With("component", "consumer", "stream_key", cfg.StreamKey),
		blockTime:     blockTime,
		batchSize:     batchSize,
	}, nil
}

// Start consumes until the context is cancelled. Entries are acknowledged
// only after the handler succeeds; failed entries are redelivered.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer_starting",
		"consumer_group", c.consumerGroup,
		"consumer_name", c.consumerName,
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopping")
			return ctx.Err()
		default:
			streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    c.consumerGroup,
				Consumer: c.consumerName,
				Streams:  []string{c.streamKey, ">"},
				Count:    c.batchSize,
				Block:    c.blockTime,
				NoAck:    false,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					continue
				}
				c.logger.Error("xreadgroup_failed", "error", err)
				time.Sleep(time.Second)
				continue
			}

			for _, stream := range streams {
				for _, message := range stream.Messages {
					if err := c.processMessage(ctx, message); err != nil {
						c.logger.Error("message_processing_failed",
							"stream_id", message.ID,
							"error", err,
						)
						continue
					}

					if err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, message.ID).Err(); err != nil {
						c.logger.Error("xack_failed", "stream_id", message.ID, "error", err)
					}
				}
			}
		}
	}
}

// processMessage decodes one stream entry and hands it to the handler.
func (c *Consumer) processMessage(ctx context.Context, msg redis.XMessage) error {
	envelope, err := ParseEnvelope(msg.Values)
	if err != nil {
		return err
	}

	c.logger.Debug("batch_received",
		"stream_id", msg.ID,
		"orders", len(envelope.Orders),
		"source", envelope.Source,
		"lag_ms", time.Since(envelope.FetchedAt).Milliseconds(),
	)

	if err := c.handler(ctx, envelope, msg.ID); err != nil {
		return fmt.Errorf("handler failed: %w", err)
	}

	return nil
}

// ParseEnvelope extracts and validates an order batch envelope from a stream
// entry's values. Entries carry the JSON document under the "data" field.
func ParseEnvelope(values map[string]interface{}) (*models.OrderBatchEnvelope, error) {
	dataField, ok := values["data"]
	if !ok {
		return nil, fmt.Errorf("stream entry missing 'data' field")
	}

	jsonStr, ok := dataField.(string)
	if !ok {
		return nil, fmt.Errorf("data field is not a string")
	}

	var envelope models.OrderBatchEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &envelope); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if err := models.ValidateEnvelope(&envelope); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	return &envelope, nil
}

// Close closes the Redis connection.
func (c *Consumer) Close() error {
	return c.client.Close()
}

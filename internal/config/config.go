package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"royaltyflow/internal/metrics"
)

// Config holds configuration for all three services. Each binary reads the
// same struct and uses the fields it needs.
type Config struct {
	// Upstream feed (ingestor)
	FeedURL         string `env:"FEED_URL" envDefault:"https://data.musicow.com/files/v1/market/orders.json"`
	FeedTimeoutSec  int    `env:"FEED_TIMEOUT_SEC" envDefault:"30"`
	PollIntervalSec int    `env:"POLL_INTERVAL_SEC" envDefault:"300"`

	// Redis
	RedisURL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	StreamKey     string `env:"STREAM_KEY" envDefault:"orders:feed"`
	ConsumerGroup string `env:"CONSUMER_GROUP" envDefault:"royaltyflow"`
	CacheTTLSec   int    `env:"CACHE_TTL_SEC" envDefault:"600"`

	// API server
	APIPort      int `env:"API_PORT" envDefault:"8080"`
	APITimeoutMS int `env:"API_TIMEOUT_MS" envDefault:"500"`

	// Momentum ranking
	MomentumTopN int `env:"MOMENTUM_TOP_N" envDefault:"50"`

	// Observability
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	PrometheusPort int    `env:"PROMETHEUS_PORT" envDefault:"9091"`

	// Signal / momentum thresholds
	SpreadInstantMatch float64 `env:"SPREAD_INSTANT_MATCH" envDefault:"0.5"`
	SpreadLow          float64 `env:"SPREAD_LOW" envDefault:"-5"`
	SpreadHigh         float64 `env:"SPREAD_HIGH" envDefault:"5"`
	SpreadExtreme      float64 `env:"SPREAD_EXTREME" envDefault:"20"`
	YieldHigh          float64 `env:"YIELD_HIGH" envDefault:"8"`
	YieldMedium        float64 `env:"YIELD_MEDIUM" envDefault:"5"`
	YieldLow           float64 `env:"YIELD_LOW" envDefault:"3"`
	LiquidityHigh      float64 `env:"LIQUIDITY_HIGH" envDefault:"70"`
	LiquidityMedium    float64 `env:"LIQUIDITY_MEDIUM" envDefault:"40"`
	LiquidityLow       float64 `env:"LIQUIDITY_LOW" envDefault:"20"`
	MomentumUp         float64 `env:"MOMENTUM_UP" envDefault:"5"`
	MomentumDown       float64 `env:"MOMENTUM_DOWN" envDefault:"-10"`

	// Liquidity scoring constants
	LiquiditySpreadPenalty       float64 `env:"LIQUIDITY_SPREAD_PENALTY" envDefault:"5"`
	LiquidityVolumeSaturation    float64 `env:"LIQUIDITY_VOLUME_SATURATION" envDefault:"1000"`
	LiquidityFrequencySaturation int     `env:"LIQUIDITY_FREQUENCY_SATURATION" envDefault:"50"`

	// Computed durations (not from env)
	FeedTimeout  time.Duration `env:"-"`
	PollInterval time.Duration `env:"-"`
	CacheTTL     time.Duration `env:"-"`
	APITimeout   time.Duration `env:"-"`
}

// LoadFromEnv loads configuration from the environment, reading a local .env
// file first when one exists.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	cfg.FeedTimeout = time.Duration(cfg.FeedTimeoutSec) * time.Second
	cfg.PollInterval = time.Duration(cfg.PollIntervalSec) * time.Second
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSec) * time.Second
	cfg.APITimeout = time.Duration(cfg.APITimeoutMS) * time.Millisecond

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return fmt.Errorf("feed URL must be configured")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("stream key must be configured")
	}

	if c.PollInterval < time.Second {
		return fmt.Errorf("poll interval must be at least 1 second")
	}

	if c.CacheTTL < time.Second {
		return fmt.Errorf("cache TTL must be at least 1 second")
	}

	if c.MomentumTopN <= 0 {
		return fmt.Errorf("momentum top-N must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}

	liq := c.LiquidityConfig()
	if liq.VolumeSaturation <= 0 || liq.FrequencySaturation <= 0 {
		return fmt.Errorf("liquidity saturation points must be positive")
	}

	return nil
}

// Thresholds materializes the classification thresholds from config.
func (c *Config) Thresholds() metrics.Thresholds {
	return metrics.Thresholds{
		SpreadInstantMatch: c.SpreadInstantMatch,
		SpreadLow:          c.SpreadLow,
		SpreadHigh:         c.SpreadHigh,
		SpreadExtreme:      c.SpreadExtreme,
		YieldHigh:          c.YieldHigh,
		YieldMedium:        c.YieldMedium,
		YieldLow:           c.YieldLow,
		LiquidityHigh:      c.LiquidityHigh,
		LiquidityMedium:    c.LiquidityMedium,
		LiquidityLow:       c.LiquidityLow,
		MomentumUp:         c.MomentumUp,
		MomentumDown:       c.MomentumDown,
	}
}

// LiquidityConfig materializes the liquidity scoring constants from config.
// Sub-score weights are not env-tunable; they define the metric itself.
func (c *Config) LiquidityConfig() metrics.LiquidityConfig {
	cfg := metrics.DefaultLiquidityConfig()
	cfg.SpreadPenalty = c.LiquiditySpreadPenalty
	cfg.VolumeSaturation = c.LiquidityVolumeSaturation
	cfg.FrequencySaturation = c.LiquidityFrequencySaturation
	return cfg
}

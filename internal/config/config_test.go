package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.StreamKey != "orders:feed" {
		t.Fatalf("stream key = %q", cfg.StreamKey)
	}
	if cfg.PollInterval != 5*time.Minute {
		t.Fatalf("poll interval = %v", cfg.PollInterval)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("cache TTL = %v", cfg.CacheTTL)
	}
	if cfg.APITimeout != 500*time.Millisecond {
		t.Fatalf("api timeout = %v", cfg.APITimeout)
	}
	if cfg.MomentumTopN != 50 {
		t.Fatalf("momentum top-N = %d", cfg.MomentumTopN)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("SPREAD_LOW", "-3")
	t.Setenv("SPREAD_HIGH", "3")
	t.Setenv("LIQUIDITY_VOLUME_SATURATION", "2000")
	t.Setenv("POLL_INTERVAL_SEC", "60")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	th := cfg.Thresholds()
	if th.SpreadLow != -3 || th.SpreadHigh != 3 {
		t.Fatalf("spread thresholds = (%f, %f)", th.SpreadLow, th.SpreadHigh)
	}

	liq := cfg.LiquidityConfig()
	if liq.VolumeSaturation != 2000 {
		t.Fatalf("volume saturation = %f", liq.VolumeSaturation)
	}

	if cfg.PollInterval != time.Minute {
		t.Fatalf("poll interval = %v", cfg.PollInterval)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty feed URL", func(c *Config) { c.FeedURL = "" }},
		{"empty stream key", func(c *Config) { c.StreamKey = "" }},
		{"sub-second poll interval", func(c *Config) { c.PollInterval = 100 * time.Millisecond }},
		{"sub-second cache TTL", func(c *Config) { c.CacheTTL = 0 }},
		{"non-positive momentum top-N", func(c *Config) { c.MomentumTopN = 0 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"inverted spread thresholds", func(c *Config) { c.SpreadLow = 10 }},
		{"inverted momentum thresholds", func(c *Config) { c.MomentumDown = 10 }},
		{"zero volume saturation", func(c *Config) { c.LiquidityVolumeSaturation = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestThresholdsMaterialization(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	th := cfg.Thresholds()
	if th.SpreadInstantMatch != 0.5 {
		t.Fatalf("instant match band = %f", th.SpreadInstantMatch)
	}
	if th.LiquidityHigh != 70 || th.LiquidityMedium != 40 || th.LiquidityLow != 20 {
		t.Fatalf("liquidity thresholds = %f/%f/%f", th.LiquidityHigh, th.LiquidityMedium, th.LiquidityLow)
	}
	if th.MomentumUp != 5 || th.MomentumDown != -10 {
		t.Fatalf("momentum thresholds = %f/%f", th.MomentumUp, th.MomentumDown)
	}

	liq := cfg.LiquidityConfig()
	if liq.SpreadWeight != 0.4 || liq.DepthWeight != 0.3 || liq.FrequencyWeight != 0.3 {
		t.Fatalf("weights = %f/%f/%f", liq.SpreadWeight, liq.DepthWeight, liq.FrequencyWeight)
	}
	if liq.FrequencySaturation != 50 {
		t.Fatalf("frequency saturation = %d", liq.FrequencySaturation)
	}
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Canonical policy defaults: clips up to two minutes are streamed in
// place, anything bigger than 48 MiB on disk is rejected instead of
// uploaded.
const (
	DefaultStreamMaxDuration = 2 * time.Minute
	DefaultMaxUploadBytes    = 48 << 20
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.2 Safari/605.1.15"

// Config holds all bot configuration. Values come from defaults, an
// optional yaml file, then environment variables; the environment wins.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// TelegramConfig holds messaging transport configuration.
type TelegramConfig struct {
	Token           string `yaml:"token" envconfig:"BOT_TOKEN"`
	PollTimeoutSecs int    `yaml:"poll_timeout_secs" envconfig:"POLL_TIMEOUT_SECS"`
}

// DeliveryConfig holds the delivery policy knobs.
type DeliveryConfig struct {
	StreamMaxDuration time.Duration `yaml:"stream_max_duration" envconfig:"STREAM_MAX_DURATION"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	ScratchDir        string        `yaml:"scratch_dir" envconfig:"SCRATCH_DIR"`
	UserAgent         string        `yaml:"user_agent" envconfig:"YT_USER_AGENT"`
}

// MetricsConfig holds the optional prometheus listener address. Empty
// means the bot opens no listening socket at all.
type MetricsConfig struct {
	Addr string `yaml:"addr" envconfig:"METRICS_ADDR"`
}

// Default returns the configuration with every policy knob at its
// canonical value and no token.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeoutSecs: 60,
		},
		Delivery: DeliveryConfig{
			StreamMaxDuration: DefaultStreamMaxDuration,
			MaxUploadBytes:    DefaultMaxUploadBytes,
			ScratchDir:        "/tmp/clipferry",
			UserAgent:         defaultUserAgent,
		},
	}
}

// Load reads configuration from the yaml file at configPath (if not
// empty) and then from environment variables, on top of the defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Delivery.StreamMaxDuration <= 0 {
		return fmt.Errorf("STREAM_MAX_DURATION must be positive")
	}
	if c.Delivery.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.Delivery.ScratchDir == "" {
		return fmt.Errorf("SCRATCH_DIR is required")
	}
	return nil
}

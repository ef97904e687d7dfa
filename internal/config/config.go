package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/pulsedelivery/orderbot/internal/storage"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// ChannelConfig points at the channel users must be subscribed to before ordering.
type ChannelConfig struct {
	ID string `yaml:"id" envconfig:"CHANNEL_ID"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// RateLimitConfig holds the sliding-window protection settings applied before
// any order-form handler runs.
type RateLimitConfig struct {
	// Limit is the number of events allowed per PeriodSeconds before the user
	// is asked to slow down.
	Limit         int `yaml:"limit" envconfig:"RATE_LIMIT"`
	PeriodSeconds int `yaml:"period_seconds" envconfig:"RATE_PERIOD_SECONDS"`
	// MaxPerMinute is the hard ceiling; crossing it blacklists the sender.
	MaxPerMinute int `yaml:"max_per_minute" envconfig:"RATE_MAX_PER_MINUTE"`
}

// GeocoderConfig controls the reverse-geocoding lookup for shared locations.
type GeocoderConfig struct {
	Enabled   bool   `yaml:"enabled" envconfig:"GEOCODER_ENABLED"`
	BaseURL   string `yaml:"base_url" envconfig:"GEOCODER_BASE_URL"`
	UserAgent string `yaml:"user_agent" envconfig:"GEOCODER_USER_AGENT"`
}

// RedisConfig selects the Redis session store. An empty URL keeps sessions in memory.
type RedisConfig struct {
	URL string `yaml:"url" envconfig:"REDIS_URL"`
}

// Config aggregates the full application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Channel   ChannelConfig   `yaml:"channel"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Geocoder  GeocoderConfig  `yaml:"geocoder"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  storage.Config  `yaml:"database"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Telegram.AdminID == 0 {
		return fmt.Errorf("telegram.admin_id is required; orders are forwarded there")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.RateLimit.Limit <= 0 {
		cfg.RateLimit.Limit = 10
	}
	if cfg.RateLimit.PeriodSeconds <= 0 {
		cfg.RateLimit.PeriodSeconds = 60
	}
	if cfg.RateLimit.MaxPerMinute <= 0 {
		cfg.RateLimit.MaxPerMinute = 40
	}
	if cfg.RateLimit.MaxPerMinute < cfg.RateLimit.Limit {
		return fmt.Errorf("rate_limit.max_per_minute (%d) must not be below rate_limit.limit (%d)",
			cfg.RateLimit.MaxPerMinute, cfg.RateLimit.Limit)
	}

	if cfg.Channel.ID != "" && !strings.HasPrefix(cfg.Channel.ID, "@") && !isNumeric(cfg.Channel.ID) {
		return fmt.Errorf("channel.id must be a @username or a numeric chat id, got %q", cfg.Channel.ID)
	}

	if cfg.Geocoder.Enabled {
		if strings.TrimSpace(cfg.Geocoder.BaseURL) == "" {
			cfg.Geocoder.BaseURL = "https://nominatim.openstreetmap.org"
		}
		if strings.TrimSpace(cfg.Geocoder.UserAgent) == "" {
			cfg.Geocoder.UserAgent = "pulsedelivery-orderbot"
		}
	}

	return nil
}

func isNumeric(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

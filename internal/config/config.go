package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	GroqAPIKey  string `env:"GROQ_API_KEY,required,notEmpty"`
	GroqBaseURL string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`

	// Server
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8501"`

	// Storage: in-memory sessions when empty
	DatabaseURL string `env:"DATABASE_URL"`

	// Chat behavior
	ModelsFile    string  `env:"MODELS_FILE"`
	SystemPrompt  string  `env:"SYSTEM_PROMPT"`
	MarkupPercent float64 `env:"MARKUP_PERCENT" envDefault:"0"`

	// Sessions
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionPurgeSchedule string        `env:"SESSION_PURGE_SCHEDULE" envDefault:"@every 5m"`
	RateLimitPerMinute   int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	SecureCookies        bool          `env:"SECURE_COOKIES" envDefault:"false"`

	// Telegram front end, disabled when empty
	TelegramBotToken   string `env:"TELEGRAM_BOT_TOKEN"`
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFrom reads the configuration from the given variables instead of the
// process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is process configuration, loaded from the environment.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// ContentDir holds the authored event YAML files.
	ContentDir string `env:"CONTENT_DIR" envDefault:"content"`

	// RedisAddr enables the autosave store when non-empty.
	RedisAddr string `env:"REDIS_ADDR"`

	// SavePath is the SQLite file holding named save slots.
	SavePath string `env:"SAVE_PATH" envDefault:"chronicle.db"`

	// Seed fixes the random source for a reproducible playthrough.
	// Zero means seed from the clock.
	Seed int64 `env:"SEED"`

	RandomEventChance   float64 `env:"RANDOM_EVENT_CHANCE" envDefault:"0.20"`
	TemplateEventChance float64 `env:"TEMPLATE_EVENT_CHANCE" envDefault:"0.50"`
	BankruptcyDays      int     `env:"BANKRUPTCY_DAYS" envDefault:"30"`
	HistoryCap          int     `env:"HISTORY_CAP" envDefault:"365"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured level string to a slog level.
// Unrecognized values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

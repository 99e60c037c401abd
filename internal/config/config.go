// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port            string        `env:"GOPORT" envDefault:"8000"`
	ModelPath       string        `env:"MODEL_PATH" envDefault:"model.json"`
	DBPath          string        `env:"DB_PATH" envDefault:"predictions.db"`
	HistoryEnabled  bool          `env:"HISTORY_ENABLED" envDefault:"true"`
	StaticDir       string        `env:"STATIC_DIR"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RateLimit       float64       `env:"PREDICT_RATE_LIMIT" envDefault:"5"`
	RateBurst       int           `env:"PREDICT_RATE_BURST" envDefault:"10"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	WatchModel      bool          `env:"WATCH_MODEL" envDefault:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom reads Config from the given variables only.
func LoadFrom(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

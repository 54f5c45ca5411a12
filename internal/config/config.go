package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DBPath       string `env:"DB_PATH" envDefault:"data/lessonplay.db"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	StorePrefix  string `env:"STORE_PREFIX" envDefault:"businesslike_"`

	// ContentDir holds course YAML files. Empty means the built-in courses.
	ContentDir string `env:"CONTENT_DIR"`
	SPADir     string `env:"SPA_DIR" envDefault:"../web/dist"`

	RevealDelay    time.Duration `env:"REVEAL_DELAY" envDefault:"1500ms"`
	WrongCooldown  time.Duration `env:"WRONG_COOLDOWN" envDefault:"800ms"`
	CompleteDelay  time.Duration `env:"COMPLETE_DELAY" envDefault:"500ms"`
	MaterialsDelay time.Duration `env:"MATERIALS_DELAY" envDefault:"2s"`
	NotifyDismiss  time.Duration `env:"NOTIFY_DISMISS" envDefault:"3s"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"2h"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	switch cfg.StoreBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return &cfg, nil
}

package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreBackend != BackendSQLite || cfg.StorePrefix != "businesslike_" {
		t.Errorf("store = %q prefix %q", cfg.StoreBackend, cfg.StorePrefix)
	}
	if cfg.RevealDelay != 1500*time.Millisecond || cfg.WrongCooldown != 800*time.Millisecond ||
		cfg.CompleteDelay != 500*time.Millisecond || cfg.MaterialsDelay != 2*time.Second {
		t.Errorf("timing = %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "redis backend",
			env:  map[string]string{"STORE_BACKEND": "redis", "REDIS_URL": "redis://cache:6379/2"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.StoreBackend != BackendRedis || cfg.RedisURL != "redis://cache:6379/2" {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
		{
			name: "durations and level",
			env:  map[string]string{"REVEAL_DELAY": "10ms", "SESSION_TTL": "5m", "LOG_LEVEL": "DEBUG"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.RevealDelay != 10*time.Millisecond || cfg.SessionTTL != 5*time.Minute || cfg.LogLevel != slog.LevelDebug {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
		{name: "unknown backend", env: map[string]string{"STORE_BACKEND": "postgres"}, wantErr: true},
		{name: "bad duration", env: map[string]string{"WRONG_COOLDOWN": "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

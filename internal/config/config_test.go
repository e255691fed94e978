package config

import (
	"errors"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "STORE", "CACHE_TTL", "SEED", "SEED_YEARS", "HTTP_ADDR"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Store != StorePostgres || cfg.HTTPAddr != ":8080" || cfg.CacheTTL != 5*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Seed.Seed != 42 || cfg.Seed.Years != 3 || cfg.Seed.BatchSize != 25_000 {
		t.Errorf("seed = %+v", cfg.Seed)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("CACHE_TTL", "0")
	t.Setenv("SEED", "7")
	t.Setenv("SEED_YEARS", "1")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Store != StoreMemory || cfg.DB.Driver != "pgx" || cfg.CacheTTL != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Seed.Seed != 7 || cfg.Seed.Years != 1 {
		t.Errorf("seed = %+v", cfg.Seed)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"SEED_YEARS": "three",
		"CACHE_TTL":  "soon",
		"SEED":       "-1",
		"STORE":      "redis",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := FromEnv(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("%s=%q: err = %v, want ErrInvalidConfig", key, value, err)
			}
		})
	}
}

package config_test

import (
	"testing"
	"time"

	"github.com/iho/walletledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.AuthEnabled() {
		t.Fatalf("expected auth to be disabled without a secret")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseLockTimeout != 5*time.Second {
		t.Fatalf("expected default lock timeout 5s, got %s", cfg.DatabaseLockTimeout)
	}

	if cfg.SettlementSuccessRate != 0.9 {
		t.Fatalf("expected default settlement success rate 0.9, got %v", cfg.SettlementSuccessRate)
	}

	if cfg.HistoryPageSize != 20 {
		t.Fatalf("expected default history page size 20, got %d", cfg.HistoryPageSize)
	}

	if cfg.StatsCacheTTL != 5*time.Minute {
		t.Fatalf("expected default stats TTL 5m, got %s", cfg.StatsCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_LOCK_TIMEOUT", "250ms")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("SETTLEMENT_SUCCESS_RATE", "1")
	t.Setenv("OUTBOX_ENABLED", "true")
	t.Setenv("BALANCE_CACHE_TTL", "30s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" || !cfg.CacheEnabled() {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseLockTimeout != 250*time.Millisecond {
		t.Fatalf("expected lock timeout override, got %s", cfg.DatabaseLockTimeout)
	}

	if cfg.JWTSecret != "top-secret" || !cfg.AuthEnabled() {
		t.Fatalf("expected auth settings to be set, got secret=%s", cfg.JWTSecret)
	}

	if cfg.SettlementSuccessRate != 1 || !cfg.OutboxEnabled {
		t.Fatalf("expected settlement and outbox overrides, got rate=%v outbox=%v", cfg.SettlementSuccessRate, cfg.OutboxEnabled)
	}

	if cfg.BalanceCacheTTL != 30*time.Second {
		t.Fatalf("expected balance TTL override, got %s", cfg.BalanceCacheTTL)
	}
}

func TestLoadEmptyRedisDisablesCache(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.CacheEnabled() {
		t.Fatalf("expected cache to be disabled")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"duration", "HTTP_READ_TIMEOUT", "not-a-duration"},
		{"success rate above one", "SETTLEMENT_SUCCESS_RATE", "1.5"},
		{"negative success rate", "SETTLEMENT_SUCCESS_RATE", "-0.1"},
		{"page size", "HISTORY_PAGE_SIZE", "0"},
		{"pool bounds", "DATABASE_MIN_CONNS", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

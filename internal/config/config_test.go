package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.AnswerCacheTTL != 24*time.Hour {
		t.Fatalf("expected 24h answer cache TTL, got %v", cfg.AnswerCacheTTL)
	}
	if !cfg.CacheEnabled {
		t.Fatal("cache should default to enabled")
	}
	if cfg.HistoryLimit != 200 {
		t.Fatalf("expected history limit 200, got %d", cfg.HistoryLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "fh-test")
	t.Setenv("ANSWER_CACHE_TTL", "1h")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("CACHE_ENABLED", "false")

	cfg := DefaultConfig()

	if cfg.FinnhubAPIKey != "fh-test" {
		t.Fatalf("expected finnhub key override, got %q", cfg.FinnhubAPIKey)
	}
	if cfg.AnswerCacheTTL != time.Hour {
		t.Fatalf("expected 1h TTL, got %v", cfg.AnswerCacheTTL)
	}
	if cfg.HistoryLimit != 25 {
		t.Fatalf("expected history limit 25, got %d", cfg.HistoryLimit)
	}
	if cfg.CacheEnabled {
		t.Fatal("expected cache disabled")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBPath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty db path should not validate")
	}

	cfg = DefaultConfig()
	cfg.AnswerCacheTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero TTL should not validate")
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"AUTH_COOKIE_NAME", "RATE_LIMIT_PER_MINUTE", "APP_TIMEZONE", "CAMPAIGN_CLOSE_INTERVAL_MINUTES"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.AuthCookieName != "sb-access-token" {
		t.Errorf("expected default cookie name, got %q", cfg.AuthCookieName)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Errorf("expected 120 requests per minute, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.Location != time.UTC {
		t.Errorf("expected UTC, got %s", cfg.Location)
	}
	if cfg.CampaignCloseInterval != 10*time.Minute {
		t.Errorf("expected 10m close interval, got %s", cfg.CampaignCloseInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("CAMPAIGN_CLOSE_INTERVAL_MINUTES", "1")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()
	if cfg.RateLimitPerMinute != 30 {
		t.Errorf("expected 30, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.CampaignCloseInterval != time.Minute {
		t.Errorf("expected 1m, got %s", cfg.CampaignCloseInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected lower-cased level, got %q", cfg.LogLevel)
	}
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "ten")
	if got := getEnvInt("SOME_INT", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}

func TestLoadRejectsNonPositiveCloseInterval(t *testing.T) {
	t.Setenv("CAMPAIGN_CLOSE_INTERVAL_MINUTES", "0")
	if got := Load().CampaignCloseInterval; got != 10*time.Minute {
		t.Errorf("expected fallback 10m, got %s", got)
	}
}

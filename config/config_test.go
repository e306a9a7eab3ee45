package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ROOM_POLL_INTERVAL", "")
	t.Setenv("SEND_TARGETS_FOR_NON_AUTO_MODES", "")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("CORS_ALLOWED_HEADERS", "")

	cfg := Load()
	if cfg.Port != "3001" {
		t.Fatalf("Port = %q, want 3001", cfg.Port)
	}
	if cfg.RoomPollInterval != 120*time.Second {
		t.Fatalf("RoomPollInterval = %v, want 2m0s", cfg.RoomPollInterval)
	}
	if !cfg.SendTargetsForNonAutoModes {
		t.Fatalf("SendTargetsForNonAutoModes should default to true")
	}
	if cfg.PostgresURL() != "" {
		t.Fatalf("PostgresURL = %q, want empty without POSTGRES_HOST", cfg.PostgresURL())
	}
	if cfg.CookieSecure {
		t.Fatalf("CookieSecure should default to false")
	}
	if cfg.CORSAllowedHeaders != "Authorization,Content-Type,X-Request-ID" {
		t.Fatalf("CORSAllowedHeaders = %q", cfg.CORSAllowedHeaders)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ROOM_POLL_INTERVAL", "30s")
	t.Setenv("SEND_TARGETS_FOR_NON_AUTO_MODES", "false")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := Load()
	if cfg.RoomPollInterval != 30*time.Second {
		t.Fatalf("RoomPollInterval = %v, want 30s", cfg.RoomPollInterval)
	}
	if cfg.SendTargetsForNonAutoModes {
		t.Fatalf("SendTargetsForNonAutoModes should be false")
	}
	if cfg.SessionTTL != 8*time.Hour {
		t.Fatalf("SessionTTL = %v, want default 8h on invalid input", cfg.SessionTTL)
	}
	if !cfg.CookieSecure {
		t.Fatalf("CookieSecure should be true")
	}
	if got := cfg.PostgresURL(); got != "postgres://admin:pw@db:5432/smartoffice" {
		t.Fatalf("PostgresURL = %q", got)
	}
}

package config

import (
	"encoding/base64"
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CSRF_KEY", "")
	t.Setenv("API_BASE_URL", "http://backend:8080/api/")
	t.Setenv("ADMIN_IDLE_TIMEOUT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != "8585" {
		t.Errorf("Expected fallback port 8585, got %q", cfg.Port)
	}
	if cfg.APIBaseURL != "http://backend:8080/api" {
		t.Errorf("Expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if len(cfg.CSRFKey) != 32 {
		t.Errorf("Expected generated 32 byte CSRF key, got %d bytes", len(cfg.CSRFKey))
	}
	if cfg.AdminIdleTimeout != 30*time.Minute {
		t.Errorf("Expected 30m idle timeout, got %s", cfg.AdminIdleTimeout)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	key := make([]byte, 48)
	for i := range key {
		key[i] = byte(i)
	}
	t.Setenv("SESSION_KEY", base64.StdEncoding.EncodeToString(key))
	t.Setenv("ADMIN_IDLE_TIMEOUT", "5m")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(cfg.SessionKey) != 48 || cfg.SessionKey[47] != 47 {
		t.Errorf("Expected decoded session key, got %d bytes", len(cfg.SessionKey))
	}
	if cfg.AdminIdleTimeout != 5*time.Minute {
		t.Errorf("Expected 5m, got %s", cfg.AdminIdleTimeout)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("Expected unknown driver to fall back to sqlite, got %q", cfg.DBDriver)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("Expected warn level, got %v", cfg.LogLevel)
	}
	if cfg.RateLimitPerMin != 10 {
		t.Errorf("Expected default rate limit, got %d", cfg.RateLimitPerMin)
	}
}

func TestLoadKey_TooShort(t *testing.T) {
	t.Setenv("SHORT_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
	if k := loadKey("SHORT_KEY"); len(k) != 32 {
		t.Errorf("Expected regenerated 32 byte key, got %d", len(k))
	}
}

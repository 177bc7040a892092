package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("Unsetenv(%q) error = %v", key, err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "HTTP_ADDR", "DATABASE_URL", "LOG_LEVEL", "API_BASE_URL", "API_TIMEOUT",
		"SYSTEM_COLOR_SCHEME", "ADMIN_EMAIL", "ADMIN_PASSCODE_HASH", "MUSIC_AUTO_ADVANCE", "MUSIC_PROGRESS_INTERVAL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.DatabaseURL != "sqlite::memory:" {
		t.Fatalf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "sqlite::memory:")
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.APITimeout != 8*time.Second {
		t.Fatalf("APITimeout = %v, want %v", cfg.APITimeout, 8*time.Second)
	}
	if !cfg.MusicAutoAdvance {
		t.Fatalf("MusicAutoAdvance = false, want true")
	}
	if cfg.RemoteEnabled() {
		t.Fatalf("RemoteEnabled() = true, want false")
	}
}

func TestLoad_TrimsBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", " https://api.example.org/trpc/ ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.org/trpc" {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "https://api.example.org/trpc")
	}
}

func TestLoad_RejectsUnknownColorScheme(t *testing.T) {
	t.Setenv("SYSTEM_COLOR_SCHEME", "sepia")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want error")
	}
}

func TestLoad_PasscodeRequiresEmail(t *testing.T) {
	unsetEnv(t, "ADMIN_EMAIL")
	t.Setenv("ADMIN_PASSCODE_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want error")
	}
}

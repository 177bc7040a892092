package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:"sqlite::memory:"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ClientToken string `envconfig:"CLIENT_TOKEN"`

	APIBaseURL string        `envconfig:"API_BASE_URL"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"8s"`

	SystemColorScheme string `envconfig:"SYSTEM_COLOR_SCHEME" default:"light"`

	AdminEmail        string `envconfig:"ADMIN_EMAIL"`
	AdminPasscodeHash string `envconfig:"ADMIN_PASSCODE_HASH"`

	MusicAutoAdvance      bool          `envconfig:"MUSIC_AUTO_ADVANCE" default:"true"`
	MusicProgressInterval time.Duration `envconfig:"MUSIC_PROGRESS_INTERVAL" default:"500ms"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.HTTPAddr = strings.TrimSpace(cfg.HTTPAddr)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.LogLevel = strings.TrimSpace(cfg.LogLevel)
	cfg.ClientToken = strings.TrimSpace(cfg.ClientToken)
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.SystemColorScheme = strings.ToLower(strings.TrimSpace(cfg.SystemColorScheme))
	cfg.AdminEmail = strings.TrimSpace(cfg.AdminEmail)
	cfg.AdminPasscodeHash = strings.TrimSpace(cfg.AdminPasscodeHash)

	if cfg.HTTPAddr == "" {
		return Config{}, fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.SystemColorScheme {
	case "":
		cfg.SystemColorScheme = "light"
	case "light", "dark":
	default:
		return Config{}, fmt.Errorf("SYSTEM_COLOR_SCHEME must be light or dark, got %q", cfg.SystemColorScheme)
	}
	if cfg.APITimeout <= 0 {
		return Config{}, fmt.Errorf("API_TIMEOUT must be positive")
	}
	if cfg.MusicProgressInterval <= 0 {
		return Config{}, fmt.Errorf("MUSIC_PROGRESS_INTERVAL must be positive")
	}
	if cfg.AdminPasscodeHash != "" && cfg.AdminEmail == "" {
		return Config{}, fmt.Errorf("ADMIN_EMAIL is required when ADMIN_PASSCODE_HASH is set")
	}

	return cfg, nil
}

// RemoteEnabled reports whether a backend endpoint is configured.
func (c Config) RemoteEnabled() bool {
	return c.APIBaseURL != ""
}

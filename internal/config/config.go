// Package config loads application settings from environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port string `envconfig:"PORT" default:"3333"`

	// Local store (the device/offline copy).
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// Remote store backend: "firestore", "postgres" or "none".
	RemoteBackend   string `envconfig:"REMOTE_BACKEND" default:"firestore"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	FirebaseKeyFile string `envconfig:"FIREBASE_KEY_FILE" default:"./serviceAccountKey.json"`

	ClerkSecretKey string `envconfig:"CLERK_SECRET_KEY"`

	// bcrypt hash guarding /metrics and the repair endpoints.
	AdminUser         string `envconfig:"ADMIN_USER" default:"admin"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	RateLimitPerSecond float64 `envconfig:"RATE_LIMIT_PER_SECOND" default:"5"`
	RateLimitBurst     int     `envconfig:"RATE_LIMIT_BURST" default:"30"`

	// Nightly data-repair pass over the remote store.
	RepairCron string `envconfig:"REPAIR_CRON" default:"0 3 * * *"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	switch cfg.RemoteBackend {
	case "firestore", "postgres", "none":
	default:
		return nil, fmt.Errorf("invalid REMOTE_BACKEND %q (want firestore, postgres or none)", cfg.RemoteBackend)
	}
	if cfg.RemoteBackend == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("REMOTE_BACKEND=postgres requires DATABASE_URL")
	}

	return &cfg, nil
}

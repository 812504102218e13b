// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"FOLIO_DB_PATH" envDefault:"./data/folio.db"`
	SessionSecret string `env:"FOLIO_SESSION_SECRET,required"`
	ServerHost    string `env:"FOLIO_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"FOLIO_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"FOLIO_ENV" envDefault:"development"`
	LogLevel      string `env:"FOLIO_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"FOLIO_UPLOADS_DIR" envDefault:"./uploads"`

	// ContactWebhookURL receives a POST for every contact form submission.
	// Empty disables notification dispatch; submissions are still persisted.
	ContactWebhookURL string `env:"FOLIO_CONTACT_WEBHOOK_URL"`

	// Seeding configuration
	DoSeed bool `env:"FOLIO_DO_SEED" envDefault:"false"` // Provision the admin credential on startup
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinSessionSecretLength is the minimum required length for the session secret.
// The secret signs session claims; short keys weaken the HMAC.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
// A missing or weak FOLIO_SESSION_SECRET is a startup failure: the whole
// authentication subsystem depends on it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("FOLIO_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("FOLIO_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("FOLIO_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}

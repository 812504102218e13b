// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/foliolabs/folio/internal/auth"
)

// Default admin credentials, overridable at seed time via environment.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
)

// Seed provisions the singleton admin credential if it does not exist yet.
// It never overwrites an existing record: credential mutation after
// provisioning goes exclusively through the change-password and change-email
// flows.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	if _, err := queries.GetCredential(ctx); err == nil {
		slog.Info("admin credential already provisioned, skipping seed")
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("checking admin credential: %w", err)
	}

	email := os.Getenv("FOLIO_ADMIN_EMAIL")
	if email == "" {
		email = DefaultAdminEmail
	}
	password := os.Getenv("FOLIO_ADMIN_PASSWORD")
	if password == "" {
		password = DefaultAdminPassword
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := queries.CreateCredential(ctx, email, passwordHash); err != nil {
		return fmt.Errorf("provisioning admin credential: %w", err)
	}

	slog.Info("provisioned admin credential", "email", email)
	return nil
}

// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Well-known site_config keys.
const (
	ConfigKeyAbout        = "about"         // bio document (JSON)
	ConfigKeyResumePath   = "resume_path"   // uploaded resume file
	ConfigKeyProfileImage = "profile_image" // uploaded profile photo
)

// GetConfig returns a site_config value, or ErrNotFound.
func (q *Queries) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx,
		`SELECT value FROM site_config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting config %q: %w", key, err)
	}
	return value, nil
}

// SetConfig upserts a site_config value.
func (q *Queries) SetConfig(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO site_config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("setting config %q: %w", key, err)
	}
	return nil
}

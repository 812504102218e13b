// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/foliolabs/folio/internal/model"
)

// The admin credential is a singleton: one row under a fixed key. The schema
// does not model a user table on purpose, so the one-admin invariant is
// structural rather than conventional.

// GetCredential returns the singleton admin credential, or ErrNotFound if
// provisioning has not run yet.
func (q *Queries) GetCredential(ctx context.Context) (model.AdminCredential, error) {
	var cred model.AdminCredential
	err := q.db.QueryRowContext(ctx,
		`SELECT email, password_hash, updated_at FROM admin_credentials WHERE key = ?`,
		model.CredentialKey,
	).Scan(&cred.Email, &cred.PasswordHash, &cred.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AdminCredential{}, ErrNotFound
	}
	if err != nil {
		return model.AdminCredential{}, fmt.Errorf("getting admin credential: %w", err)
	}
	return cred, nil
}

// CreateCredential provisions the singleton record. It fails if the record
// already exists; provisioning never overwrites live credentials.
func (q *Queries) CreateCredential(ctx context.Context, email, passwordHash string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO admin_credentials (key, email, password_hash, updated_at) VALUES (?, ?, ?, ?)`,
		model.CredentialKey, email, passwordHash, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("creating admin credential: %w", err)
	}
	return nil
}

// UpdateCredentialEmail replaces the stored email. The write is a single
// UPDATE statement: concurrent mutations are last-writer-wins and can never
// leave the record half-applied.
func (q *Queries) UpdateCredentialEmail(ctx context.Context, email string) (model.AdminCredential, error) {
	return q.updateCredential(ctx,
		`UPDATE admin_credentials SET email = ?, updated_at = ? WHERE key = ?`, email)
}

// UpdateCredentialPassword replaces the stored password hash.
func (q *Queries) UpdateCredentialPassword(ctx context.Context, passwordHash string) (model.AdminCredential, error) {
	return q.updateCredential(ctx,
		`UPDATE admin_credentials SET password_hash = ?, updated_at = ? WHERE key = ?`, passwordHash)
}

func (q *Queries) updateCredential(ctx context.Context, query, value string) (model.AdminCredential, error) {
	res, err := q.db.ExecContext(ctx, query, value, time.Now(), model.CredentialKey)
	if err != nil {
		return model.AdminCredential{}, fmt.Errorf("updating admin credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.AdminCredential{}, fmt.Errorf("updating admin credential: %w", err)
	}
	if n == 0 {
		return model.AdminCredential{}, ErrNotFound
	}
	return q.GetCredential(ctx)
}

// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// In-memory SQLite is per-connection; keep the pool at one.
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetCredential_NotProvisioned(t *testing.T) {
	q := New(setupTestDB(t))
	if _, err := q.GetCredential(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetCredential on empty db: got %v, want ErrNotFound", err)
	}
}

func TestCreateAndGetCredential(t *testing.T) {
	q := New(setupTestDB(t))
	ctx := context.Background()

	if err := q.CreateCredential(ctx, "admin@example.com", "hash-1"); err != nil {
		t.Fatalf("CreateCredential error: %v", err)
	}

	cred, err := q.GetCredential(ctx)
	if err != nil {
		t.Fatalf("GetCredential error: %v", err)
	}
	if cred.Email != "admin@example.com" {
		t.Errorf("Email = %q, want %q", cred.Email, "admin@example.com")
	}
	if cred.PasswordHash != "hash-1" {
		t.Errorf("PasswordHash = %q, want %q", cred.PasswordHash, "hash-1")
	}
	if cred.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestCreateCredential_NeverOverwrites(t *testing.T) {
	q := New(setupTestDB(t))
	ctx := context.Background()

	if err := q.CreateCredential(ctx, "first@example.com", "hash-1"); err != nil {
		t.Fatalf("CreateCredential error: %v", err)
	}
	if err := q.CreateCredential(ctx, "second@example.com", "hash-2"); err == nil {
		t.Fatal("second CreateCredential should fail, the record is a singleton")
	}

	cred, err := q.GetCredential(ctx)
	if err != nil {
		t.Fatalf("GetCredential error: %v", err)
	}
	if cred.Email != "first@example.com" {
		t.Errorf("Email = %q, original record must survive", cred.Email)
	}
}

func TestUpdateCredentialPassword(t *testing.T) {
	q := New(setupTestDB(t))
	ctx := context.Background()

	if err := q.CreateCredential(ctx, "admin@example.com", "hash-1"); err != nil {
		t.Fatalf("CreateCredential error: %v", err)
	}
	before, err := q.GetCredential(ctx)
	if err != nil {
		t.Fatalf("GetCredential error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	cred, err := q.UpdateCredentialPassword(ctx, "hash-2")
	if err != nil {
		t.Fatalf("UpdateCredentialPassword error: %v", err)
	}
	if cred.PasswordHash != "hash-2" {
		t.Errorf("PasswordHash = %q, want %q", cred.PasswordHash, "hash-2")
	}
	if cred.Email != "admin@example.com" {
		t.Errorf("Email = %q, must be unchanged", cred.Email)
	}
	if !cred.UpdatedAt.After(before.UpdatedAt) {
		t.Error("UpdatedAt should advance on password change")
	}
}

func TestUpdateCredentialEmail(t *testing.T) {
	q := New(setupTestDB(t))
	ctx := context.Background()

	if err := q.CreateCredential(ctx, "old@example.com", "hash-1"); err != nil {
		t.Fatalf("CreateCredential error: %v", err)
	}

	cred, err := q.UpdateCredentialEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("UpdateCredentialEmail error: %v", err)
	}
	if cred.Email != "new@example.com" {
		t.Errorf("Email = %q, want %q", cred.Email, "new@example.com")
	}
	if cred.PasswordHash != "hash-1" {
		t.Errorf("PasswordHash = %q, must be unchanged", cred.PasswordHash)
	}
}

func TestUpdateCredential_NotProvisioned(t *testing.T) {
	q := New(setupTestDB(t))
	ctx := context.Background()

	if _, err := q.UpdateCredentialEmail(ctx, "new@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateCredentialEmail: got %v, want ErrNotFound", err)
	}
	if _, err := q.UpdateCredentialPassword(ctx, "hash"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateCredentialPassword: got %v, want ErrNotFound", err)
	}
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed error: %v", err)
	}

	q := New(db)
	cred, err := q.GetCredential(ctx)
	if err != nil {
		t.Fatalf("GetCredential after seed: %v", err)
	}
	if cred.Email != DefaultAdminEmail {
		t.Errorf("Email = %q, want %q", cred.Email, DefaultAdminEmail)
	}
	if cred.PasswordHash == DefaultAdminPassword {
		t.Error("password must be stored as a hash, not plaintext")
	}

	// Seeding again must be a no-op, not an overwrite.
	if _, err := q.UpdateCredentialEmail(ctx, "changed@example.com"); err != nil {
		t.Fatalf("UpdateCredentialEmail error: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("second Seed error: %v", err)
	}
	cred, err = q.GetCredential(ctx)
	if err != nil {
		t.Fatalf("GetCredential error: %v", err)
	}
	if cred.Email != "changed@example.com" {
		t.Errorf("Email = %q, seed must not overwrite live credentials", cred.Email)
	}
}

// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/foliolabs/folio/internal/auth"
	"github.com/foliolabs/folio/internal/middleware"
	"github.com/foliolabs/folio/internal/store"
)

const testSessionSecret = "handler-test-secret-0123456789abcdef"

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testLoginProtection returns a protection instance generous enough that tests
// exercising error shapes never trip the lockout.
func testLoginProtection() *middleware.LoginProtection {
	return middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 100,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
}

func newTestAuthHandler(t *testing.T, db *sql.DB) (*AuthHandler, *auth.Sessions) {
	t.Helper()
	sessions := auth.NewSessions(testSessionSecret)
	return NewAuthHandler(db, sessions, testLoginProtection(), false), sessions
}

// provisionAdmin seeds the singleton credential with the given password.
func provisionAdmin(t *testing.T, db *sql.DB, email, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}
	if err := store.New(db).CreateCredential(context.Background(), email, hash); err != nil {
		t.Fatalf("provisioning test credential: %v", err)
	}
}

// postJSON builds a JSON POST request and a recorder, runs the handler, and
// returns the response.
func postJSON(t *testing.T, h http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encoding request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// decodeBody unmarshals a recorder body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
	return body
}

// sessionCookie extracts the session cookie from a response, or nil.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

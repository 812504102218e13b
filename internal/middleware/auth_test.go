// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foliolabs/folio/internal/auth"
)

const testSecret = "middleware-test-secret-0123456789abcd"

func gatedHandler(t *testing.T, sessions *auth.Sessions) (http.Handler, *bool) {
	t.Helper()
	reached := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if GetClaim(r) == nil {
			t.Error("gated handler ran without a claim in context")
		}
		w.WriteHeader(http.StatusOK)
	})
	return RequireAdmin(sessions, false)(inner), &reached
}

func TestRequireAdmin_NoCookie(t *testing.T) {
	sessions := auth.NewSessions(testSecret)
	gate, reached := gatedHandler(t, sessions)

	req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if *reached {
		t.Error("handler must not run without a session claim")
	}
}

func TestRequireAdmin_InvalidToken(t *testing.T) {
	sessions := auth.NewSessions(testSecret)
	gate, reached := gatedHandler(t, sessions)

	req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if *reached {
		t.Error("handler must not run with an invalid claim")
	}

	// The bad cookie is actively expired on the response.
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("invalid session cookie should be cleared")
	}
}

func TestRequireAdmin_WrongSecret(t *testing.T) {
	sessions := auth.NewSessions(testSecret)
	gate, reached := gatedHandler(t, sessions)

	forged, err := auth.NewSessions("some-other-secret-entirely-0123456").Issue("1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: forged})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if *reached {
		t.Error("handler must not run with a forged claim")
	}
}

func TestRequireAdmin_ValidClaim(t *testing.T) {
	sessions := auth.NewSessions(testSecret)
	gate, reached := gatedHandler(t, sessions)

	token, err := sessions.Issue("1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !*reached {
		t.Error("handler should run for a valid claim")
	}
	// A fresh claim is not reissued.
	if len(rec.Result().Cookies()) != 0 {
		t.Error("fresh claim should not trigger a cookie refresh")
	}
}

func TestRequireAdmin_SilentRefresh(t *testing.T) {
	issuedAt := time.Now().Add(-(auth.UpdateAge + time.Hour))
	issuer := auth.NewSessions(testSecret).WithClock(func() time.Time { return issuedAt })
	token, err := issuer.Issue("1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	sessions := auth.NewSessions(testSecret)
	gate, reached := gatedHandler(t, sessions)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !*reached {
		t.Fatal("handler should run; the presented claim verified")
	}

	// The response carries a reissued cookie with a fresh window.
	var refreshed *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			refreshed = c
		}
	}
	if refreshed == nil {
		t.Fatal("claim past the update window should be silently reissued")
	}
	claim, err := sessions.Verify(refreshed.Value)
	if err != nil {
		t.Fatalf("reissued cookie does not verify: %v", err)
	}
	if !claim.IssuedAt.After(issuedAt) {
		t.Error("reissued claim should carry a fresh IssuedAt")
	}
}

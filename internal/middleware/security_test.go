// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func applyHeaders(cfg SecurityHeadersConfig) http.Header {
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec.Header()
}

func TestSecurityHeaders_Development(t *testing.T) {
	h := applyHeaders(DefaultSecurityHeadersConfig(true))

	if h.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if h.Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Errorf("X-Frame-Options = %q", h.Get("X-Frame-Options"))
	}
	if !strings.Contains(h.Get("Content-Security-Policy"), "default-src 'self'") {
		t.Errorf("CSP = %q", h.Get("Content-Security-Policy"))
	}
	// No HSTS over plain HTTP in development.
	if h.Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must be disabled in development")
	}
}

func TestSecurityHeaders_Production(t *testing.T) {
	h := applyHeaders(DefaultSecurityHeadersConfig(false))

	hsts := h.Get("Strict-Transport-Security")
	if !strings.Contains(hsts, "max-age=31536000") {
		t.Errorf("HSTS = %q", hsts)
	}
}

func TestBuildCSP_StableOrder(t *testing.T) {
	directives := map[string]string{
		"script-src":  "'self'",
		"default-src": "'self'",
		"img-src":     "'self' data:",
	}
	want := "default-src 'self'; img-src 'self' data:; script-src 'self'"
	for i := 0; i < 5; i++ {
		if got := buildCSP(directives); got != want {
			t.Fatalf("buildCSP = %q, want %q", got, want)
		}
	}
}

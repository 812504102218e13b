// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authorization, CSRF,
// security headers and login protection.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/foliolabs/folio/internal/auth"
)

// SessionCookieName carries the signed session claim.
const SessionCookieName = "folio_session"

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyClaim holds the verified *auth.SessionClaim for the request.
const ContextKeyClaim ContextKey = "session_claim"

// RequireAdmin is the authorization gate. It derives the session claim from
// the request cookie, verifies it, and places it explicitly in the request
// context for the handler. Requests without a valid admin claim are denied
// with 401 before any handler side effect runs.
//
// A claim past its refresh window is silently reissued on the response; the
// request itself proceeds with the verified claim.
func RequireAdmin(sessions *auth.Sessions, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			claim, err := sessions.Verify(cookie.Value)
			if err != nil {
				ClearSessionCookie(w, secureCookies)
				unauthorized(w)
				return
			}

			if sessions.NeedsRefresh(claim) {
				if token, err := sessions.Refresh(claim); err == nil {
					SetSessionCookie(w, token, secureCookies)
				}
				// A refresh failure is not a denial; the presented claim
				// already verified.
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaim, claim)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaim retrieves the verified session claim from the request context.
// Returns nil outside the authorization gate.
func GetClaim(r *http.Request) *auth.SessionClaim {
	claim, ok := r.Context().Value(ContextKeyClaim).(*auth.SessionClaim)
	if !ok {
		return nil
	}
	return claim
}

// SetSessionCookie writes the session claim cookie.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session claim cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "Unauthorized",
	})
}

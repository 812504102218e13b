// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP API of the site: public content reads,
// the admin authentication flows, and the gated content mutations.
package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/foliolabs/folio/internal/auth"
	"github.com/foliolabs/folio/internal/middleware"
	"github.com/foliolabs/folio/internal/store"
)

// msgInvalidCredentials is the single outcome for every login failure: wrong
// email, wrong password, or no provisioned record. Response shape must not
// reveal which.
const msgInvalidCredentials = "Invalid email or password"

// adminSubject identifies the single admin principal in session claims.
const adminSubject = "1"

// AuthHandler handles login, logout and the credential mutation flows.
type AuthHandler struct {
	queries         *store.Queries
	sessions        *auth.Sessions
	loginProtection *middleware.LoginProtection
	secureCookies   bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sessions *auth.Sessions, lp *middleware.LoginProtection, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		sessions:        sessions,
		loginProtection: lp,
		secureCookies:   secureCookies,
	}
}

// dummyHash is verified against when no credential record matches, so the
// work-factor cost is paid on every login attempt and response timing does
// not reveal whether the email was known.
var (
	dummyHash     string
	dummyHashOnce sync.Once
)

func getDummyHash() string {
	dummyHashOnce.Do(func() {
		h, err := auth.HashPassword("folio-dummy-comparison-target")
		if err != nil {
			slog.Error("generating dummy hash", "error", err)
			return
		}
		dummyHash = h
	})
	return dummyHash
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "Please enter both email and password")
		return
	}

	if locked, _ := h.loginProtection.IsAccountLocked(req.Email); locked {
		slog.Warn("login attempt on locked account", "remote_addr", r.RemoteAddr)
		writeJSONError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
		return
	}

	cred, err := h.queries.GetCredential(r.Context())
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Pay the hash cost anyway; an unprovisioned system must answer like
		// one rejecting a wrong password.
		auth.VerifyPassword(req.Password, getDummyHash())
		slog.Warn("login attempt before admin provisioning")
		h.recordFailure(w, req.Email)
		return
	case err != nil:
		logAndInternalError(w, "loading admin credential", "error", err)
		return
	}

	if cred.Email != req.Email {
		auth.VerifyPassword(req.Password, getDummyHash())
		slog.Debug("login attempt with unknown email")
		h.recordFailure(w, req.Email)
		return
	}

	if !auth.VerifyPassword(req.Password, cred.PasswordHash) {
		slog.Debug("login attempt with invalid password")
		h.recordFailure(w, req.Email)
		return
	}

	h.loginProtection.RecordSuccessfulLogin(req.Email)

	// Rotate digests hashed under outdated parameters.
	if auth.NeedsRehash(cred.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if _, err := h.queries.UpdateCredentialPassword(r.Context(), newHash); err != nil {
				slog.Error("re-hashing password", "error", err)
			} else {
				slog.Info("password re-hashed with updated parameters")
			}
		}
	}

	token, err := h.sessions.Issue(adminSubject, cred.Email)
	if err != nil {
		logAndInternalError(w, "issuing session claim", "error", err)
		return
	}
	middleware.SetSessionCookie(w, token, h.secureCookies)

	slog.Info("admin logged in")
	writeJSONSuccess(w, map[string]any{
		"user": map[string]any{
			"id":    adminSubject,
			"email": cred.Email,
			"name":  "Admin",
			"role":  auth.RoleAdmin,
		},
	})
}

// recordFailure tracks the failed attempt and answers with the generic
// invalid-credentials error.
func (h *AuthHandler) recordFailure(w http.ResponseWriter, email string) {
	if locked, _ := h.loginProtection.RecordFailedAttempt(email); locked {
		writeJSONError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
		return
	}
	writeJSONError(w, http.StatusUnauthorized, msgInvalidCredentials)
}

// Logout handles POST /api/auth/logout. Sign-out is purely client-side state:
// the cookie is cleared, the claim rides out its expiry unused.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, h.secureCookies)
	slog.Info("admin logged out")
	writeJSONSuccess(w, map[string]any{"message": "Logged out"})
}

// Session handles GET /api/auth/session (gated). It reports the verified
// claim so the admin UI can show who is signed in.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claim := middleware.GetClaim(r)
	if claim == nil {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSONSuccess(w, map[string]any{
		"user": map[string]any{
			"id":    claim.Subject,
			"email": claim.Email,
			"role":  claim.Role,
		},
		"expires": claim.ExpiresAt,
	})
}

// ChangePassword handles POST /api/auth/change-password (gated).
// Two proofs of identity: the session claim got the caller here, and the
// current password is re-verified before anything is written.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeJSONError(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}

	if _, ok := h.verifyCurrentPassword(w, r, req.CurrentPassword); !ok {
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logAndInternalError(w, "hashing new password", "error", err)
		return
	}
	if _, err := h.queries.UpdateCredentialPassword(r.Context(), newHash); err != nil {
		logAndInternalError(w, "updating password hash", "error", err)
		return
	}

	// Outstanding session claims stay valid until natural expiry.
	slog.Info("admin password changed")
	writeJSONSuccess(w, map[string]any{"message": "Password updated successfully"})
}

// ChangeEmail handles POST /api/auth/change-email (gated).
func (h *AuthHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewEmail        string `json:"newEmail"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewEmail == "" {
		writeJSONError(w, http.StatusBadRequest, "Current password and new email are required")
		return
	}

	if _, ok := h.verifyCurrentPassword(w, r, req.CurrentPassword); !ok {
		return
	}

	if _, err := h.queries.UpdateCredentialEmail(r.Context(), req.NewEmail); err != nil {
		logAndInternalError(w, "updating email", "error", err)
		return
	}

	slog.Info("admin email changed")
	writeJSONSuccess(w, map[string]any{"message": "Email updated successfully"})
}

// verifyCurrentPassword loads the credential record and re-verifies the
// caller's current password. On any failure it writes the response and
// returns ok=false; the stored record is untouched.
func (h *AuthHandler) verifyCurrentPassword(w http.ResponseWriter, r *http.Request, currentPassword string) (email string, ok bool) {
	cred, err := h.queries.GetCredential(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		// Reaching a gated route without a provisioned record is an
		// operational problem, not user error.
		slog.Error("credential mutation with no provisioned admin record")
		writeJSONError(w, http.StatusInternalServerError, "Admin account not configured")
		return "", false
	}
	if err != nil {
		logAndInternalError(w, "loading admin credential", "error", err)
		return "", false
	}

	if !auth.VerifyPassword(currentPassword, cred.PasswordHash) {
		writeJSONError(w, http.StatusBadRequest, "Current password is incorrect")
		return "", false
	}
	return cred.Email, true
}

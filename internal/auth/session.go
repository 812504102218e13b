// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session policy values. A claim lives at most MaxAge past its last issuance;
// a claim presented more than UpdateAge after issuance is transparently
// reissued with a fresh window.
const (
	MaxAge    = 30 * 24 * time.Hour
	UpdateAge = 24 * time.Hour
)

// RoleAdmin is the only role a session claim can carry. Anything else denies.
const RoleAdmin = "admin"

// ErrInvalidClaim covers every verification failure: bad signature, expired,
// malformed, wrong role. Callers get no finer-grained cause.
var ErrInvalidClaim = errors.New("invalid session claim")

// SessionClaim is the verified identity assertion carried by the client.
// It is minted on login, passed explicitly to gated handlers, and never
// persisted server-side.
type SessionClaim struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// sessionClaims is the wire form of a SessionClaim.
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies signed session claims (HS256).
type Sessions struct {
	secret []byte
	now    func() time.Time
}

// NewSessions creates a session issuer/verifier signing with the given secret.
func NewSessions(secret string) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock overrides the time source. Tests use this to walk claims through
// their refresh and expiry windows.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

// Issue mints a signed claim for the admin principal, valid for MaxAge.
func (s *Sessions) Issue(subject, email string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Email: email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "folio",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(MaxAge)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session claim: %w", err)
	}
	return token, nil
}

// Verify checks signature, expiry and role. Every failure collapses to
// ErrInvalidClaim.
//
// Claims issued before a password change stay valid until natural expiry;
// there is no server-side revocation list. Documented current behavior of
// the single-admin model, not an oversight.
func (s *Sessions) Verify(tokenStr string) (*SessionClaim, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidClaim
	}

	if claims.Role != RoleAdmin {
		return nil, ErrInvalidClaim
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidClaim
	}

	return &SessionClaim{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// NeedsRefresh reports whether the claim is past UpdateAge since issuance and
// should be silently reissued.
func (s *Sessions) NeedsRefresh(claim *SessionClaim) bool {
	return s.now().Sub(claim.IssuedAt) > UpdateAge
}

// Refresh reissues a verified claim with a fresh validity window.
func (s *Sessions) Refresh(claim *SessionClaim) (string, error) {
	return s.Issue(claim.Subject, claim.Email)
}

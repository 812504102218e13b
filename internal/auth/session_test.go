// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify(t *testing.T) {
	sessions := NewSessions(testSecret)

	token, err := sessions.Issue("1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claim, err := sessions.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claim.Subject != "1" {
		t.Errorf("Subject = %q, want %q", claim.Subject, "1")
	}
	if claim.Email != "admin@example.com" {
		t.Errorf("Email = %q, want %q", claim.Email, "admin@example.com")
	}
	if claim.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", claim.Role, RoleAdmin)
	}
	wantExpiry := claim.IssuedAt.Add(MaxAge)
	if !claim.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", claim.ExpiresAt, wantExpiry)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewSessions(testSecret).Issue("1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := NewSessions("a-completely-different-signing-secret!!")
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidClaim) {
		t.Fatalf("Verify with wrong secret: got %v, want ErrInvalidClaim", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	sessions := NewSessions(testSecret)
	token, err := sessions.Issue("1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	// Swap the payload for one from a token signed with another secret.
	forged, err := NewSessions("attacker-controlled-secret-value-here").Issue("1", "evil@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	if _, err := sessions.Verify(tampered); !errors.Is(err, ErrInvalidClaim) {
		t.Fatalf("Verify of tampered token: got %v, want ErrInvalidClaim", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	sessions := NewSessions(testSecret)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := sessions.Verify(tok); !errors.Is(err, ErrInvalidClaim) {
			t.Errorf("Verify(%q): got %v, want ErrInvalidClaim", tok, err)
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(testSecret).WithClock(fixedClock(start))

	token, err := sessions.Issue("1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Just inside the window still verifies.
	sessions.WithClock(fixedClock(start.Add(MaxAge - time.Minute)))
	if _, err := sessions.Verify(token); err != nil {
		t.Fatalf("Verify just before expiry: %v", err)
	}

	// Past the window denies.
	sessions.WithClock(fixedClock(start.Add(MaxAge + time.Minute)))
	if _, err := sessions.Verify(token); !errors.Is(err, ErrInvalidClaim) {
		t.Fatalf("Verify after expiry: got %v, want ErrInvalidClaim", err)
	}
}

func TestNeedsRefresh(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(testSecret).WithClock(fixedClock(start))

	token, err := sessions.Issue("1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	claim, err := sessions.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	if sessions.NeedsRefresh(claim) {
		t.Error("fresh claim should not need refresh")
	}

	sessions.WithClock(fixedClock(start.Add(UpdateAge - time.Minute)))
	if sessions.NeedsRefresh(claim) {
		t.Error("claim inside the update window should not need refresh")
	}

	sessions.WithClock(fixedClock(start.Add(UpdateAge + time.Minute)))
	if !sessions.NeedsRefresh(claim) {
		t.Error("claim past the update window should need refresh")
	}
}

func TestRefresh_ExtendsExpiry(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(testSecret).WithClock(fixedClock(start))

	token, err := sessions.Issue("1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	claim, err := sessions.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	later := start.Add(2 * UpdateAge)
	sessions.WithClock(fixedClock(later))

	reissued, err := sessions.Refresh(claim)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	fresh, err := sessions.Verify(reissued)
	if err != nil {
		t.Fatalf("Verify of refreshed token: %v", err)
	}

	if !fresh.ExpiresAt.After(claim.ExpiresAt) {
		t.Errorf("refreshed ExpiresAt %v not after original %v", fresh.ExpiresAt, claim.ExpiresAt)
	}
	if fresh.Subject != claim.Subject || fresh.Email != claim.Email {
		t.Error("refresh must preserve claim identity")
	}
}

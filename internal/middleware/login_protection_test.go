// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	}
}

func TestAccountLockout(t *testing.T) {
	lp := NewLoginProtection(testConfig())
	email := "admin@example.com"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("account should start unlocked")
	}

	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Fatal("first failure should not lock")
	}
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Fatal("second failure should not lock")
	}
	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("third failure should lock the account")
	}
	if duration != time.Minute {
		t.Errorf("first lockout = %v, want the base duration", duration)
	}

	if locked, remaining := lp.IsAccountLocked(email); !locked || remaining <= 0 {
		t.Error("account should report locked with time remaining")
	}
}

func TestLockoutDoubles(t *testing.T) {
	lp := NewLoginProtection(testConfig())
	email := "admin@example.com"

	fail := func() (bool, time.Duration) {
		var locked bool
		var d time.Duration
		for i := 0; i < 3; i++ {
			locked, d = lp.RecordFailedAttempt(email)
		}
		return locked, d
	}

	if _, d := fail(); d != time.Minute {
		t.Errorf("first lockout = %v, want 1m", d)
	}
	if _, d := fail(); d != 2*time.Minute {
		t.Errorf("second lockout = %v, want 2m", d)
	}
	if _, d := fail(); d != 4*time.Minute {
		t.Errorf("third lockout = %v, want 4m", d)
	}
}

func TestSuccessClearsFailures(t *testing.T) {
	lp := NewLoginProtection(testConfig())
	email := "admin@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	// The counter starts over; two more failures stay short of the limit.
	lp.RecordFailedAttempt(email)
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Error("success should have reset the failure count")
	}
}

func TestAllowIP_RateLimits(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       0.001, // effectively once per test run
		IPBurst:           2,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	if !lp.AllowIP("10.0.0.1:51000") {
		t.Fatal("first request should pass")
	}
	if !lp.AllowIP("10.0.0.1:51001") {
		t.Fatal("second request should pass within burst")
	}
	if lp.AllowIP("10.0.0.1:51002") {
		t.Error("third request should exceed the burst")
	}

	// Other IPs have their own budget.
	if !lp.AllowIP("10.0.0.2:51000") {
		t.Error("a different IP should not share the limiter")
	}
}

func TestLimitLogin(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       0.001,
		IPBurst:           1,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	handler := LimitLogin(lp, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:51000"

	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", rec.Code)
	}
}

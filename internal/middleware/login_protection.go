// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginProtection provides combined per-IP rate limiting and account lockout
// tracking for the login route.
type LoginProtection struct {
	mu         sync.Mutex
	ipLimiters map[string]*ipLimiter
	attempts   map[string]*loginAttempt

	ipRate            rate.Limit
	ipBurst           int
	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginAttempt tracks failed login attempts for an account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int // doubles the lockout with each repeat
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	IPRateLimit       float64       // requests per second per IP
	IPBurst           int           // burst size for the IP limiter
	MaxFailedAttempts int           // lock the account after this many failures
	LockoutDuration   time.Duration // base lockout, doubles with each lockout
	AttemptWindow     time.Duration // window for counting failed attempts
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5, // 1 request per 2 seconds
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = 0.5
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = 5
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}

	return &LoginProtection{
		ipLimiters:        make(map[string]*ipLimiter),
		attempts:          make(map[string]*loginAttempt),
		ipRate:            rate.Limit(cfg.IPRateLimit),
		ipBurst:           cfg.IPBurst,
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}
}

// AllowIP reports whether the client IP may attempt a login right now.
func (lp *LoginProtection) AllowIP(remoteAddr string) bool {
	ip := clientIP(remoteAddr)

	lp.mu.Lock()
	defer lp.mu.Unlock()

	l, ok := lp.ipLimiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(lp.ipRate, lp.ipBurst)}
		lp.ipLimiters[ip] = l
	}
	l.lastSeen = time.Now()

	// Opportunistic cleanup of idle limiters.
	if len(lp.ipLimiters) > 1000 {
		cutoff := time.Now().Add(-time.Hour)
		for k, v := range lp.ipLimiters {
			if v.lastSeen.Before(cutoff) {
				delete(lp.ipLimiters, k)
			}
		}
	}

	return l.limiter.Allow()
}

// IsAccountLocked reports whether the account is locked out, and for how much
// longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	a, ok := lp.attempts[email]
	if !ok {
		return false, 0
	}
	if remaining := time.Until(a.lockedUntil); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt records a failure and returns whether the account is now
// locked and for how long. Failures are recorded for unknown accounts too, so
// enumeration attempts hit the same lockout.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := time.Now()
	a, ok := lp.attempts[email]
	if !ok || now.Sub(a.firstFailed) > lp.attemptWindow {
		fresh := &loginAttempt{firstFailed: now}
		if ok {
			fresh.lockouts = a.lockouts
		}
		a = fresh
		lp.attempts[email] = a
	}

	a.count++
	if a.count >= lp.maxFailedAttempts {
		a.lockouts++
		duration := lp.lockoutDuration * time.Duration(1<<(a.lockouts-1))
		a.lockedUntil = now.Add(duration)
		a.count = 0
		a.firstFailed = now
		return true, duration
	}
	return false, 0
}

// RecordSuccessfulLogin clears the failure state for the account.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	delete(lp.attempts, email)
}

// clientIP strips the port from a RemoteAddr value.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

// LimitLogin wraps the login handler with the per-IP rate limit.
func LimitLogin(lp *LoginProtection, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !lp.AllowIP(r.RemoteAddr) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

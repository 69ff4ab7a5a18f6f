// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client IP. Stale per-IP
// limiters are evicted after an hour of inactivity so the map does not
// grow without bound under address churn.
type LoginLimiter struct {
	limiters  map[string]*loginLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
	closeOnce sync.Once
}

type loginLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter allows attempts login attempts per window for each IP,
// with a burst of the same size.
func NewLoginLimiter(attempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		limiters:  make(map[string]*loginLimiterEntry),
		rate:      rate.Every(window / time.Duration(attempts)),
		burst:     attempts,
		stopClean: make(chan struct{}),
	}
}

// Allow reports whether a login attempt from the given IP may proceed.
func (ll *LoginLimiter) Allow(ip string) bool {
	ll.mu.Lock()
	entry, exists := ll.limiters[ip]
	if !exists {
		entry = &loginLimiterEntry{
			limiter:    rate.NewLimiter(ll.rate, ll.burst),
			lastAccess: time.Now(),
		}
		ll.limiters[ip] = entry
	} else {
		entry.lastAccess = time.Now()
	}
	limiter := entry.limiter
	ll.mu.Unlock()

	return limiter.Allow()
}

// StartCleanup spawns a goroutine that periodically evicts limiters idle
// for over an hour. Returns immediately; the goroutine runs until Stop is
// called.
func (ll *LoginLimiter) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ll.cleanup()
			case <-ll.stopClean:
				return
			}
		}
	}()
}

func (ll *LoginLimiter) cleanup() {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for ip, entry := range ll.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(ll.limiters, ip)
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (ll *LoginLimiter) Stop() {
	ll.closeOnce.Do(func() {
		close(ll.stopClean)
	})
}

package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter keyed by client (usually the IP)
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimiter allows limit requests per window for every key
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		window:   window,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records a request for key. When the key is over its limit the
// request is not recorded and the time until the oldest request leaves the
// window is returned.
func (r *RateLimiter) Allow(key string) (bool, time.Duration) {
	if r.limit <= 0 {
		return true, 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	recent := r.prune(key, now)

	if len(recent) >= r.limit {
		return false, recent[0].Add(r.window).Sub(now)
	}

	r.requests[key] = append(recent, now)
	return true, 0
}

// Remaining returns how many requests key may still make in the current window
func (r *RateLimiter) Remaining(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	left := r.limit - len(r.prune(key, r.now()))
	if left < 0 {
		return 0
	}
	return left
}

// Limit returns the configured number of requests per window
func (r *RateLimiter) Limit() int {
	return r.limit
}

// Len returns the number of keys currently tracked
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// Cleanup forgets every key with no request inside the window and returns how
// many were removed
func (r *RateLimiter) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for key := range r.requests {
		if r.prune(key, now) == nil {
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done
func (r *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := r.Cleanup(); removed > 0 {
					slog.Debug("Rate limiter keys expired", "removed", removed, "remaining", r.Len())
				}
			}
		}
	}()
}

// prune drops timestamps outside the window; r.mu must be held
func (r *RateLimiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-r.window)
	kept := r.requests[key][:0]
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(r.requests, key)
		return nil
	}
	r.requests[key] = kept
	return kept
}

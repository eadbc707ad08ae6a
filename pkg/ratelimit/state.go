// Package ratelimit honors upstream Retry-After signals. Once the feed
// server answers 429 or 503 with Retry-After, every request through the
// same Tracker waits until that moment has passed.
package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RedisKeyBlockedUntil holds the shared block deadline as unix nanoseconds.
const RedisKeyBlockedUntil = "feed:rate_limit:blocked_until"

// MaxRetryAfter caps how long a single Retry-After value can block requests.
const MaxRetryAfter = 5 * time.Minute

// RateLimitState is the current block state.
type RateLimitState struct {
	// BlockedUntil is the earliest time the next request may be sent.
	// Zero means not blocked.
	BlockedUntil time.Time

	// LastUpdate is when a Retry-After signal was last recorded.
	LastUpdate time.Time
}

// IsBlocked reports whether requests must wait at now.
func (s RateLimitState) IsBlocked(now time.Time) bool {
	return now.Before(s.BlockedUntil)
}

// TimeUntilUnblocked returns the remaining wait at now, or 0.
func (s RateLimitState) TimeUntilUnblocked(now time.Time) time.Duration {
	d := s.BlockedUntil.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// ParseRetryAfter reads a Retry-After value, either delay-seconds or an
// HTTP-date. The result is capped at MaxRetryAfter; ok is false when the
// value is missing, malformed, or already in the past.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		if secs > int(MaxRetryAfter/time.Second) {
			secs = int(MaxRetryAfter / time.Second)
		}
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	} else {
		return 0, false
	}

	if d <= 0 {
		return 0, false
	}
	if d > MaxRetryAfter {
		d = MaxRetryAfter
	}
	return d, true
}

// signalsBackoff reports whether status carries a meaningful Retry-After.
func signalsBackoff(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

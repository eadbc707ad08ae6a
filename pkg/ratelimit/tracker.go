package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitSignalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_rate_limit_signals_total",
		Help: "Total number of Retry-After signals recorded",
	})

	rateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_rate_limit_waits_total",
		Help: "Total number of requests delayed by an active Retry-After",
	})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_rate_limit_wait_seconds",
		Help:    "Time requests spent waiting for Retry-After to pass",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
	})
)

// Tracker records Retry-After deadlines and gates requests on them.
// With a Redis client the deadline is shared by every Tracker on that
// Redis; without one it is process-local.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
	now    func() time.Time

	mu    sync.Mutex
	local RateLimitState
}

// NewTracker creates a new rate limit tracker. redisClient may be nil.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
		now:    time.Now,
	}
}

// GetState returns the current block state. A Redis deadline later than
// the local one wins.
func (t *Tracker) GetState(ctx context.Context) (RateLimitState, error) {
	t.mu.Lock()
	state := t.local
	t.mu.Unlock()

	if t.redis == nil {
		return state, nil
	}

	nanos, err := t.redis.Get(ctx, RedisKeyBlockedUntil).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return state, nil
		}
		return state, fmt.Errorf("get blocked until: %w", err)
	}

	if shared := time.Unix(0, nanos); shared.After(state.BlockedUntil) {
		state.BlockedUntil = shared
	}
	return state, nil
}

// UpdateFromResponse records the Retry-After of a 429 or 503 response.
// Other statuses and responses without a usable header are ignored.
func (t *Tracker) UpdateFromResponse(ctx context.Context, status int, headers http.Header) error {
	if !signalsBackoff(status) {
		return nil
	}

	now := t.now()
	wait, ok := ParseRetryAfter(headers.Get("Retry-After"), now)
	if !ok {
		return nil
	}
	until := now.Add(wait)

	t.mu.Lock()
	if until.After(t.local.BlockedUntil) {
		t.local.BlockedUntil = until
	}
	t.local.LastUpdate = now
	t.mu.Unlock()

	rateLimitSignalsTotal.Inc()
	t.logger.Warn().
		Int("status_code", status).
		Dur("retry_after", wait).
		Time("blocked_until", until).
		Msg("Feed server requested backoff")

	if t.redis == nil {
		return nil
	}
	// The key expires with the deadline, so no cleanup is needed
	if err := t.redis.Set(ctx, RedisKeyBlockedUntil, strconv.FormatInt(until.UnixNano(), 10), wait).Err(); err != nil {
		return fmt.Errorf("store blocked until in redis: %w", err)
	}
	return nil
}

// Wait blocks until no Retry-After deadline is active or ctx is done.
// A failing Redis read is logged and the local state is used.
func (t *Tracker) Wait(ctx context.Context) error {
	state, err := t.GetState(ctx)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Failed to read shared rate limit state")
	}

	now := t.now()
	if !state.IsBlocked(now) {
		return nil
	}
	wait := state.TimeUntilUnblocked(now)

	rateLimitWaitsTotal.Inc()
	t.logger.Debug().Dur("wait", wait).Msg("Waiting for Retry-After to pass")

	start := time.Now()
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		rateLimitWaitSeconds.Observe(time.Since(start).Seconds())
		return nil
	}
}

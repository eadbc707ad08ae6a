package main

import (
	"context"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/feed"
	"github.com/Sternrassler/essential-feed/pkg/logging"
	"github.com/rs/zerolog"
)

// refresher periodically loads the remote feed so the cache stays warm.
type refresher struct {
	loader   feed.Loader
	interval time.Duration
	logger   zerolog.Logger
}

func newRefresher(loader feed.Loader, interval time.Duration) *refresher {
	return &refresher{
		loader:   loader,
		interval: interval,
		logger:   logging.NewLogger(logging.ComponentRefresher),
	}
}

// Run refreshes once immediately and then every interval until ctx is done.
// Load failures are logged and never stop the loop.
func (r *refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.refresh(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *refresher) refresh(ctx context.Context) {
	result := <-feed.LoadAsync(ctx, r.loader)
	if result.Err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn().Err(result.Err).Msg("Feed refresh failed")
		return
	}
	r.logger.Info().Int("items", len(result.Value)).Msg("Feed refreshed")
}

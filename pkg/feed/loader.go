package feed

import (
	"context"

	"github.com/rs/zerolog"
)

// Loader loads the current list of feed items.
type Loader interface {
	Load(ctx context.Context) ([]FeedItem, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context) ([]FeedItem, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) ([]FeedItem, error) {
	return f(ctx)
}

// Cache persists a full replacement of the feed.
type Cache interface {
	Save(ctx context.Context, items []FeedItem) error
}

// FallbackLoader serves from Primary and falls back to Fallback when
// Primary fails. The Primary error is dropped once Fallback succeeds.
type FallbackLoader struct {
	Primary  Loader
	Fallback Loader
	Logger   zerolog.Logger
}

// Load implements Loader.
func (l *FallbackLoader) Load(ctx context.Context) ([]FeedItem, error) {
	items, err := l.Primary.Load(ctx)
	if err == nil {
		return items, nil
	}

	l.Logger.Warn().Err(err).Msg("Primary feed load failed, using fallback")
	return l.Fallback.Load(ctx)
}

// CachingLoader hands every successful load of its decoratee to a Cache.
// A failed save is logged and does not fail the load.
type CachingLoader struct {
	Decoratee Loader
	Cache     Cache
	Logger    zerolog.Logger
}

// Load implements Loader.
func (l *CachingLoader) Load(ctx context.Context) ([]FeedItem, error) {
	items, err := l.Decoratee.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := l.Cache.Save(ctx, items); err != nil {
		l.Logger.Warn().Err(err).Int("items", len(items)).Msg("Failed to cache feed")
	} else {
		l.Logger.Debug().Int("items", len(items)).Msg("Cached feed")
	}

	return items, nil
}

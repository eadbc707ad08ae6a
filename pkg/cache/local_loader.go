package cache

import (
	"context"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/feed"
)

// LocalLoader saves, loads, and invalidates the cached feed. Store errors
// are returned unchanged.
type LocalLoader struct {
	store       FeedStore
	currentDate func() time.Time
}

// NewLocalLoader creates a loader over store. currentDate supplies "now"
// for timestamps and freshness checks.
func NewLocalLoader(store FeedStore, currentDate func() time.Time) *LocalLoader {
	if store == nil {
		panic("feed store cannot be nil")
	}
	if currentDate == nil {
		panic("current date cannot be nil")
	}
	return &LocalLoader{
		store:       store,
		currentDate: currentDate,
	}
}

// Save replaces the cached feed. The insert is only attempted after a
// successful delete and is stamped with the time the delete completed.
func (l *LocalLoader) Save(ctx context.Context, items []feed.FeedItem) error {
	err := l.store.DeleteCachedFeed(ctx)
	observe("delete", err)
	if err != nil {
		return err
	}

	timestamp := l.currentDate()
	err = l.store.Insert(ctx, ToLocal(items), timestamp)
	observe("insert", err)
	return err
}

// Load returns the cached items while they are valid. An empty or expired
// cache yields an empty result, not an error.
func (l *LocalLoader) Load(ctx context.Context) ([]feed.FeedItem, error) {
	cached, found, err := l.store.Retrieve(ctx)
	observe("retrieve", err)
	switch {
	case err != nil:
		CacheLoads.WithLabelValues("error").Inc()
		return nil, err
	case !found:
		CacheLoads.WithLabelValues("empty").Inc()
		return []feed.FeedItem{}, nil
	case !ValidateTimestamp(cached.Timestamp, l.currentDate()):
		CacheLoads.WithLabelValues("expired").Inc()
		return []feed.FeedItem{}, nil
	}

	CacheLoads.WithLabelValues("hit").Inc()
	return ToModels(cached.Feed), nil
}

// Invalidate clears the cache.
func (l *LocalLoader) Invalidate(ctx context.Context) error {
	err := l.store.DeleteCachedFeed(ctx)
	observe("delete", err)
	return err
}

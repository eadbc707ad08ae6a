package testutil

import (
	"context"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/cache"
	"github.com/google/uuid"
)

// UniqueLocalFeed returns two distinct items, one with optional fields set.
func UniqueLocalFeed(t *testing.T) []cache.LocalFeedItem {
	t.Helper()

	first, err := url.Parse("https://any-url.com/1.png")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	second, err := url.Parse("https://another-url.com/images/2.png?size=large")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	description := "a description"
	location := "a location"
	return []cache.LocalFeedItem{
		{ID: uuid.New(), ImageURL: *first},
		{ID: uuid.New(), Description: &description, Location: &location, ImageURL: *second},
	}
}

// RunFeedStoreContract checks the behavior every cache.FeedStore must have.
// makeSUT returns an empty store; it is called once per sub-test.
func RunFeedStoreContract(t *testing.T, makeSUT func(t *testing.T) cache.FeedStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("retrieve delivers empty on empty cache", func(t *testing.T) {
		sut := makeSUT(t)
		expectEmpty(t, ctx, sut)
	})

	t.Run("retrieve has no side effects on empty cache", func(t *testing.T) {
		sut := makeSUT(t)
		expectEmpty(t, ctx, sut)
		expectEmpty(t, ctx, sut)
	})

	t.Run("retrieve delivers found values on non-empty cache", func(t *testing.T) {
		sut := makeSUT(t)
		items := UniqueLocalFeed(t)
		timestamp := time.Now()

		insert(t, ctx, sut, items, timestamp)
		expectFound(t, ctx, sut, items, timestamp)
	})

	t.Run("retrieve has no side effects on non-empty cache", func(t *testing.T) {
		sut := makeSUT(t)
		items := UniqueLocalFeed(t)
		timestamp := time.Now()

		insert(t, ctx, sut, items, timestamp)
		expectFound(t, ctx, sut, items, timestamp)
		expectFound(t, ctx, sut, items, timestamp)
	})

	t.Run("insert of an empty feed is found", func(t *testing.T) {
		sut := makeSUT(t)
		timestamp := time.Now()

		insert(t, ctx, sut, []cache.LocalFeedItem{}, timestamp)
		expectFound(t, ctx, sut, []cache.LocalFeedItem{}, timestamp)
	})

	t.Run("delete succeeds on empty cache", func(t *testing.T) {
		sut := makeSUT(t)

		if err := sut.DeleteCachedFeed(ctx); err != nil {
			t.Fatalf("DeleteCachedFeed() error = %v", err)
		}
		expectEmpty(t, ctx, sut)
	})

	t.Run("delete empties previously inserted cache", func(t *testing.T) {
		sut := makeSUT(t)
		insert(t, ctx, sut, UniqueLocalFeed(t), time.Now())

		if err := sut.DeleteCachedFeed(ctx); err != nil {
			t.Fatalf("DeleteCachedFeed() error = %v", err)
		}
		expectEmpty(t, ctx, sut)
	})

	t.Run("delete then insert replaces the snapshot", func(t *testing.T) {
		sut := makeSUT(t)
		insert(t, ctx, sut, UniqueLocalFeed(t), time.Now().Add(-time.Hour))

		if err := sut.DeleteCachedFeed(ctx); err != nil {
			t.Fatalf("DeleteCachedFeed() error = %v", err)
		}
		latest := UniqueLocalFeed(t)
		latestTimestamp := time.Now()
		insert(t, ctx, sut, latest, latestTimestamp)

		expectFound(t, ctx, sut, latest, latestTimestamp)
	})

	t.Run("retrieve never sees a partially replaced snapshot", func(t *testing.T) {
		sut := makeSUT(t)

		// Each snapshot is stamped with its own length so a mix of two
		// snapshots shows up as a mismatch.
		short := UniqueLocalFeed(t)[:1]
		long := append(UniqueLocalFeed(t), UniqueLocalFeed(t)[0])
		stamp := func(items []cache.LocalFeedItem) time.Time {
			return time.Unix(int64(len(items)), 0)
		}
		insert(t, ctx, sut, short, stamp(short))

		done := make(chan struct{})
		writerErr := make(chan error, 1)
		go func() {
			defer close(writerErr)
			for i := 0; ; i++ {
				select {
				case <-done:
					return
				default:
				}
				items := short
				if i%2 == 0 {
					items = long
				}
				if err := sut.DeleteCachedFeed(ctx); err != nil {
					writerErr <- err
					return
				}
				if err := sut.Insert(ctx, items, stamp(items)); err != nil {
					writerErr <- err
					return
				}
			}
		}()

		for i := 0; i < 500; i++ {
			cached, found, err := sut.Retrieve(ctx)
			if err != nil {
				t.Errorf("Retrieve() error = %v", err)
				break
			}
			if found && cached.Timestamp.Unix() != int64(len(cached.Feed)) {
				t.Errorf("Retrieve() = timestamp %d with %d items, want matching snapshot",
					cached.Timestamp.Unix(), len(cached.Feed))
				break
			}
		}
		close(done)

		if err := <-writerErr; err != nil {
			t.Fatalf("writer error = %v", err)
		}
	})
}

func insert(t *testing.T, ctx context.Context, sut cache.FeedStore, items []cache.LocalFeedItem, timestamp time.Time) {
	t.Helper()
	if err := sut.Insert(ctx, items, timestamp); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
}

func expectEmpty(t *testing.T, ctx context.Context, sut cache.FeedStore) {
	t.Helper()
	cached, found, err := sut.Retrieve(ctx)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if found {
		t.Errorf("Retrieve() = %+v, want empty", cached)
	}
}

func expectFound(t *testing.T, ctx context.Context, sut cache.FeedStore, items []cache.LocalFeedItem, timestamp time.Time) {
	t.Helper()
	cached, found, err := sut.Retrieve(ctx)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !found {
		t.Fatal("Retrieve() found = false, want true")
	}

	if len(cached.Feed) != len(items) || (len(items) > 0 && !reflect.DeepEqual(cached.Feed, items)) {
		t.Errorf("Retrieve() feed = %+v, want %+v", cached.Feed, items)
	}
	// Stores may drop monotonic readings and sub-microsecond precision
	if diff := cached.Timestamp.Sub(timestamp); diff < -time.Microsecond || diff > time.Microsecond {
		t.Errorf("Retrieve() timestamp = %v, want %v", cached.Timestamp, timestamp)
	}
}

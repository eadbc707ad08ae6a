package cache

import (
	"context"
	"net/url"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/feed"
	"github.com/google/uuid"
)

// LocalFeedItem is the persisted form of a feed item. It mirrors
// feed.FeedItem so stores never depend on wire or domain types.
type LocalFeedItem struct {
	ID          uuid.UUID
	Description *string
	Location    *string
	ImageURL    url.URL
}

// CachedFeed is the snapshot held by a store. It is always written and
// read as a whole.
type CachedFeed struct {
	// Feed holds the items in insertion order
	Feed []LocalFeedItem

	// Timestamp is when the snapshot was taken
	Timestamp time.Time
}

// FeedStore persists a single feed snapshot.
type FeedStore interface {
	// DeleteCachedFeed removes the snapshot. Deleting an empty store succeeds.
	DeleteCachedFeed(ctx context.Context) error

	// Insert writes a snapshot. It does not clear previous contents.
	Insert(ctx context.Context, items []LocalFeedItem, timestamp time.Time) error

	// Retrieve returns the snapshot. found is false when the store is empty.
	Retrieve(ctx context.Context) (cached CachedFeed, found bool, err error)
}

// ToLocal maps domain items to their persisted form.
func ToLocal(items []feed.FeedItem) []LocalFeedItem {
	local := make([]LocalFeedItem, len(items))
	for i, item := range items {
		local[i] = LocalFeedItem{
			ID:          item.ID,
			Description: item.Description,
			Location:    item.Location,
			ImageURL:    item.ImageURL,
		}
	}
	return local
}

// ToModels maps persisted items back to domain items.
func ToModels(local []LocalFeedItem) []feed.FeedItem {
	items := make([]feed.FeedItem, len(local))
	for i, l := range local {
		items[i] = feed.FeedItem{
			ID:          l.ID,
			Description: l.Description,
			Location:    l.Location,
			ImageURL:    l.ImageURL,
		}
	}
	return items
}

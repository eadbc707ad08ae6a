// Package redisstore implements cache.FeedStore on Redis. The whole
// snapshot lives under a single key as JSON, so reads and writes are atomic.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidEntry indicates the stored snapshot is corrupted.
var ErrInvalidEntry = errors.New("invalid cache entry")

// record is the JSON form of a snapshot.
type record struct {
	Items     []itemRecord `json:"items"`
	Timestamp time.Time    `json:"timestamp"`
}

type itemRecord struct {
	ID          uuid.UUID `json:"id"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	URL         string    `json:"url"`
}

// Store keeps the feed snapshot in Redis.
type Store struct {
	redis *redis.Client
	key   string
}

// New creates a store writing under key.
func New(redisClient *redis.Client, key Key) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Store{
		redis: redisClient,
		key:   key.String(),
	}
}

// DeleteCachedFeed removes the snapshot.
func (s *Store) DeleteCachedFeed(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Insert writes the snapshot. Redis SET overwrites whatever the key held.
func (s *Store) Insert(ctx context.Context, items []cache.LocalFeedItem, timestamp time.Time) error {
	rec := record{
		Items:     make([]itemRecord, len(items)),
		Timestamp: timestamp,
	}
	for i, item := range items {
		rec.Items[i] = itemRecord{
			ID:          item.ID,
			Description: item.Description,
			Location:    item.Location,
			URL:         item.ImageURL.String(),
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Retrieve reads the snapshot. A missing key means an empty store.
func (s *Store) Retrieve(ctx context.Context) (cache.CachedFeed, bool, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return cache.CachedFeed{}, false, nil
		}
		return cache.CachedFeed{}, false, fmt.Errorf("redis get: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	items := make([]cache.LocalFeedItem, len(rec.Items))
	for i, r := range rec.Items {
		u, err := url.Parse(r.URL)
		if err != nil {
			return cache.CachedFeed{}, false, fmt.Errorf("%w: item %d: %v", ErrInvalidEntry, i, err)
		}
		items[i] = cache.LocalFeedItem{
			ID:          r.ID,
			Description: r.Description,
			Location:    r.Location,
			ImageURL:    *u,
		}
	}

	return cache.CachedFeed{Feed: items, Timestamp: rec.Timestamp}, true, nil
}

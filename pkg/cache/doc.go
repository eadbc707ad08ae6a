// Package cache keeps the most recently fetched feed in a FeedStore and
// serves it back while it is fresh.
//
// The local loader implements three use cases on top of the store:
//
// - Save replaces the cached feed (delete, then insert with the current time)
// - Load retrieves the cached feed and returns it only while it is valid
// - Invalidate clears the cache
//
// # Basic Usage
//
//	// Open a store
//	store, err := sqlitestore.Open("feed.db")
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	// Create the loader with the wall clock
//	loader := cache.NewLocalLoader(store, time.Now)
//
//	// Replace the cache
//	if err := loader.Save(ctx, items); err != nil {
//		return err
//	}
//
//	// Read it back; an expired cache yields no items and no error
//	items, err := loader.Load(ctx)
//
// # Cache Policy
//
// A cached feed is valid while now < timestamp + MaxCacheAgeInDays days.
// The clock is always injected so that freshness is decided by the caller's
// notion of "now".
//
// # Stores
//
// Store implementations live in sub-packages:
//
//   - redisstore: one Redis key holding the JSON snapshot
//   - sqlitestore: embedded SQLite database (modernc.org/sqlite)
//   - pgstore: PostgreSQL (lib/pq)
//
// Insert never runs a delete of its own. Callers delete before they
// insert, as Save does. Inserting into a non-empty store is left to the
// backend: the Redis store overwrites its key, the SQL stores fail on their
// primary keys and keep the previous snapshot. A Save whose insert fails
// leaves the cache empty rather than stale.
//
// # Metrics
//
//   - feed_cache_operations_total{operation,result} - store round trips
//   - feed_cache_loads_total{outcome} - load outcomes (hit, empty, expired, error)
package cache

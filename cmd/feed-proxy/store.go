package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Sternrassler/essential-feed/internal/config"
	"github.com/Sternrassler/essential-feed/pkg/cache"
	"github.com/Sternrassler/essential-feed/pkg/cache/pgstore"
	"github.com/Sternrassler/essential-feed/pkg/cache/redisstore"
	"github.com/Sternrassler/essential-feed/pkg/cache/sqlitestore"
	"github.com/redis/go-redis/v9"
)

// storeHandle is an opened FeedStore. Redis is set when the backend is
// Redis so other components can share the connection.
type storeHandle struct {
	cache.FeedStore
	Redis *redis.Client
	Close func()
}

// openStore builds the FeedStore selected by cfg.Store. Close is safe to
// call more than once.
func openStore(ctx context.Context, cfg config.Config) (storeHandle, error) {
	switch cfg.Store {
	case config.StoreRedis:
		opts, err := redisOptions(cfg.RedisURL)
		if err != nil {
			return storeHandle{}, err
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return storeHandle{}, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}
		return storeHandle{
			FeedStore: redisstore.New(redisClient, redisstore.Key{}),
			Redis:     redisClient,
			Close:     once(func() { redisClient.Close() }),
		}, nil

	case config.StoreSQLite:
		store, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return storeHandle{}, err
		}
		return storeHandle{FeedStore: store, Close: once(func() { store.Close() })}, nil

	case config.StorePostgres:
		db, err := pgstore.Open(cfg.PostgresDSN)
		if err != nil {
			return storeHandle{}, err
		}
		store := pgstore.New(db)
		if err := store.Ensure(ctx); err != nil {
			db.Close()
			return storeHandle{}, err
		}
		return storeHandle{FeedStore: store, Close: once(func() { db.Close() })}, nil

	default:
		return storeHandle{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// redisOptions accepts either a redis:// URL or a bare host:port.
func redisOptions(raw string) (*redis.Options, error) {
	if strings.Contains(raw, "://") {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: raw}, nil
}

func once(fn func()) func() {
	var o sync.Once
	return func() { o.Do(fn) }
}

//go:build integration

package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/essential-feed/internal/testutil"
	"github.com/Sternrassler/essential-feed/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client
func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestStore_Integration_Contract(t *testing.T) {
	client, cleanup := setupRedis(t)
	defer cleanup()

	testutil.RunFeedStoreContract(t, func(t *testing.T) cache.FeedStore {
		if err := client.FlushDB(context.Background()).Err(); err != nil {
			t.Fatalf("Failed to flush DB: %v", err)
		}
		return New(client, Key{Feed: "integration"})
	})
}

func TestStore_Integration_LocalLoaderLifecycle(t *testing.T) {
	client, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	loader := cache.NewLocalLoader(New(client, Key{Feed: "lifecycle"}), func() time.Time { return now })

	items := cache.ToModels(testutil.UniqueLocalFeed(t))
	if err := loader.Save(ctx, items); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("Load() = %d items, want %d", len(got), len(items))
	}

	// Eight days later the snapshot is still stored but expired
	now = now.AddDate(0, 0, 8)
	got, err = loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() after expiry = %d items, want 0", len(got))
	}

	if err := loader.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if n, _ := client.Exists(ctx, Key{Feed: "lifecycle"}.String()).Result(); n != 0 {
		t.Errorf("key still exists after Invalidate")
	}
}

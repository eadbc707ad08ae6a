package redisstore

import (
	"strings"
)

// Key identifies the Redis key holding one feed snapshot.
type Key struct {
	// Feed names the cached feed (e.g., "default")
	Feed string

	// Tenant scopes the snapshot when several deployments share a Redis (optional)
	Tenant string
}

// String generates a deterministic key.
// Format: feed:cache[:tenant]:name
//
// Example:
//
//	feed:cache:acme:default
func (k Key) String() string {
	parts := []string{"feed", "cache"}

	if tenant := strings.TrimSpace(k.Tenant); tenant != "" {
		parts = append(parts, tenant)
	}

	name := strings.TrimSpace(k.Feed)
	if name == "" {
		name = "default"
	}
	parts = append(parts, name)

	return strings.Join(parts, ":")
}

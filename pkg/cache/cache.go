// Package cache provides the caching layer for agent replies.
//
// The Cache interface stores opaque byte values under string keys with
// an optional TTL. Implementations:
//   - memory: in-process map for development/testing and single runs
//   - file: file-based cache for CLI usage (XDG cache directory)
//   - redis: Redis-backed cache for multi-instance deployments
//   - null: no-op cache when caching is disabled
//
// Keys for agent replies are derived with [AgentKey], which hashes the
// command together with the full panel state so any configuration
// change produces a distinct key.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement.
// Get returns the stored bytes and whether the key was present; an
// expired or missing entry is a miss, not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// AgentKey derives the cache key for an agent reply from the model,
// the free-text command, and the serialized panel state.
func AgentKey(model, command string, state any) string {
	return hashKey("agent", model, command, state)
}

// Package cache provides the domain port for caching search results.
package cache

import (
	"context"
	"time"
)

// Cache stores encoded plans keyed by algorithm and world fingerprint.
// Implementations may be in-memory, Badger, SQLite, Redis, or any other backend.
type Cache interface {
	// Get retrieves a cached value by key.
	// Returns the value, whether it was found, and any error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given key and options.
	Set(ctx context.Context, key string, value []byte, opts SetOptions) error

	// Delete removes a cached entry by key.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in the cache.
	Exists(ctx context.Context, key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error
}

// SetOptions configures how a value is stored in the cache.
type SetOptions struct {
	// TTL is the time-to-live for the cached entry.
	// Zero means no expiration.
	TTL time.Duration
}

// Stats provides cache statistics.
type Stats struct {
	Hits    int64
	Misses  int64
	Size    int64
	MaxSize int64 // 0 = unlimited
}

// StatsProvider is an optional interface for caches that support statistics.
type StatsProvider interface {
	Stats() Stats
}

// Package memory provides in-process plan caches and run history.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/gridplan/domain/cache"
)

// DefaultMaxEntries bounds a cache created without WithMaxSize.
const DefaultMaxEntries = 1024

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
	usedAt    time.Time
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Cache is an in-memory cache.Cache with TTL expiry and least recently used
// eviction at capacity.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	maxSize int
	now     func() time.Time

	hits   int64
	misses int64
}

// CacheOption configures the cache.
type CacheOption func(*Cache)

// WithMaxSize sets the maximum number of entries.
func WithMaxSize(size int) CacheOption {
	return func(c *Cache) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates a new in-memory cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]*cacheEntry),
		maxSize: DefaultMaxEntries,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a copy of a value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, ok := c.entries[key]
	if ok && entry.expired(now) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.misses++
		return nil, false, nil
	}

	entry.usedAt = now
	c.hits++
	return clone(entry.value), true, nil
}

// Set stores a copy of value, evicting the least recently used entry when full.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.sweepLocked(now)
		if len(c.entries) >= c.maxSize {
			c.evictLocked()
		}
	}

	entry := &cacheEntry{value: clone(value), usedAt: now}
	if opts.TTL > 0 {
		entry.expiresAt = now.Add(opts.TTL)
	}
	c.entries[key] = entry
	return nil
}

// Delete removes a value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Exists reports whether a live entry is stored under key.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	return ok && !entry.expired(c.now()), nil
}

// Clear removes all entries.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	return nil
}

// Stats returns cache statistics.
func (c *Cache) Stats() cache.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return cache.Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    int64(len(c.entries)),
		MaxSize: int64(c.maxSize),
	}
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now())
}

func (c *Cache) sweepLocked(now time.Time) int {
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// evictLocked drops the least recently used entry. Ties go to the smaller key.
func (c *Cache) evictLocked() {
	var victim string
	var oldest time.Time
	for key, entry := range c.entries {
		if victim == "" || entry.usedAt.Before(oldest) || (entry.usedAt.Equal(oldest) && key < victim) {
			victim = key
			oldest = entry.usedAt
		}
	}
	delete(c.entries, victim)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)

package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/gridplan/domain/cache"
	"github.com/felixgeelhaar/gridplan/infrastructure/storage/sqlite"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, opts ...sqlite.Option) *sqlite.Cache {
	t.Helper()

	opts = append([]sqlite.Option{sqlite.WithPath(filepath.Join(t.TempDir(), "cache.db"))}, opts...)
	c, err := sqlite.NewCache(sqlite.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_SetAndGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "depth-first:abc", []byte("plan"), cache.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set(ctx, "depth-first:abc", []byte("plan2"), cache.SetOptions{}); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	val, found, err := c.Get(ctx, "depth-first:abc")
	if err != nil || !found || string(val) != "plan2" {
		t.Errorf("Get() = %q, %v, %v, want plan2", val, found, err)
	}

	if _, found, _ := c.Get(ctx, "missing"); found {
		t.Error("Get(missing) should miss")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("Stats() = %+v, want 1 hit 1 miss size 1", stats)
	}
}

func TestCache_InvalidKey(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set(context.Background(), "", nil, cache.SetOptions{}); !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidKey", err)
	}
}

func TestCache_TTLAndCleanup(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newTestCache(t, sqlite.WithClock(clock.Now))
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("1"), cache.SetOptions{TTL: time.Minute})
	_ = c.Set(ctx, "forever", []byte("2"), cache.SetOptions{})

	if ok, _ := c.Exists(ctx, "short"); !ok {
		t.Error("entry should exist before TTL")
	}

	clock.Advance(time.Minute)

	if ok, _ := c.Exists(ctx, "short"); ok {
		t.Error("entry should expire at TTL")
	}
	if _, found, _ := c.Get(ctx, "short"); found {
		t.Error("Get() should miss an expired entry")
	}

	removed, err := c.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Cleanup() = %d, want 1", removed)
	}
	if ok, _ := c.Exists(ctx, "forever"); !ok {
		t.Error("entry without TTL should survive cleanup")
	}
}

func TestCache_ClearRespectsPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	a, err := sqlite.NewCache(sqlite.DefaultConfig(), sqlite.WithPath(path), sqlite.WithKeyPrefix("a:"))
	if err != nil {
		t.Fatalf("NewCache(a) error = %v", err)
	}
	defer a.Close()
	b, err := sqlite.NewCache(sqlite.DefaultConfig(), sqlite.WithPath(path), sqlite.WithKeyPrefix("b:"))
	if err != nil {
		t.Fatalf("NewCache(b) error = %v", err)
	}
	defer b.Close()

	_ = a.Set(ctx, "k", []byte("a"), cache.SetOptions{})
	_ = b.Set(ctx, "k", []byte("b"), cache.SetOptions{})

	if err := a.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if ok, _ := a.Exists(ctx, "k"); ok {
		t.Error("a:k should be cleared")
	}
	val, found, _ := b.Get(ctx, "k")
	if !found || string(val) != "b" {
		t.Error("b:k should survive a's Clear()")
	}
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), cache.SetOptions{})
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Error("deleted key should not exist")
	}
}

func TestNewCache_BadPath(t *testing.T) {
	_, err := sqlite.NewCache(sqlite.DefaultConfig(), sqlite.WithPath(filepath.Join(t.TempDir(), "missing", "dir", "c.db")))
	if err == nil {
		t.Error("NewCache() should fail for a missing directory")
	}
}

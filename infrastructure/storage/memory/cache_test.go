package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/gridplan/domain/cache"
	"github.com/felixgeelhaar/gridplan/infrastructure/storage/memory"
)

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
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

func TestNewCache(t *testing.T) {
	t.Parallel()

	t.Run("creates cache with defaults", func(t *testing.T) {
		t.Parallel()

		stats := memory.NewCache().Stats()
		if stats.MaxSize != memory.DefaultMaxEntries {
			t.Errorf("default MaxSize = %d, want %d", stats.MaxSize, memory.DefaultMaxEntries)
		}
	})

	t.Run("ignores non-positive max size", func(t *testing.T) {
		t.Parallel()

		stats := memory.NewCache(memory.WithMaxSize(0)).Stats()
		if stats.MaxSize != memory.DefaultMaxEntries {
			t.Errorf("MaxSize = %d, want %d", stats.MaxSize, memory.DefaultMaxEntries)
		}
	})
}

func TestCache_SetAndGet(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx := context.Background()

	if err := c.Set(ctx, "uniform-cost:abc", []byte("value1"), cache.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := c.Get(ctx, "uniform-cost:abc")
	if err != nil || !found {
		t.Fatalf("Get() = %v, %v, want hit", found, err)
	}
	if string(value) != "value1" {
		t.Errorf("Get() value = %s, want value1", value)
	}

	value[0] = 'X'
	again, _, _ := c.Get(ctx, "uniform-cost:abc")
	if string(again) != "value1" {
		t.Error("Get() should return a copy")
	}

	if _, found, _ := c.Get(ctx, "missing"); found {
		t.Error("Get() should miss for unknown key")
	}

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("Stats() = %+v, want 2 hits 1 miss size 1", stats)
	}
}

func TestCache_InvalidKey(t *testing.T) {
	t.Parallel()

	err := memory.NewCache().Set(context.Background(), "", []byte("x"), cache.SetOptions{})
	if !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidKey", err)
	}
}

func TestCache_TTL(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	c := memory.NewCache(memory.WithClock(clock.Now))
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("1"), cache.SetOptions{TTL: time.Minute})
	_ = c.Set(ctx, "forever", []byte("2"), cache.SetOptions{})

	clock.Advance(59 * time.Second)
	if ok, _ := c.Exists(ctx, "short"); !ok {
		t.Error("entry should live until its TTL")
	}

	clock.Advance(time.Second)
	if ok, _ := c.Exists(ctx, "short"); ok {
		t.Error("entry should expire at its TTL")
	}
	if _, found, _ := c.Get(ctx, "short"); found {
		t.Error("Get() should miss an expired entry")
	}
	if ok, _ := c.Exists(ctx, "forever"); !ok {
		t.Error("entry without TTL should not expire")
	}
}

func TestCache_Sweep(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	c := memory.NewCache(memory.WithClock(clock.Now))
	ctx := context.Background()

	_ = c.Set(ctx, "a", nil, cache.SetOptions{TTL: time.Second})
	_ = c.Set(ctx, "b", nil, cache.SetOptions{TTL: time.Second})
	_ = c.Set(ctx, "c", nil, cache.SetOptions{})
	clock.Advance(2 * time.Second)

	if removed := c.Sweep(); removed != 2 {
		t.Errorf("Sweep() = %d, want 2", removed)
	}
	if size := c.Stats().Size; size != 1 {
		t.Errorf("Size = %d, want 1", size)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	c := memory.NewCache(memory.WithMaxSize(2), memory.WithClock(clock.Now))
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("a"), cache.SetOptions{})
	clock.Advance(time.Second)
	_ = c.Set(ctx, "b", []byte("b"), cache.SetOptions{})
	clock.Advance(time.Second)
	_, _, _ = c.Get(ctx, "a") // a is now the most recent
	clock.Advance(time.Second)

	if err := c.Set(ctx, "c", []byte("c"), cache.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	tests := []struct {
		key  string
		want bool
	}{
		{"a", true},
		{"b", false},
		{"c", true},
	}
	for _, tt := range tests {
		if ok, _ := c.Exists(ctx, tt.key); ok != tt.want {
			t.Errorf("Exists(%s) = %v, want %v", tt.key, ok, tt.want)
		}
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("a"), cache.SetOptions{})
	_ = c.Set(ctx, "b", []byte("b"), cache.SetOptions{})

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok, _ := c.Exists(ctx, "a"); ok {
		t.Error("deleted key should not exist")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if size := c.Stats().Size; size != 0 {
		t.Errorf("Size after Clear() = %d, want 0", size)
	}
}

func TestCache_CancelledContext(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := c.Get(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
	if err := c.Set(ctx, "a", nil, cache.SetOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Set() error = %v, want context.Canceled", err)
	}
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := memory.NewCache(memory.WithMaxSize(16))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, key, []byte{byte(j)}, cache.SetOptions{})
				_, _, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if size := c.Stats().Size; size != 8 {
		t.Errorf("Size = %d, want 8", size)
	}
}

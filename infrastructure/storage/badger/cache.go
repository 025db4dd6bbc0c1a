package badger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/gridplan/domain/cache"
)

const namespace = "plan:"

// Cache is a BadgerDB-backed cache.Cache. Entry expiry uses badger's native TTL.
type Cache struct {
	db     *badger.DB
	prefix []byte
	hits   atomic.Int64
	misses atomic.Int64

	gcStop chan struct{}
	gcWg   sync.WaitGroup
	closed sync.Once
}

// NewCache opens a database and wraps it as a cache.
func NewCache(cfg Config, opts ...Option) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	c := NewCacheFromDB(db, cfg.KeyPrefix)
	if cfg.GCInterval > 0 && !cfg.InMemory {
		c.startGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return c, nil
}

// NewCacheFromDB wraps an existing database. Close closes the database.
func NewCacheFromDB(db *badger.DB, keyPrefix string) *Cache {
	return &Cache{
		db:     db,
		prefix: []byte(keyPrefix + namespace),
		gcStop: make(chan struct{}),
	}
}

func (c *Cache) startGC(interval time.Duration, discardRatio float64) {
	c.gcWg.Add(1)
	go func() {
		defer c.gcWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.gcStop:
				return
			case <-ticker.C:
				// RunValueLogGC returns an error once nothing is left to collect.
				for c.db.RunValueLogGC(discardRatio) == nil {
				}
			}
		}
	}()
}

func (c *Cache) key(key string) []byte {
	out := make([]byte, 0, len(c.prefix)+len(key))
	out = append(out, c.prefix...)
	return append(out, key...)
}

// Get retrieves a value from the cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Join(cache.ErrConnectionFailed, err)
	}

	c.hits.Add(1)
	return value, true, nil
}

// Set stores a value in the cache.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(c.key(key), value)
		if opts.TTL > 0 {
			e = e.WithTTL(opts.TTL)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes a value from the cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(c.key(key))
	})
}

// Exists checks if a key exists in the cache.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(c.key(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes every plan stored under the prefix.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.DropPrefix(c.prefix)
}

// Keys returns the cache keys that start with prefix, in key order.
func (c *Cache) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = c.key(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(c.prefix):]))
		}
		return nil
	})
	return keys, err
}

// Stats returns cache statistics.
func (c *Cache) Stats() cache.Stats {
	keys, _ := c.Keys(context.Background(), "")
	return cache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   int64(len(keys)),
	}
}

// Close stops GC and closes the database.
func (c *Cache) Close() error {
	var err error
	c.closed.Do(func() {
		close(c.gcStop)
		c.gcWg.Wait()
		err = c.db.Close()
	})
	return err
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)

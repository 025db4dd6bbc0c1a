package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/gridplan/domain/cache"
)

// Cache is a SQLite-backed cache.Cache. Expired rows are ignored on read and
// removed by Cleanup.
type Cache struct {
	db     *sql.DB
	prefix string
	now    func() time.Time
	hits   atomic.Int64
	misses atomic.Int64
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

	c := newCache(db, cfg)
	if cfg.AutoMigrate {
		if err := c.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return c, nil
}

// NewCacheFromDB creates a cache on an existing connection.
func NewCacheFromDB(db *sql.DB, keyPrefix string) (*Cache, error) {
	c := newCache(db, Config{KeyPrefix: keyPrefix})
	if err := c.migrate(); err != nil {
		return nil, err
	}
	return c, nil
}

func newCache(db *sql.DB, cfg Config) *Cache {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{db: db, prefix: cfg.KeyPrefix, now: now}
}

func (c *Cache) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS plan_cache (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expires_at INTEGER,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_plan_cache_expires_at ON plan_cache(expires_at);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

// Get retrieves a value from the cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT value FROM plan_cache WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)",
		c.prefix+key, c.now().UnixMilli(),
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Join(cache.ErrConnectionFailed, err)
	}

	c.hits.Add(1)
	return value, true, nil
}

// Set stores a value, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	now := c.now()
	var expiresAt sql.NullInt64
	if opts.TTL > 0 {
		expiresAt = sql.NullInt64{Int64: now.Add(opts.TTL).UnixMilli(), Valid: true}
	}
	if value == nil {
		value = []byte{}
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO plan_cache (key, value, expires_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   expires_at = excluded.expires_at,
		   updated_at = excluded.updated_at`,
		c.prefix+key, value, expiresAt, now.UnixMilli(),
	)
	return err
}

// Delete removes a value from the cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, "DELETE FROM plan_cache WHERE key = ?", c.prefix+key)
	return err
}

// Exists checks if a live entry is stored under key.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var one int
	err := c.db.QueryRowContext(ctx,
		"SELECT 1 FROM plan_cache WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)",
		c.prefix+key, c.now().UnixMilli(),
	).Scan(&one)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes every entry under the key prefix.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM plan_cache WHERE substr(key, 1, ?) = ?",
		len(c.prefix), c.prefix,
	)
	return err
}

// Cleanup removes expired entries and returns how many were deleted.
func (c *Cache) Cleanup(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := c.db.ExecContext(ctx,
		"DELETE FROM plan_cache WHERE expires_at IS NOT NULL AND expires_at <= ?",
		c.now().UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Stats returns cache statistics.
func (c *Cache) Stats() cache.Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var size int64
	_ = c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM plan_cache WHERE substr(key, 1, ?) = ?",
		len(c.prefix), c.prefix,
	).Scan(&size)

	return cache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)

package redis

import (
	"context"
	"errors"
	"net"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/gridplan/domain/cache"
)

const namespace = "plan:"

// Cache is a Redis-backed cache.Cache shared between planner processes.
type Cache struct {
	client    *redis.Client
	keyPrefix string
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewCache connects to Redis and verifies the connection with PING.
func NewCache(cfg Config, opts ...ConfigOption) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	client := redis.NewClient(newOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(cache.ErrConnectionFailed, err)
	}

	return NewCacheFromClient(client, cfg.KeyPrefix), nil
}

func newOptions(cfg Config) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	}
}

// NewCacheFromClient creates a cache from an existing Redis client.
func NewCacheFromClient(client *redis.Client, keyPrefix string) *Cache {
	return &Cache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (c *Cache) prefixKey(key string) string {
	return c.keyPrefix + namespace + key
}

// Get retrieves a value from the cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	result, err := c.client.Get(ctx, c.prefixKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapError(err)
	}

	c.hits.Add(1)
	return result, true, nil
}

// Set stores a value; a positive TTL becomes the key's expiration.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	expiration := opts.TTL
	if expiration < 0 {
		expiration = 0
	}
	return wrapError(c.client.Set(ctx, c.prefixKey(key), value, expiration).Err())
}

// Delete removes a value from the cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrapError(c.client.Del(ctx, c.prefixKey(key)).Err())
}

// Exists checks if a key exists in the cache.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	n, err := c.client.Exists(ctx, c.prefixKey(key)).Result()
	if err != nil {
		return false, wrapError(err)
	}
	return n > 0, nil
}

// Clear removes every plan under the prefix using SCAN, in batches.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	iter := c.client.Scan(ctx, 0, c.keyPrefix+namespace+"*", 100).Iterator()

	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return wrapError(err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return wrapError(err)
	}
	if len(batch) > 0 {
		return wrapError(c.client.Del(ctx, batch...).Err())
	}
	return nil
}

// Stats returns hit and miss counts. Size is not tracked for Redis.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// wrapError marks network and timeout failures as connection failures.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return errors.Join(cache.ErrConnectionFailed, err)
	}
	return err
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)

// Package resilience protects remote cache backends with fortify's bulkhead,
// circuit breaker and retry patterns.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/gridplan/domain/cache"
)

// outcome carries a value or a permanent error through the fortify chain.
// Permanent errors must not trip the breaker or be retried.
type outcome struct {
	value []byte
	found bool
	err   error
}

// StateListener is notified when the circuit opens or closes.
type StateListener func(open bool)

// Cache wraps a cache.Cache with resilience patterns.
type Cache struct {
	inner    cache.Cache
	bulkhead bulkhead.Bulkhead[outcome]
	breaker  circuitbreaker.CircuitBreaker[outcome]
	retry    retry.Retry[outcome]
	timeout  time.Duration

	mu       sync.Mutex
	open     bool
	listener StateListener
}

// Config configures the resilient cache.
type Config struct {
	// MaxConcurrent limits concurrent backend calls.
	MaxConcurrent int

	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold int

	// OpenTimeout is how long the circuit stays open.
	OpenTimeout time.Duration

	// MaxAttempts is the maximum number of tries per call.
	MaxAttempts int

	// InitialDelay is the initial delay between retries.
	InitialDelay time.Duration

	// BackoffMultiplier is the exponential backoff multiplier.
	BackoffMultiplier float64

	// Timeout bounds each call including retries.
	Timeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:     16,
		FailureThreshold:  5,
		OpenTimeout:       30 * time.Second,
		MaxAttempts:       3,
		InitialDelay:      50 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Timeout:           2 * time.Second,
	}
}

// Option configures the resilient cache.
type Option func(*Config)

// WithMaxConcurrent sets the maximum concurrent backend calls.
func WithMaxConcurrent(n int) Option {
	return func(c *Config) {
		c.MaxConcurrent = n
	}
}

// WithFailureThreshold sets the failure threshold for the circuit breaker.
func WithFailureThreshold(n int) Option {
	return func(c *Config) {
		c.FailureThreshold = n
	}
}

// WithOpenTimeout sets the circuit breaker open duration.
func WithOpenTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.OpenTimeout = d
	}
}

// WithRetryAttempts sets the maximum attempts per call.
func WithRetryAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) {
		c.InitialDelay = d
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// New wraps inner with the given options applied over DefaultConfig.
func New(inner cache.Cache, opts ...Option) *Cache {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return NewWithConfig(inner, config)
}

// NewWithConfig wraps inner with an explicit configuration.
func NewWithConfig(inner cache.Cache, config Config) *Cache {
	defaults := DefaultConfig()

	// Keep values positive for the uint32 conversions below.
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaults.MaxConcurrent
	}
	threshold := config.FailureThreshold
	if threshold <= 0 {
		threshold = defaults.FailureThreshold
	}
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	multiplier := config.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = defaults.BackoffMultiplier
	}
	openTimeout := config.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaults.OpenTimeout
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaults.Timeout
	}

	return &Cache{
		inner: inner,
		bulkhead: bulkhead.New[outcome](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		breaker: circuitbreaker.New[outcome](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    openTimeout,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			},
		}),
		retry: retry.New[outcome](retry.Config{
			MaxAttempts:   attempts,
			InitialDelay:  config.InitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    multiplier,
		}),
		timeout: timeout,
	}
}

// OnStateChange registers a listener for circuit open/close changes.
func (c *Cache) OnStateChange(l StateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Cache) CircuitBreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// Get implements cache.Cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := c.execute(ctx, func(ctx context.Context) outcome {
		value, found, err := c.inner.Get(ctx, key)
		return outcome{value: value, found: found, err: err}
	})
	if err != nil {
		return nil, false, err
	}
	return out.value, out.found, nil
}

// Set implements cache.Cache.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	_, err := c.execute(ctx, func(ctx context.Context) outcome {
		return outcome{err: c.inner.Set(ctx, key, value, opts)}
	})
	return err
}

// Delete implements cache.Cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	_, err := c.execute(ctx, func(ctx context.Context) outcome {
		return outcome{err: c.inner.Delete(ctx, key)}
	})
	return err
}

// Exists implements cache.Cache.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	out, err := c.execute(ctx, func(ctx context.Context) outcome {
		found, err := c.inner.Exists(ctx, key)
		return outcome{found: found, err: err}
	})
	return out.found, err
}

// Clear implements cache.Cache.
func (c *Cache) Clear(ctx context.Context) error {
	_, err := c.execute(ctx, func(ctx context.Context) outcome {
		return outcome{err: c.inner.Clear(ctx)}
	})
	return err
}

// Stats forwards to the wrapped cache when it reports statistics.
func (c *Cache) Stats() cache.Stats {
	if sp, ok := c.inner.(cache.StatsProvider); ok {
		return sp.Stats()
	}
	return cache.Stats{}
}

// execute applies the patterns in order: bulkhead, timeout, circuit breaker, retry.
func (c *Cache) execute(ctx context.Context, op func(context.Context) outcome) (outcome, error) {
	out, err := c.bulkhead.Execute(ctx, func(ctx context.Context) (outcome, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		return c.breaker.Execute(ctx, func(ctx context.Context) (outcome, error) {
			return c.retry.Do(ctx, func(ctx context.Context) (outcome, error) {
				out := op(ctx)
				if out.err != nil && !isPermanent(out.err) {
					return outcome{}, out.err
				}
				return out, nil
			})
		})
	})
	c.observeState()

	if err != nil {
		if errors.Is(err, cache.ErrConnectionFailed) {
			return outcome{}, err
		}
		return outcome{}, fmt.Errorf("%w: %w", cache.ErrConnectionFailed, err)
	}
	if out.err != nil {
		return out, out.err
	}
	return out, nil
}

func (c *Cache) observeState() {
	open := c.breaker.State().String() == "open"

	c.mu.Lock()
	changed := open != c.open
	c.open = open
	listener := c.listener
	c.mu.Unlock()

	if changed && listener != nil {
		listener(open)
	}
}

// isPermanent reports errors that retrying cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, cache.ErrKeyNotFound) ||
		errors.Is(err, cache.ErrInvalidKey) ||
		errors.Is(err, cache.ErrCacheFull) ||
		errors.Is(err, cache.ErrInvalidEntry) ||
		errors.Is(err, context.Canceled)
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)

package application

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/gridplan/domain/cache"
	"github.com/felixgeelhaar/gridplan/domain/run"
	"github.com/felixgeelhaar/gridplan/infrastructure/planner"
	"github.com/felixgeelhaar/gridplan/infrastructure/telemetry"
)

// Option configures the service.
type Option func(*ServiceConfig)

// WithRegistry sets the strategy registry.
func WithRegistry(r *planner.Registry) Option {
	return func(c *ServiceConfig) {
		c.Registry = r
	}
}

// WithCache enables the plan cache.
func WithCache(cc cache.Cache) Option {
	return func(c *ServiceConfig) {
		c.Cache = cc
	}
}

// WithCacheTTL sets how long cached plans live. Zero keeps them until evicted.
func WithCacheTTL(d time.Duration) Option {
	return func(c *ServiceConfig) {
		c.CacheTTL = d
	}
}

// WithHistory records finished runs in a store.
func WithHistory(store run.Store) Option {
	return func(c *ServiceConfig) {
		c.History = store
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *ServiceConfig) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *ServiceConfig) {
		c.Tracer = t
	}
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *ServiceConfig) {
		c.Clock = now
	}
}

// WithIDGenerator replaces the uuid run ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(c *ServiceConfig) {
		c.IDGenerator = gen
	}
}

// NewServiceWithOptions creates a service with functional options.
func NewServiceWithOptions(opts ...Option) *Service {
	config := ServiceConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	return NewService(config)
}

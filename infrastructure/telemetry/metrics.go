// Package telemetry records OpenTelemetry metrics for searches, runs and the
// plan cache.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/felixgeelhaar/gridplan/domain/search"
)

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordSearch(ctx context.Context, alg search.Algorithm, result search.Result, duration time.Duration)
	RecordRun(ctx context.Context, status string, cached bool)
	RecordCacheHit(ctx context.Context, alg search.Algorithm)
	RecordCacheMiss(ctx context.Context, alg search.Algorithm)
	RecordCacheError(ctx context.Context, operation string)
	IncrementActiveRuns(ctx context.Context)
	DecrementActiveRuns(ctx context.Context)
	RecordCircuitBreakerStateChange(ctx context.Context, backend string, isOpen bool)
}

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	searches       metric.Int64Counter
	nodesGenerated metric.Int64Counter
	nodesExpanded  metric.Int64Counter
	runs           metric.Int64Counter
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheErrors    metric.Int64Counter

	searchDuration metric.Float64Histogram
	planLength     metric.Int64Histogram

	activeRuns         metric.Int64UpDownCounter
	circuitBreakerOpen metric.Int64UpDownCounter

	initErr error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter.
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// MeterProvider overrides the global provider.
	MeterProvider metric.MeterProvider
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/gridplan",
		MeterVersion: "0.1.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config.MeterName = DefaultMetricsConfig().MeterName
	}
	provider := config.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	mp := &MetricsProvider{
		meter: provider.Meter(config.MeterName, metric.WithInstrumentationVersion(config.MeterVersion)),
	}
	mp.initErr = mp.initInstruments()
	return mp
}

func (mp *MetricsProvider) initInstruments() error {
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&mp.searches, "gridplan.searches", "Number of searches run", "{search}"},
		{&mp.nodesGenerated, "gridplan.nodes.generated", "Nodes placed on a frontier", "{node}"},
		{&mp.nodesExpanded, "gridplan.nodes.expanded", "Nodes popped and processed", "{node}"},
		{&mp.runs, "gridplan.runs", "Finished planning runs", "{run}"},
		{&mp.cacheHits, "gridplan.cache.hits", "Number of plan cache hits", "{hit}"},
		{&mp.cacheMisses, "gridplan.cache.misses", "Number of plan cache misses", "{miss}"},
		{&mp.cacheErrors, "gridplan.cache.errors", "Number of failed cache operations", "{error}"},
	}
	for _, c := range counters {
		*c.dst, err = mp.meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return err
		}
	}

	mp.searchDuration, err = mp.meter.Float64Histogram(
		"gridplan.search.duration",
		metric.WithDescription("Duration of searches"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.planLength, err = mp.meter.Int64Histogram(
		"gridplan.plan.length",
		metric.WithDescription("Actions in found plans"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return err
	}

	mp.activeRuns, err = mp.meter.Int64UpDownCounter(
		"gridplan.runs.active",
		metric.WithDescription("Number of runs in progress"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	mp.circuitBreakerOpen, err = mp.meter.Int64UpDownCounter(
		"gridplan.circuitbreaker.open",
		metric.WithDescription("Number of open cache circuit breakers"),
		metric.WithUnit("{circuit}"),
	)
	return err
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordSearch records one strategy invocation.
func (mp *MetricsProvider) RecordSearch(ctx context.Context, alg search.Algorithm, result search.Result, duration time.Duration) {
	algAttr := metric.WithAttributes(attribute.String("search.algorithm", string(alg)))

	mp.searches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("search.algorithm", string(alg)),
		attribute.Bool("search.found", result.Found),
	))
	mp.nodesGenerated.Add(ctx, int64(result.Generated), algAttr)
	mp.nodesExpanded.Add(ctx, int64(result.Expanded), algAttr)
	mp.searchDuration.Record(ctx, float64(duration.Microseconds())/1000, algAttr)
	if result.Found {
		mp.planLength.Record(ctx, int64(result.Cost()), algAttr)
	}
}

// RecordRun records a finished run.
func (mp *MetricsProvider) RecordRun(ctx context.Context, status string, cached bool) {
	mp.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("run.status", status),
		attribute.Bool("run.cached", cached),
	))
}

// RecordCacheHit records a plan cache hit.
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context, alg search.Algorithm) {
	mp.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("search.algorithm", string(alg))))
}

// RecordCacheMiss records a plan cache miss.
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context, alg search.Algorithm) {
	mp.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("search.algorithm", string(alg))))
}

// RecordCacheError records a failed cache operation.
func (mp *MetricsProvider) RecordCacheError(ctx context.Context, operation string) {
	mp.cacheErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.operation", operation)))
}

// IncrementActiveRuns increments the active runs counter.
func (mp *MetricsProvider) IncrementActiveRuns(ctx context.Context) {
	mp.activeRuns.Add(ctx, 1)
}

// DecrementActiveRuns decrements the active runs counter.
func (mp *MetricsProvider) DecrementActiveRuns(ctx context.Context) {
	mp.activeRuns.Add(ctx, -1)
}

// RecordCircuitBreakerStateChange records a circuit breaker opening or closing.
func (mp *MetricsProvider) RecordCircuitBreakerStateChange(ctx context.Context, backend string, isOpen bool) {
	delta := int64(-1)
	if isOpen {
		delta = 1
	}
	mp.circuitBreakerOpen.Add(ctx, delta, metric.WithAttributes(attribute.String("cache.backend", backend)))
}

// NoopMetricsProvider is a no-op metrics provider for when metrics are disabled.
type NoopMetricsProvider struct{}

func (NoopMetricsProvider) RecordSearch(context.Context, search.Algorithm, search.Result, time.Duration) {
}
func (NoopMetricsProvider) RecordRun(context.Context, string, bool)                       {}
func (NoopMetricsProvider) RecordCacheHit(context.Context, search.Algorithm)              {}
func (NoopMetricsProvider) RecordCacheMiss(context.Context, search.Algorithm)             {}
func (NoopMetricsProvider) RecordCacheError(context.Context, string)                      {}
func (NoopMetricsProvider) IncrementActiveRuns(context.Context)                           {}
func (NoopMetricsProvider) DecrementActiveRuns(context.Context)                           {}
func (NoopMetricsProvider) RecordCircuitBreakerStateChange(context.Context, string, bool) {}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = NoopMetricsProvider{}
)

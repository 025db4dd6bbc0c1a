package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/gridplan/application"
	"github.com/felixgeelhaar/gridplan/domain/cache"
	domainconfig "github.com/felixgeelhaar/gridplan/domain/config"
	"github.com/felixgeelhaar/gridplan/domain/run"
	"github.com/felixgeelhaar/gridplan/infrastructure/logging"
	"github.com/felixgeelhaar/gridplan/infrastructure/observability"
	"github.com/felixgeelhaar/gridplan/infrastructure/resilience"
	badgerstore "github.com/felixgeelhaar/gridplan/infrastructure/storage/badger"
	"github.com/felixgeelhaar/gridplan/infrastructure/storage/memory"
	redisstore "github.com/felixgeelhaar/gridplan/infrastructure/storage/redis"
	sqlitestore "github.com/felixgeelhaar/gridplan/infrastructure/storage/sqlite"
	"github.com/felixgeelhaar/gridplan/infrastructure/telemetry"
)

// ErrHistoryDisabled is returned by history commands when no store is configured.
var ErrHistoryDisabled = errors.New("run history is disabled (set history.backend)")

// ErrCacheDisabled is returned by cache commands when no backend is configured.
var ErrCacheDisabled = errors.New("plan cache is disabled (set cache.backend or --cache)")

// components holds everything a planning command needs, built from config.
type components struct {
	service  *application.Service
	cache    cache.Cache
	history  run.Store
	provider *observability.Provider
	closers  []func() error
}

// build assembles the service and its collaborators from the loaded config.
func (a *App) build() (*components, error) {
	cfg := a.config
	c := &components{}

	provider, err := a.buildProvider(cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	c.provider = provider

	var metrics telemetry.Metrics = telemetry.NoopMetricsProvider{}
	if cfg.Telemetry.Metrics {
		mp := telemetry.NewMetricsProvider(telemetry.MetricsConfig{
			MeterName:     "github.com/felixgeelhaar/gridplan",
			MeterVersion:  Version,
			MeterProvider: provider.MeterProvider(),
		})
		if err := mp.Error(); err != nil {
			logging.Warn().Add(logging.ErrorField(err)).Msg("metrics unavailable")
		} else {
			metrics = mp
		}
	}

	// Cache construction failures degrade to planning without a cache.
	pc, err := c.openCache(cfg.Cache, metrics)
	if err != nil {
		logging.Warn().
			Add(logging.Str("backend", cfg.Cache.Backend)).
			Add(logging.ErrorField(err)).
			Msg("plan cache unavailable, continuing without it")
	}
	c.cache = pc

	history, err := c.openHistory(cfg.History)
	if err != nil {
		return nil, errors.Join(err, c.close(context.Background()))
	}
	c.history = history

	opts := []application.Option{
		application.WithMetrics(metrics),
		application.WithTracer(provider.Tracer()),
		application.WithCacheTTL(cfg.Cache.TTL.Duration()),
	}
	if c.cache != nil {
		opts = append(opts, application.WithCache(c.cache))
	}
	if c.history != nil {
		opts = append(opts, application.WithHistory(c.history))
	}
	c.service = application.NewServiceWithOptions(opts...)

	return c, nil
}

func (a *App) buildProvider(cfg domainconfig.TelemetryConfig) (*observability.Provider, error) {
	opts := []observability.Option{
		observability.WithServiceVersion(Version),
		observability.WithExporter(observability.ExporterType(cfg.Tracing.Exporter), cfg.Tracing.Endpoint),
		observability.WithInsecure(cfg.Tracing.Insecure),
		observability.WithWriter(a.stderr),
		observability.WithMetrics(cfg.Metrics),
	}
	// Zero means unset; sample everything.
	if cfg.Tracing.SampleRate > 0 {
		opts = append(opts, observability.WithSampleRate(cfg.Tracing.SampleRate))
	}

	provider, err := observability.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	return provider, nil
}

// openCache opens the configured backend. Remote and file-locked backends are
// wrapped with retry and circuit breaking.
func (c *components) openCache(cfg domainconfig.CacheConfig, metrics telemetry.Metrics) (cache.Cache, error) {
	var (
		inner   cache.Cache
		wrap    bool
		closeFn func() error
	)

	switch cfg.Backend {
	case "", domainconfig.BackendNone:
		return nil, nil

	case domainconfig.BackendMemory:
		return memory.NewCache(memory.WithMaxSize(cfg.MaxSize)), nil

	case domainconfig.BackendBadger:
		dir := filepath.Join(cfg.Dir, "badger")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		bc, err := badgerstore.NewCache(badgerstore.DefaultConfig(),
			badgerstore.WithDir(dir),
			badgerstore.WithKeyPrefix(cfg.KeyPrefix),
		)
		if err != nil {
			return nil, err
		}
		inner, closeFn = bc, bc.Close

	case domainconfig.BackendSQLite:
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		sc, err := sqlitestore.NewCache(sqlitestore.DefaultConfig(),
			sqlitestore.WithPath(filepath.Join(cfg.Dir, "cache.db")),
			sqlitestore.WithKeyPrefix(cfg.KeyPrefix),
		)
		if err != nil {
			return nil, err
		}
		inner, closeFn, wrap = sc, sc.Close, true

	case domainconfig.BackendRedis:
		rc, err := redisstore.NewCache(redisstore.DefaultConfig(),
			redisstore.WithAddress(cfg.Redis.Address),
			redisstore.WithPassword(cfg.Redis.Password),
			redisstore.WithDB(cfg.Redis.DB),
			redisstore.WithKeyPrefix(cfg.KeyPrefix),
		)
		if err != nil {
			return nil, err
		}
		inner, closeFn, wrap = rc, rc.Close, true

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}

	c.closers = append(c.closers, closeFn)
	if !wrap {
		return inner, nil
	}

	rc := resilience.New(inner,
		resilience.WithRetryAttempts(cfg.Resilience.MaxAttempts),
		resilience.WithRetryDelay(cfg.Resilience.InitialDelay.Duration()),
		resilience.WithFailureThreshold(cfg.Resilience.FailureThreshold),
		resilience.WithOpenTimeout(cfg.Resilience.OpenTimeout.Duration()),
	)
	backend := cfg.Backend
	rc.OnStateChange(func(open bool) {
		metrics.RecordCircuitBreakerStateChange(context.Background(), backend, open)
		logging.Warn().
			Add(logging.Str("backend", backend)).
			Add(logging.Str("circuit", rc.CircuitBreakerState().String())).
			Msg("plan cache circuit changed")
	})
	return rc, nil
}

func (c *components) openHistory(cfg domainconfig.HistoryConfig) (run.Store, error) {
	switch cfg.Backend {
	case "", domainconfig.BackendNone:
		return nil, nil

	case domainconfig.BackendMemory:
		return memory.NewRunStore(), nil

	case domainconfig.BackendSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
		store, err := sqlitestore.NewRunStore(sqlitestore.DefaultConfig(), sqlitestore.WithPath(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
		c.closers = append(c.closers, store.Close)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// close flushes telemetry and releases storage.
func (c *components) close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if c.provider != nil {
		if err := c.provider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

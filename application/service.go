// Package application coordinates planning runs: world loading, plan cache,
// search, run lifecycle, history and telemetry.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/felixgeelhaar/gridplan/domain/cache"
	"github.com/felixgeelhaar/gridplan/domain/grid"
	"github.com/felixgeelhaar/gridplan/domain/run"
	"github.com/felixgeelhaar/gridplan/domain/search"
	"github.com/felixgeelhaar/gridplan/infrastructure/logging"
	"github.com/felixgeelhaar/gridplan/infrastructure/planner"
	"github.com/felixgeelhaar/gridplan/infrastructure/statemachine"
	"github.com/felixgeelhaar/gridplan/infrastructure/telemetry"
	"github.com/felixgeelhaar/gridplan/infrastructure/world"
)

// Service plans over worlds and records each request as a run.
// It is safe for concurrent use; every call owns its search state.
type Service struct {
	registry *planner.Registry
	cache    cache.Cache
	cacheTTL time.Duration
	history  run.Store
	metrics  telemetry.Metrics
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

// ServiceConfig contains configuration for the service.
type ServiceConfig struct {
	Registry    *planner.Registry
	Cache       cache.Cache
	CacheTTL    time.Duration
	History     run.Store
	Metrics     telemetry.Metrics
	Tracer      trace.Tracer
	Clock       func() time.Time
	IDGenerator func() string
}

// NewService creates a service, filling unset collaborators with defaults.
// Cache and History stay disabled when nil.
func NewService(config ServiceConfig) *Service {
	s := &Service{
		registry: config.Registry,
		cache:    config.Cache,
		cacheTTL: config.CacheTTL,
		history:  config.History,
		metrics:  config.Metrics,
		tracer:   config.Tracer,
		now:      config.Clock,
		newID:    config.IDGenerator,
	}

	if s.registry == nil {
		s.registry = planner.DefaultRegistry()
	}
	if s.metrics == nil {
		s.metrics = telemetry.NoopMetricsProvider{}
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("gridplan")
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Algorithms lists the registered strategy names.
func (s *Service) Algorithms() []search.Algorithm {
	return s.registry.Algorithms()
}

// Plan searches an in-memory world.
func (s *Service) Plan(ctx context.Context, w grid.World, alg search.Algorithm) (*run.Run, error) {
	strategy, err := s.registry.Lookup(alg)
	if err != nil {
		return nil, err
	}

	_, interp, err := s.begin(ctx, alg)
	if err != nil {
		return nil, err
	}
	defer s.metrics.DecrementActiveRuns(ctx)

	return s.execute(ctx, interp, w, strategy)
}

// PlanFile loads a world file and searches it. Load failures end the run as
// failed and are returned.
func (s *Service) PlanFile(ctx context.Context, path string, alg search.Algorithm) (*run.Run, error) {
	strategy, err := s.registry.Lookup(alg)
	if err != nil {
		return nil, err
	}

	r, interp, err := s.begin(ctx, alg)
	if err != nil {
		return nil, err
	}
	defer s.metrics.DecrementActiveRuns(ctx)
	r.WorldPath = path

	if err := interp.Transition(run.StatusLoading, "load world"); err != nil {
		return r, err
	}

	w, err := world.LoadFile(path)
	if err != nil {
		return r, s.fail(ctx, interp, fmt.Errorf("load %s: %w", path, err))
	}

	return s.execute(ctx, interp, w, strategy)
}

// begin creates a pending run bound to a fresh lifecycle machine.
func (s *Service) begin(ctx context.Context, alg search.Algorithm) (*run.Run, *statemachine.Interpreter, error) {
	machine, err := statemachine.NewRunMachine()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create state machine: %w", err)
	}

	r := run.NewRun(s.newID(), alg, s.now())
	interp := statemachine.NewInterpreter(machine, statemachine.NewContext(r, s.now))
	interp.Start()

	s.metrics.IncrementActiveRuns(ctx)

	logging.Debug().
		Add(logging.RunID(r.ID)).
		Add(logging.Algorithm(alg)).
		Msg("run started")

	return r, interp, nil
}

func (s *Service) execute(ctx context.Context, interp *statemachine.Interpreter, w grid.World, strategy search.Strategy) (*run.Run, error) {
	r := interp.Context().Run
	r.Fingerprint = w.Fingerprint()

	ctx, span := s.tracer.Start(ctx, "gridplan.plan", trace.WithAttributes(
		attribute.String("run.id", r.ID),
		attribute.String("search.algorithm", string(r.Algorithm)),
		attribute.String("world.fingerprint", r.Fingerprint),
		attribute.Int("world.rows", w.Rows),
		attribute.Int("world.cols", w.Cols),
		attribute.Int("world.dirty", w.Dirty.Len()),
	))
	defer span.End()

	if err := interp.Transition(run.StatusSearching, "search"); err != nil {
		return r, err
	}

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cancelled")
		return r, s.fail(ctx, interp, err)
	}

	result, cached := s.lookup(ctx, w, r.Algorithm, r.Fingerprint)
	if !cached {
		start := time.Now()
		result = strategy.Search(w)
		s.metrics.RecordSearch(ctx, r.Algorithm, result, time.Since(start))
		s.store(ctx, r.Algorithm, r.Fingerprint, result)
	}

	r.Result = result
	r.Cached = cached
	if err := interp.Transition(run.OutcomeStatus(result), "search finished"); err != nil {
		return r, err
	}

	span.SetAttributes(
		attribute.Bool("search.found", result.Found),
		attribute.Bool("search.cached", cached),
		attribute.Int("search.nodes_generated", result.Generated),
		attribute.Int("search.nodes_expanded", result.Expanded),
		attribute.Int("search.plan_length", result.Cost()),
	)

	s.finish(ctx, r)
	return r, nil
}

// lookup returns a cached result for the world, verifying found plans by replay.
func (s *Service) lookup(ctx context.Context, w grid.World, alg search.Algorithm, fingerprint string) (search.Result, bool) {
	if s.cache == nil {
		return search.Result{}, false
	}

	key := cache.Key(alg, fingerprint)
	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.metrics.RecordCacheError(ctx, "get")
		logging.Warn().
			Add(logging.CacheKey(key)).
			Add(logging.ErrorField(err)).
			Msg("plan cache read failed")
		return search.Result{}, false
	}
	if !found {
		s.metrics.RecordCacheMiss(ctx, alg)
		return search.Result{}, false
	}

	entry, err := cache.DecodeEntry(data, alg, fingerprint)
	if err == nil && entry.Result.Found {
		err = search.Verify(w, entry.Result.Plan)
	}
	if err != nil {
		s.metrics.RecordCacheMiss(ctx, alg)
		logging.Warn().
			Add(logging.CacheKey(key)).
			Add(logging.ErrorField(err)).
			Msg("discarding invalid cached plan")
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			s.metrics.RecordCacheError(ctx, "delete")
		}
		return search.Result{}, false
	}

	s.metrics.RecordCacheHit(ctx, alg)
	logging.Debug().
		Add(logging.CacheKey(key)).
		Add(logging.SearchResult(entry.Result)).
		Msg("plan cache hit")
	return entry.Result, true
}

func (s *Service) store(ctx context.Context, alg search.Algorithm, fingerprint string, result search.Result) {
	if s.cache == nil {
		return
	}

	key := cache.Key(alg, fingerprint)
	entry := cache.Entry{Algorithm: alg, Fingerprint: fingerprint, Result: result, StoredAt: s.now()}

	data, err := entry.Encode()
	if err == nil {
		err = s.cache.Set(ctx, key, data, cache.SetOptions{TTL: s.cacheTTL})
	}
	if err != nil {
		s.metrics.RecordCacheError(ctx, "set")
		logging.Warn().
			Add(logging.CacheKey(key)).
			Add(logging.ErrorField(err)).
			Msg("plan cache write failed")
	}
}

// fail moves the run to failed, records it, and returns cause.
func (s *Service) fail(ctx context.Context, interp *statemachine.Interpreter, cause error) error {
	r := interp.Context().Run
	r.Error = cause.Error()
	if err := interp.Transition(run.StatusFailed, cause.Error()); err != nil {
		return errors.Join(cause, err)
	}

	logging.Error().
		Add(logging.RunID(r.ID)).
		Add(logging.ErrorField(cause)).
		Msg("run failed")

	s.finish(ctx, r)
	return cause
}

// finish records a terminal run in metrics and history.
func (s *Service) finish(ctx context.Context, r *run.Run) {
	s.metrics.RecordRun(ctx, string(r.Status), r.Cached)

	if s.history != nil {
		// Persist even when the request context was cancelled.
		saveCtx := context.WithoutCancel(ctx)
		if err := s.history.Save(saveCtx, r); err != nil {
			logging.Warn().
				Add(logging.RunID(r.ID)).
				Add(logging.ErrorField(err)).
				Msg("failed to record run history")
		}
	}

	logging.Info().
		Add(logging.RunID(r.ID)).
		Add(logging.Status(r.Status)).
		Add(logging.SearchResult(r.Result)).
		Add(logging.Cached(r.Cached)).
		Add(logging.Duration(r.Duration())).
		Msg("run finished")
}

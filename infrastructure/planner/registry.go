package planner

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/felixgeelhaar/gridplan/domain/search"
)

// ErrStrategyExists is returned when registering a name twice.
var ErrStrategyExists = errors.New("strategy already registered")

// Registry maps algorithm names to strategies.
type Registry struct {
	strategies map[search.Algorithm]search.Strategy
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[search.Algorithm]search.Strategy),
	}
}

// DefaultRegistry returns a registry holding both built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(NewUniformCost())
	_ = r.Register(NewDepthFirst())
	return r
}

// Register adds a strategy under its algorithm name.
func (r *Registry) Register(s search.Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[s.Algorithm()]; exists {
		return fmt.Errorf("%w: %s", ErrStrategyExists, s.Algorithm())
	}
	r.strategies[s.Algorithm()] = s
	return nil
}

// Lookup returns the strategy registered for alg.
func (r *Registry) Lookup(alg search.Algorithm) (search.Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[alg]
	if !ok {
		return nil, fmt.Errorf("%w %q", search.ErrUnknownAlgorithm, alg)
	}
	return s, nil
}

// Algorithms returns the registered names in sorted order.
func (r *Registry) Algorithms() []search.Algorithm {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]search.Algorithm, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Package search defines the contracts shared by the planning strategies.
package search

import (
	"fmt"

	"github.com/felixgeelhaar/gridplan/domain/grid"
)

// Algorithm identifies a search strategy by its command-line name.
type Algorithm string

// Supported algorithms.
const (
	DepthFirst  Algorithm = "depth-first"
	UniformCost Algorithm = "uniform-cost"
)

// Algorithms returns every supported algorithm in stable order.
func Algorithms() []Algorithm {
	return []Algorithm{UniformCost, DepthFirst}
}

// IsValid returns true if the algorithm is supported.
func (a Algorithm) IsValid() bool {
	return a == DepthFirst || a == UniformCost
}

// String returns the algorithm name.
func (a Algorithm) String() string {
	return string(a)
}

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(name)
	if !a.IsValid() {
		return "", fmt.Errorf("%w %q (use %s or %s)", ErrUnknownAlgorithm, name, UniformCost, DepthFirst)
	}
	return a, nil
}

// Strategy plans over a world.
//
// Search is a pure function of its input: counters and bookkeeping live only
// for the duration of one call, so a Strategy may be used concurrently.
type Strategy interface {
	// Algorithm returns the strategy's name.
	Algorithm() Algorithm

	// Search runs to completion and returns the plan and effort counters.
	Search(w grid.World) Result
}

// Result is the outcome of a search.
type Result struct {
	// Plan is the action sequence from the start state to a goal state.
	// It is empty both for an already-clean world and when Found is false.
	Plan []grid.Action `json:"plan"`

	// Found is false when no plan exists. This is a normal outcome, not an error.
	Found bool `json:"found"`

	// Generated counts states placed on the frontier, including the start state.
	Generated int `json:"nodes_generated"`

	// Expanded counts states popped and processed, excluding discarded entries.
	Expanded int `json:"nodes_expanded"`
}

// Cost returns the plan cost under unit action costs.
func (r Result) Cost() int {
	return len(r.Plan)
}

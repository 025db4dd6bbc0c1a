package planner

import (
	"github.com/felixgeelhaar/gridplan/domain/grid"
	"github.com/felixgeelhaar/gridplan/domain/search"
)

// DepthFirst is an exhaustive depth-first search with an explicit stack and a
// visited set. It returns the first plan found, which need not be shortest.
type DepthFirst struct{}

// NewDepthFirst creates a depth-first strategy.
func NewDepthFirst() *DepthFirst {
	return &DepthFirst{}
}

// Algorithm implements search.Strategy.
func (*DepthFirst) Algorithm() search.Algorithm {
	return search.DepthFirst
}

// Search implements search.Strategy.
//
// A popped state that was already expanded is discarded without counting.
// Successors are pushed in reverse canonical order so they pop in canonical
// order, and every push counts as generated even if the state is later found
// visited.
func (*DepthFirst) Search(w grid.World) search.Result {
	stack := []*node{rootNode(w.StartState())}
	visited := make(map[grid.StateKey]struct{})
	generated, expanded := 1, 0

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack[len(stack)-1] = nil
		stack = stack[:len(stack)-1]

		key := n.state.Key()
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		expanded++

		if n.state.IsGoal() {
			return search.Result{
				Plan:      n.plan(),
				Found:     true,
				Generated: generated,
				Expanded:  expanded,
			}
		}

		succ := grid.Successors(w, n.state)
		for i := len(succ) - 1; i >= 0; i-- {
			stack = append(stack, n.child(succ[i]))
			generated++
		}
	}

	return search.Result{Generated: generated, Expanded: expanded}
}

var _ search.Strategy = (*DepthFirst)(nil)

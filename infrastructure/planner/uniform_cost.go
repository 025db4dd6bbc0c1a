package planner

import (
	"github.com/felixgeelhaar/gridplan/domain/grid"
	"github.com/felixgeelhaar/gridplan/domain/search"
)

// stepCost is the cost of every action.
const stepCost = 1

// UniformCost is a cost-optimal search over unit-cost actions. Cost ties are
// broken by insertion order, so output does not depend on heap internals.
type UniformCost struct{}

// NewUniformCost creates a uniform-cost strategy.
func NewUniformCost() *UniformCost {
	return &UniformCost{}
}

// Algorithm implements search.Strategy.
func (*UniformCost) Algorithm() search.Algorithm {
	return search.UniformCost
}

// Search implements search.Strategy.
//
// An entry whose cost exceeds the best known cost for its state is stale and
// is dropped without counting as expanded. A successor is pushed, and counted
// as generated, only when it has no known cost or the new cost is strictly
// lower.
func (*UniformCost) Search(w grid.World) search.Result {
	start := w.StartState()
	open := newFrontier()
	open.push(0, rootNode(start))
	best := map[grid.StateKey]int{start.Key(): 0}
	generated, expanded := 1, 0

	for open.len() > 0 {
		entry := open.pop()
		n := entry.node

		if entry.cost > best[n.state.Key()] {
			continue
		}
		expanded++

		if n.state.IsGoal() {
			return search.Result{
				Plan:      n.plan(),
				Found:     true,
				Generated: generated,
				Expanded:  expanded,
			}
		}

		for _, t := range grid.Successors(w, n.state) {
			cost := entry.cost + stepCost
			key := t.State.Key()
			if prev, known := best[key]; known && cost >= prev {
				continue
			}
			best[key] = cost
			open.push(cost, n.child(t))
			generated++
		}
	}

	return search.Result{Generated: generated, Expanded: expanded}
}

var _ search.Strategy = (*UniformCost)(nil)

// Package planner provides the search strategies that turn a vacuum world
// into a plan: depth-first search and uniform-cost search.
package planner

import (
	"slices"

	"github.com/felixgeelhaar/gridplan/domain/grid"
)

// node is a search-tree node. Paths are shared between siblings through the
// parent link and materialized only when a goal is reached.
type node struct {
	state  grid.State
	action grid.Action
	parent *node
	depth  int
}

func rootNode(s grid.State) *node {
	return &node{state: s}
}

func (n *node) child(t grid.Transition) *node {
	return &node{
		state:  t.State,
		action: t.Action,
		parent: n,
		depth:  n.depth + 1,
	}
}

// plan walks back to the root and returns the actions in forward order.
func (n *node) plan() []grid.Action {
	actions := make([]grid.Action, 0, n.depth)
	for cur := n; cur.parent != nil; cur = cur.parent {
		actions = append(actions, cur.action)
	}
	slices.Reverse(actions)
	return actions
}

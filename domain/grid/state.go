package grid

import "fmt"

// State is a planning state: where the agent stands and which cells remain
// dirty. States are values; transitions always produce a new State.
type State struct {
	Pos   Coord
	Dirty DirtySet
}

// StateKey is the comparable identity of a State. Two states reached along
// different paths but holding the same position and dirty cells share a key.
type StateKey struct {
	Pos   Coord
	Dirty string
}

// Key returns the structural identity of the state for visited sets and
// best-cost maps.
func (s State) Key() StateKey {
	return StateKey{Pos: s.Pos, Dirty: s.Dirty.Key()}
}

// IsGoal reports whether no dirty cells remain.
func (s State) IsGoal() bool {
	return s.Dirty.IsEmpty()
}

// String returns a debug representation of the state.
func (s State) String() string {
	return fmt.Sprintf("%s dirty=%s", s.Pos, s.Dirty)
}

// IsGoal reports whether s is a goal state.
func IsGoal(s State) bool {
	return s.IsGoal()
}

package grid

// Transition pairs an action with the state it produces.
type Transition struct {
	Action Action
	State  State
}

// Successors returns the legal transitions from s in canonical order: vacuum
// (only when standing on a dirty cell), then north, south, east, west (only
// when the destination is on the grid and not blocked).
//
// Successors never fails; an action whose precondition does not hold is
// omitted.
func Successors(w World, s State) []Transition {
	out := make([]Transition, 0, 5)

	if s.Dirty.Contains(s.Pos) {
		out = append(out, Transition{
			Action: Vacuum,
			State:  State{Pos: s.Pos, Dirty: s.Dirty.Without(s.Pos)},
		})
	}

	for _, a := range [...]Action{North, South, East, West} {
		dRow, dCol := a.delta()
		next := s.Pos.Offset(dRow, dCol)
		if !w.IsOpen(next) {
			continue
		}
		out = append(out, Transition{
			Action: a,
			State:  State{Pos: next, Dirty: s.Dirty},
		})
	}

	return out
}

// Apply performs a single action from s. It reports false when the action's
// precondition does not hold in w.
func Apply(w World, s State, a Action) (State, bool) {
	switch {
	case a == Vacuum:
		if !s.Dirty.Contains(s.Pos) {
			return s, false
		}
		return State{Pos: s.Pos, Dirty: s.Dirty.Without(s.Pos)}, true
	case a.IsMove():
		dRow, dCol := a.delta()
		next := s.Pos.Offset(dRow, dCol)
		if !w.IsOpen(next) {
			return s, false
		}
		return State{Pos: next, Dirty: s.Dirty}, true
	default:
		return s, false
	}
}

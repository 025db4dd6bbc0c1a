package search

import (
	"fmt"

	"github.com/felixgeelhaar/gridplan/domain/grid"
)

// Replay applies a plan to the world's start state and returns the state it
// reaches. It fails with ErrIllegalAction at the first action whose
// precondition does not hold.
func Replay(w grid.World, plan []grid.Action) (grid.State, error) {
	s := w.StartState()
	for i, a := range plan {
		next, ok := grid.Apply(w, s, a)
		if !ok {
			return s, fmt.Errorf("%w: step %d %s at %s", ErrIllegalAction, i, a.Name(), s.Pos)
		}
		s = next
	}
	return s, nil
}

// Verify checks that a plan is legal and leaves no dirty cells.
func Verify(w grid.World, plan []grid.Action) error {
	s, err := Replay(w, plan)
	if err != nil {
		return err
	}
	if !s.IsGoal() {
		return fmt.Errorf("%w: %d dirty cells remain", ErrPlanIncomplete, s.Dirty.Len())
	}
	return nil
}

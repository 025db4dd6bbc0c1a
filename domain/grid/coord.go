// Package grid provides the planning model for the vacuum world: coordinates,
// dirty-cell sets, planning states, and the transition rules between them.
package grid

import "fmt"

// Coord is a (row, column) cell position. It is a comparable value type and
// may be used directly as a map key.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// At is shorthand for Coord{Row: row, Col: col}.
func At(row, col int) Coord {
	return Coord{Row: row, Col: col}
}

// Offset returns the coordinate shifted by the given deltas.
func (c Coord) Offset(dRow, dCol int) Coord {
	return Coord{Row: c.Row + dRow, Col: c.Col + dCol}
}

// String returns the coordinate as "(row,col)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// compareCoords orders coordinates row-major.
func compareCoords(a, b Coord) int {
	if a.Row != b.Row {
		if a.Row < b.Row {
			return -1
		}
		return 1
	}
	if a.Col != b.Col {
		if a.Col < b.Col {
			return -1
		}
		return 1
	}
	return 0
}

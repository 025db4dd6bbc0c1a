package grid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// World is a parsed vacuum world. It is read-only once built and may be shared
// between concurrent searches.
//
// Callers must supply a validated world: Start is in bounds and not blocked,
// and every blocked or dirty coordinate lies within [0,Rows)x[0,Cols).
type World struct {
	Rows    int
	Cols    int
	Blocked map[Coord]struct{}
	Start   Coord
	Dirty   DirtySet
}

// NewWorld builds a world from coordinate lists.
func NewWorld(rows, cols int, start Coord, blocked, dirty []Coord) World {
	b := make(map[Coord]struct{}, len(blocked))
	for _, c := range blocked {
		b[c] = struct{}{}
	}
	return World{
		Rows:    rows,
		Cols:    cols,
		Blocked: b,
		Start:   start,
		Dirty:   NewDirtySet(dirty...),
	}
}

// InBounds reports whether c lies on the grid.
func (w World) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < w.Rows && c.Col >= 0 && c.Col < w.Cols
}

// IsBlocked reports whether c is a blocked cell.
func (w World) IsBlocked(c Coord) bool {
	_, blocked := w.Blocked[c]
	return blocked
}

// IsOpen reports whether the agent may stand on c.
func (w World) IsOpen(c Coord) bool {
	return w.InBounds(c) && !w.IsBlocked(c)
}

// StartState returns the root planning state.
func (w World) StartState() State {
	return State{Pos: w.Start, Dirty: w.Dirty}
}

// BlockedCoords returns the blocked cells in row-major order.
func (w World) BlockedCoords() []Coord {
	coords := slices.Collect(maps.Keys(w.Blocked))
	slices.SortFunc(coords, compareCoords)
	return coords
}

// Fingerprint returns a stable hex digest of the world contents. Worlds with
// the same dimensions, start, blocked cells and dirty cells share a
// fingerprint.
func (w World) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dx%d@%d,%d|", w.Rows, w.Cols, w.Start.Row, w.Start.Col)
	for _, c := range w.BlockedCoords() {
		fmt.Fprintf(&b, "%d,%d;", c.Row, c.Col)
	}
	b.WriteByte('|')
	b.WriteString(w.Dirty.Key())

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

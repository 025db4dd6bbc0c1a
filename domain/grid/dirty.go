package grid

import (
	"slices"
	"strconv"
	"strings"
)

// DirtySet is an immutable set of coordinates that still need cleaning.
//
// Contents are kept sorted and de-duplicated, and a canonical key is computed
// once at construction. Two sets holding the same coordinates always have the
// same key regardless of the order they were built in. The zero value is the
// empty set.
type DirtySet struct {
	coords []Coord
	key    string
}

// NewDirtySet builds a set from the given coordinates. Duplicates collapse.
func NewDirtySet(coords ...Coord) DirtySet {
	if len(coords) == 0 {
		return DirtySet{}
	}
	sorted := slices.Clone(coords)
	slices.SortFunc(sorted, compareCoords)
	sorted = slices.Compact(sorted)
	return DirtySet{coords: sorted, key: canonicalKey(sorted)}
}

// Len returns the number of dirty cells.
func (d DirtySet) Len() int {
	return len(d.coords)
}

// IsEmpty reports whether every cell has been cleaned.
func (d DirtySet) IsEmpty() bool {
	return len(d.coords) == 0
}

// Contains reports whether c is dirty.
func (d DirtySet) Contains(c Coord) bool {
	_, found := slices.BinarySearchFunc(d.coords, c, compareCoords)
	return found
}

// Without returns a new set with c removed. The receiver is not modified.
// If c is not in the set the receiver is returned as is.
func (d DirtySet) Without(c Coord) DirtySet {
	i, found := slices.BinarySearchFunc(d.coords, c, compareCoords)
	if !found {
		return d
	}
	if len(d.coords) == 1 {
		return DirtySet{}
	}
	rest := make([]Coord, 0, len(d.coords)-1)
	rest = append(rest, d.coords[:i]...)
	rest = append(rest, d.coords[i+1:]...)
	return DirtySet{coords: rest, key: canonicalKey(rest)}
}

// Coords returns the dirty cells in row-major order. The slice is a copy.
func (d DirtySet) Coords() []Coord {
	return slices.Clone(d.coords)
}

// Key returns the canonical form of the set contents. Equal sets have equal keys.
func (d DirtySet) Key() string {
	return d.key
}

// Equal reports whether both sets hold the same coordinates.
func (d DirtySet) Equal(other DirtySet) bool {
	return d.key == other.key
}

// String renders the set as "{(r,c) (r,c)}".
func (d DirtySet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range d.coords {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
	}
	b.WriteByte('}')
	return b.String()
}

func canonicalKey(sorted []Coord) string {
	var b strings.Builder
	b.Grow(len(sorted) * 6)
	for _, c := range sorted {
		b.WriteString(strconv.Itoa(c.Row))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(c.Col))
		b.WriteByte(';')
	}
	return b.String()
}

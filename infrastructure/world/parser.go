// Package world reads and writes vacuum world descriptions.
//
// A world file holds the column count, the row count, and then one line per
// grid row:
//
//	3
//	2
//	@_*
//	#*_
//
// Cells are '@' (start), '*' (dirty), '#' (blocked), and '_' or '.' (free).
// Blank lines and surrounding whitespace are ignored.
package world

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/gridplan/domain/grid"
)

// Cell characters.
const (
	CellStart   = '@'
	CellDirty   = '*'
	CellBlocked = '#'
	CellFree    = '_'
	CellFreeAlt = '.'
)

// LoadFile reads and parses a world file.
func LoadFile(path string) (grid.World, error) {
	f, err := os.Open(path)
	if err != nil {
		return grid.World{}, fmt.Errorf("failed to open world file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and parses a world description.
func Parse(r io.Reader) (grid.World, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return grid.World{}, fmt.Errorf("failed to read world: %w", err)
	}

	text, err := Decode(data)
	if err != nil {
		return grid.World{}, err
	}

	return ParseString(text)
}

// ParseString parses an already decoded world description.
func ParseString(text string) (grid.World, error) {
	lines := nonBlankLines(text)
	if len(lines) < 2 {
		return grid.World{}, grid.ErrWorldTooShort
	}

	cols, err := parseDimension("columns", lines[0])
	if err != nil {
		return grid.World{}, err
	}
	rows, err := parseDimension("rows", lines[1])
	if err != nil {
		return grid.World{}, err
	}

	gridLines := lines[2:]
	if len(gridLines) < rows {
		return grid.World{}, fmt.Errorf("%w: declared %d, found %d", grid.ErrRowCount, rows, len(gridLines))
	}
	gridLines = gridLines[:rows]

	var (
		start    grid.Coord
		hasStart bool
		blocked  []grid.Coord
		dirty    []grid.Coord
	)
	for r, line := range gridLines {
		cells := []rune(line)
		if len(cells) != cols {
			return grid.World{}, fmt.Errorf("%w: row %d length %d != cols %d", grid.ErrRowLength, r, len(cells), cols)
		}
		for c, ch := range cells {
			switch ch {
			case CellStart:
				if hasStart {
					return grid.World{}, fmt.Errorf("%w: %s and %s", grid.ErrMultipleStarts, start, grid.At(r, c))
				}
				start, hasStart = grid.At(r, c), true
			case CellDirty:
				dirty = append(dirty, grid.At(r, c))
			case CellBlocked:
				blocked = append(blocked, grid.At(r, c))
			case CellFree, CellFreeAlt:
			default:
				return grid.World{}, fmt.Errorf("%w '%c' at (%d,%d)", grid.ErrUnknownCell, ch, r, c)
			}
		}
	}
	if !hasStart {
		return grid.World{}, grid.ErrNoStart
	}

	return grid.NewWorld(rows, cols, start, blocked, dirty), nil
}

// nonBlankLines splits on any line boundary and drops blank lines.
func nonBlankLines(text string) []string {
	raw := strings.FieldsFunc(text, isLineBreak)
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	default:
		return false
	}
}

// parseDimension reads a header count, ignoring any non-digit characters.
func parseDimension(name, line string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, line)
	if digits == "" {
		return 0, fmt.Errorf("%w: no %s count in %q", grid.ErrInvalidHeader, name, line)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %s count %q: %v", grid.ErrInvalidHeader, name, digits, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s count must be positive, got %d", grid.ErrInvalidHeader, name, n)
	}
	return n, nil
}

// Format renders a world in the file format accepted by Parse. The file
// format cannot mark the start cell as dirty, so a dirty start is written as
// a plain start.
func Format(w grid.World) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n%d\n", w.Cols, w.Rows)
	for r := range w.Rows {
		for c := range w.Cols {
			cell := grid.At(r, c)
			switch {
			case cell == w.Start:
				b.WriteRune(CellStart)
			case w.IsBlocked(cell):
				b.WriteRune(CellBlocked)
			case w.Dirty.Contains(cell):
				b.WriteRune(CellDirty)
			default:
				b.WriteRune(CellFree)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

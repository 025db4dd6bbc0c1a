package grid

import "errors"

// Domain errors for the grid model and world descriptions.
var (
	// ErrUnknownAction indicates an action token or value is not recognized.
	ErrUnknownAction = errors.New("unknown action")

	// ErrWorldTooShort indicates the world description lacks the two header lines.
	ErrWorldTooShort = errors.New("world file too short")

	// ErrInvalidHeader indicates a column or row count could not be read.
	ErrInvalidHeader = errors.New("invalid world header")

	// ErrRowCount indicates the number of grid lines differs from the declared rows.
	ErrRowCount = errors.New("mismatch in declared rows vs provided rows")

	// ErrRowLength indicates a grid line differs from the declared columns.
	ErrRowLength = errors.New("row length does not match declared columns")

	// ErrUnknownCell indicates an unrecognized cell character.
	ErrUnknownCell = errors.New("unknown cell character")

	// ErrNoStart indicates the grid has no start cell.
	ErrNoStart = errors.New("no start '@' found")

	// ErrMultipleStarts indicates the grid has more than one start cell.
	ErrMultipleStarts = errors.New("multiple start cells found")
)

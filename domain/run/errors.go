package run

import "errors"

// Domain errors for planning runs and run history.
var (
	// ErrRunNotFound is returned when a run does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunExists is returned when attempting to save a run that already exists.
	ErrRunExists = errors.New("run already exists")

	// ErrInvalidRunID is returned when a run ID is empty.
	ErrInvalidRunID = errors.New("invalid run ID")

	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("invalid run transition")
)

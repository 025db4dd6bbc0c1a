package search

import "errors"

// Domain errors for search contracts.
var (
	// ErrUnknownAlgorithm indicates the requested strategy does not exist.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrIllegalAction indicates a plan step cannot be applied.
	ErrIllegalAction = errors.New("illegal action in plan")

	// ErrPlanIncomplete indicates a plan ends with dirty cells remaining.
	ErrPlanIncomplete = errors.New("plan does not clean every cell")
)

package run

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gridplan/domain/search"
)

// Store defines the interface for run history.
// Implementations may be in-memory, SQLite, or any other backend.
type Store interface {
	// Save persists a finished run.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs matching the filter.
	List(ctx context.Context, filter ListFilter) ([]*Run, error)

	// Count returns the number of runs matching the filter.
	Count(ctx context.Context, filter ListFilter) (int64, error)
}

// ListFilter specifies criteria for listing runs.
type ListFilter struct {
	// Status filters by run status (empty means all).
	Status []Status

	// Algorithms filters by strategy (empty means all).
	Algorithms []search.Algorithm

	// Fingerprint restricts results to one world.
	Fingerprint string

	// FromTime filters runs started at or after this time.
	FromTime time.Time

	// Limit is the maximum number of runs to return (0 = no limit).
	Limit int

	// Offset is the number of runs to skip for pagination.
	Offset int

	// Descending lists the newest runs first.
	Descending bool
}

// Matches reports whether r satisfies the filter.
func (f ListFilter) Matches(r *Run) bool {
	if len(f.Status) > 0 && !contains(f.Status, r.Status) {
		return false
	}
	if len(f.Algorithms) > 0 && !contains(f.Algorithms, r.Algorithm) {
		return false
	}
	if f.Fingerprint != "" && r.Fingerprint != f.Fingerprint {
		return false
	}
	if !f.FromTime.IsZero() && r.StartTime.Before(f.FromTime) {
		return false
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Summary provides aggregate statistics about runs.
type Summary struct {
	TotalRuns       int64
	SolvedRuns      int64
	UnsolvedRuns    int64
	FailedRuns      int64
	CachedRuns      int64
	AverageExpanded float64
}

// SummaryProvider is an optional interface for stores that support summaries.
type SummaryProvider interface {
	// Summary returns aggregate statistics.
	Summary(ctx context.Context, filter ListFilter) (Summary, error)
}

package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/felixgeelhaar/gridplan/domain/run"
)

// RunStore is an in-memory run.Store. Runs are stored as JSON so callers
// never share mutable state with the store.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string][]byte
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string][]byte)}
}

// Save persists a new run.
func (s *RunStore) Save(ctx context.Context, r *run.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil || r.ID == "" {
		return run.ErrInvalidRunID
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[r.ID]; exists {
		return run.ErrRunExists
	}
	s.runs[r.ID] = data
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(ctx context.Context, id string) (*run.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, run.ErrInvalidRunID
	}

	s.mu.RLock()
	data, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, run.ErrRunNotFound
	}

	var r run.Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns runs matching the filter ordered by start time.
func (s *RunStore) List(ctx context.Context, filter run.ListFilter) ([]*run.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := s.matching(filter)
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if filter.Descending {
			a, b = b, a
		}
		if a.StartTime.Equal(b.StartTime) {
			return a.ID < b.ID
		}
		return a.StartTime.Before(b.StartTime)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*run.Run{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Count returns the number of runs matching the filter.
func (s *RunStore) Count(ctx context.Context, filter run.ListFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(s.matching(filter))), nil
}

// Summary returns aggregate statistics.
func (s *RunStore) Summary(ctx context.Context, filter run.ListFilter) (run.Summary, error) {
	if err := ctx.Err(); err != nil {
		return run.Summary{}, err
	}

	var summary run.Summary
	var expanded, searched int64

	for _, r := range s.matching(filter) {
		summary.TotalRuns++
		if r.Cached {
			summary.CachedRuns++
		}
		switch r.Status {
		case run.StatusSolved:
			summary.SolvedRuns++
		case run.StatusUnsolved:
			summary.UnsolvedRuns++
		case run.StatusFailed:
			summary.FailedRuns++
			continue
		default:
			continue
		}
		expanded += int64(r.Result.Expanded)
		searched++
	}

	if searched > 0 {
		summary.AverageExpanded = float64(expanded) / float64(searched)
	}
	return summary, nil
}

// Len returns the number of stored runs.
func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func (s *RunStore) matching(filter run.ListFilter) []*run.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*run.Run
	for _, data := range s.runs {
		var r run.Run
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		if filter.Matches(&r) {
			result = append(result, &r)
		}
	}
	return result
}

var (
	_ run.Store           = (*RunStore)(nil)
	_ run.SummaryProvider = (*RunStore)(nil)
)

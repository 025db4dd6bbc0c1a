// Package run models a single planning run and its lifecycle.
package run

import (
	"time"

	"github.com/felixgeelhaar/gridplan/domain/search"
)

// Status represents where a run is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"   // Created, nothing done yet
	StatusLoading   Status = "loading"   // Reading the world file
	StatusSearching Status = "searching" // Strategy running or cache consulted
	StatusSolved    Status = "solved"    // A plan was found
	StatusUnsolved  Status = "unsolved"  // Search exhausted without a plan
	StatusFailed    Status = "failed"    // Terminated with an error
)

// IsTerminal returns true for statuses that end a run.
func (s Status) IsTerminal() bool {
	return s == StatusSolved || s == StatusUnsolved || s == StatusFailed
}

// IsValid returns true if the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusLoading, StatusSearching, StatusSolved, StatusUnsolved, StatusFailed:
		return true
	default:
		return false
	}
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusLoading, StatusSearching, StatusFailed},
	StatusLoading:   {StatusSearching, StatusFailed},
	StatusSearching: {StatusSolved, StatusUnsolved, StatusFailed},
}

// CanTransition reports whether a run may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Run records one planning request and its outcome.
type Run struct {
	ID          string           `json:"id"`
	Algorithm   search.Algorithm `json:"algorithm"`
	WorldPath   string           `json:"world_path,omitempty"`
	Fingerprint string           `json:"world_fingerprint,omitempty"`
	Status      Status           `json:"status"`
	Result      search.Result    `json:"result"`
	Cached      bool             `json:"cached"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// NewRun creates a pending run.
func NewRun(id string, alg search.Algorithm, now time.Time) *Run {
	return &Run{
		ID:        id,
		Algorithm: alg,
		Status:    StatusPending,
		StartTime: now,
	}
}

// TransitionTo changes the status, stamping EndTime on terminal statuses.
func (r *Run) TransitionTo(s Status, at time.Time) {
	r.Status = s
	if s.IsTerminal() {
		r.EndTime = at
	}
}

// Complete stores a search result and moves to its terminal status.
func (r *Run) Complete(result search.Result, cached bool, at time.Time) {
	r.Result = result
	r.Cached = cached
	r.TransitionTo(OutcomeStatus(result), at)
}

// Fail marks the run as failed with an error.
func (r *Run) Fail(err error, at time.Time) {
	if err != nil {
		r.Error = err.Error()
	}
	r.TransitionTo(StatusFailed, at)
}

// OutcomeStatus returns the terminal status a result leads to.
func OutcomeStatus(result search.Result) Status {
	if result.Found {
		return StatusSolved
	}
	return StatusUnsolved
}

// IsTerminal returns true if the run has finished.
func (r *Run) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// Duration returns how long the run took, or zero while it is in progress.
func (r *Run) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

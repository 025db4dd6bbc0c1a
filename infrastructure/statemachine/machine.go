// Package statemachine drives the planning run lifecycle with statekit.
package statemachine

import (
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/gridplan/domain/run"
)

// Context carries run state through the state machine.
type Context struct {
	Run *run.Run
	Now func() time.Time
}

// NewContext creates a new machine context. A nil clock uses time.Now.
func NewContext(r *run.Run, now func() time.Time) *Context {
	if now == nil {
		now = time.Now
	}
	return &Context{Run: r, Now: now}
}

// State IDs as StateID type for statekit.
const (
	statePending   statekit.StateID = statekit.StateID(run.StatusPending)
	stateLoading   statekit.StateID = statekit.StateID(run.StatusLoading)
	stateSearching statekit.StateID = statekit.StateID(run.StatusSearching)
	stateSolved    statekit.StateID = statekit.StateID(run.StatusSolved)
	stateUnsolved  statekit.StateID = statekit.StateID(run.StatusUnsolved)
	stateFailed    statekit.StateID = statekit.StateID(run.StatusFailed)
)

// Event types.
const (
	EventLoad    statekit.EventType = "LOAD"
	EventSearch  statekit.EventType = "SEARCH"
	EventSolve   statekit.EventType = "SOLVE"
	EventExhaust statekit.EventType = "EXHAUST"
	EventFail    statekit.EventType = "FAIL"
)

// NewRunMachine creates the planning run statechart.
func NewRunMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("planrun").
		WithInitial(statePending).
		WithContext(&Context{}).
		WithAction("recordTransition", recordTransition).
		WithGuard("canTransition", guardCanTransition).
		State(statePending).
		On(EventLoad).Target(stateLoading).Guard("canTransition").Do("recordTransition").
		On(EventSearch).Target(stateSearching).Guard("canTransition").Do("recordTransition").
		On(EventFail).Target(stateFailed).Do("recordTransition").
		Done().
		State(stateLoading).
		On(EventSearch).Target(stateSearching).Guard("canTransition").Do("recordTransition").
		On(EventFail).Target(stateFailed).Do("recordTransition").
		Done().
		State(stateSearching).
		On(EventSolve).Target(stateSolved).Guard("canTransition").Do("recordTransition").
		On(EventExhaust).Target(stateUnsolved).Guard("canTransition").Do("recordTransition").
		On(EventFail).Target(stateFailed).Do("recordTransition").
		Done().
		State(stateSolved).
		Final().
		Done().
		State(stateUnsolved).
		Final().
		Done().
		State(stateFailed).
		Final().
		Done().
		Build()
}

// EventForTransition returns the event type for a status change.
func EventForTransition(to run.Status) statekit.EventType {
	switch to {
	case run.StatusLoading:
		return EventLoad
	case run.StatusSearching:
		return EventSearch
	case run.StatusSolved:
		return EventSolve
	case run.StatusUnsolved:
		return EventExhaust
	case run.StatusFailed:
		return EventFail
	default:
		return statekit.EventType(to)
	}
}

// statusFromEventType derives the target status from an event type.
func statusFromEventType(eventType statekit.EventType) run.Status {
	switch eventType {
	case EventLoad:
		return run.StatusLoading
	case EventSearch:
		return run.StatusSearching
	case EventSolve:
		return run.StatusSolved
	case EventExhaust:
		return run.StatusUnsolved
	case EventFail:
		return run.StatusFailed
	default:
		return run.Status(eventType)
	}
}

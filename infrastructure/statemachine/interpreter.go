package statemachine

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/gridplan/domain/run"
)

// Interpreter wraps the statekit interpreter for one planning run.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates a new interpreter bound to the given context.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// Start enters the initial state.
func (i *Interpreter) Start() {
	i.interp.Start()
	i.ctx.Run.Status = run.Status(i.interp.State().Value)
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// State returns the current status.
func (i *Interpreter) State() run.Status {
	return run.Status(i.interp.State().Value)
}

// Transition moves the run to the target status.
func (i *Interpreter) Transition(to run.Status, reason string) error {
	if !i.CanTransition(to) {
		return fmt.Errorf("%w: %s to %s", run.ErrInvalidTransition, i.ctx.Run.Status, to)
	}

	i.interp.Send(statekit.Event{
		Type:    EventForTransition(to),
		Payload: TransitionPayload{ToStatus: to, Reason: reason},
	})

	i.ctx.Run.Status = i.State()
	return nil
}

// CanTransition checks if a transition to the target status is possible.
func (i *Interpreter) CanTransition(to run.Status) bool {
	return run.CanTransition(i.ctx.Run.Status, to)
}

// IsTerminal returns true if the interpreter is in a final state.
func (i *Interpreter) IsTerminal() bool {
	return i.interp.Done()
}

// Matches checks if the current state matches the given status.
func (i *Interpreter) Matches(status run.Status) bool {
	return i.interp.Matches(statekit.StateID(status))
}

// Context returns the interpreter context.
func (i *Interpreter) Context() *Context {
	return i.ctx
}

package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/gridplan/domain/run"
)

// TransitionPayload carries additional data with a transition event.
type TransitionPayload struct {
	ToStatus run.Status
	Reason   string
}

func targetOf(event statekit.Event) run.Status {
	if payload, ok := event.Payload.(TransitionPayload); ok && payload.ToStatus != "" {
		return payload.ToStatus
	}
	return statusFromEventType(event.Type)
}

// recordTransition moves the run to the event's target status.
// statekit hands actions a pointer to the context, so with *Context the
// action receives **Context.
func recordTransition(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).Run == nil {
		return
	}

	c := *ctx
	now := c.Now
	if now == nil {
		return
	}
	c.Run.TransitionTo(targetOf(event), now())
}

// guardCanTransition checks the run lifecycle table.
func guardCanTransition(ctx *Context, event statekit.Event) bool {
	if ctx == nil || ctx.Run == nil {
		return false
	}
	return run.CanTransition(ctx.Run.Status, targetOf(event))
}

package engine

import (
	"github.com/hearthhub/configflow/internal/util"
	"github.com/hearthhub/configflow/pkg/api"
)

// StateTransitions maps states to their set of valid next states
type StateTransitions[T comparable] map[T]util.Set[T]

// flowTransitions is the only lifecycle a flow instance may follow: once
// completed or aborted, no further transitions exist
var flowTransitions = StateTransitions[api.FlowStatus]{
	api.FlowInProgress: util.SetOf(
		api.FlowCompleted,
		api.FlowAborted,
	),
	api.FlowCompleted: {},
	api.FlowAborted:   {},
}

// CanTransition returns whether transition from one state to another is valid
func (t StateTransitions[T]) CanTransition(from, to T) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}
	return allowed.Contains(to)
}

// IsTerminal returns true if the state has no valid transitions
func (t StateTransitions[T]) IsTerminal(state T) bool {
	allowed, ok := t[state]
	return ok && allowed.IsEmpty()
}

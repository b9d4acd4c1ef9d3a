package api

import (
	"errors"
	"time"
)

type (
	// FlowStatus describes the lifecycle state of a flow instance
	FlowStatus string

	// HandlerKind describes the interaction style of a flow's handler
	HandlerKind string

	// FlowInstance is one in-progress or completed setup session. Context is
	// private handler state; it is persisted with the instance but never
	// included in client-facing JSON
	FlowInstance struct {
		ID            FlowID      `json:"id"`
		Domain        Domain      `json:"domain"`
		HandlerKind   HandlerKind `json:"handler_kind"`
		CurrentStepID StepID      `json:"current_step_id,omitempty"`
		Data          Data        `json:"data"`
		Context       Data        `json:"-"`
		Status        FlowStatus  `json:"status"`
		CreatedAt     time.Time   `json:"created_at"`
		UpdatedAt     time.Time   `json:"updated_at"`
	}

	// ConfigEntry is the persisted terminal result of a completed flow
	ConfigEntry struct {
		ID        EntryID   `json:"id"`
		Domain    Domain    `json:"domain"`
		Title     string    `json:"title"`
		Data      Data      `json:"data"`
		FlowID    FlowID    `json:"flow_id"`
		CreatedAt time.Time `json:"created_at"`
	}
)

const (
	FlowInProgress FlowStatus = "in_progress"
	FlowCompleted  FlowStatus = "completed"
	FlowAborted    FlowStatus = "aborted"

	HandlerKindManual    HandlerKind = "manual"
	HandlerKindDiscovery HandlerKind = "discovery"
	HandlerKindOAuth     HandlerKind = "oauth"
	HandlerKindWizard    HandlerKind = "wizard"
	HandlerKindHybrid    HandlerKind = "hybrid"
	HandlerKindProxy     HandlerKind = "proxy"
)

var (
	ErrFlowIDEmpty = errors.New("flow ID empty")
	ErrDomainEmpty = errors.New("domain empty")
)

// NewFlowInstance creates an in-progress flow instance for the given domain
func NewFlowInstance(domain Domain, kind HandlerKind) *FlowInstance {
	now := time.Now().UTC()
	return &FlowInstance{
		ID:          NewFlowID(),
		Domain:      domain,
		HandlerKind: kind,
		Data:        Data{},
		Context:     Data{},
		Status:      FlowInProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsTerminal reports whether the flow has reached a final status
func (f *FlowInstance) IsTerminal() bool {
	return f.Status == FlowCompleted || f.Status == FlowAborted
}

// Validate checks the structural invariants of a flow instance
func (f *FlowInstance) Validate() error {
	if f.ID == "" {
		return ErrFlowIDEmpty
	}
	if f.Domain == "" {
		return ErrDomainEmpty
	}
	return nil
}

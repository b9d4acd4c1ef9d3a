// Package events defines the flow lifecycle events published by the engine
// and a small in-process hub that fans them out to subscribers (the
// websocket feed, tests).
package events

import (
	"time"

	"github.com/hearthhub/configflow/pkg/api"
)

type (
	// EventType names a flow lifecycle event
	EventType string

	// FlowEvent describes one observable change in a flow's life
	FlowEvent struct {
		Type      EventType      `json:"type"`
		FlowID    api.FlowID     `json:"flow_id,omitempty"`
		Domain    api.Domain     `json:"domain,omitempty"`
		StepID    api.StepID     `json:"step_id,omitempty"`
		Status    api.FlowStatus `json:"status,omitempty"`
		EntryID   api.EntryID    `json:"entry_id,omitempty"`
		Version   int            `json:"version,omitempty"`
		Reason    string         `json:"reason,omitempty"`
		Timestamp time.Time      `json:"timestamp"`
	}
)

const (
	EventFlowStarted         EventType = "flow_started"
	EventFlowAdvanced        EventType = "flow_advanced"
	EventFlowCompleted       EventType = "flow_completed"
	EventFlowAborted         EventType = "flow_aborted"
	EventEntryCreated        EventType = "entry_created"
	EventFlowArchived        EventType = "flow_archived"
	EventDefinitionActivated EventType = "definition_activated"
)

// NewFlowEvent stamps a flow event with the current time
func NewFlowEvent(typ EventType, flow *api.FlowInstance) *FlowEvent {
	ev := &FlowEvent{
		Type:      typ,
		Timestamp: time.Now().UTC(),
	}
	if flow != nil {
		ev.FlowID = flow.ID
		ev.Domain = flow.Domain
		ev.StepID = flow.CurrentStepID
		ev.Status = flow.Status
	}
	return ev
}

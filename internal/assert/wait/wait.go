// Package wait provides event-stream assertions for tests: block until the
// hub delivers events matching a filter, or fail the test on timeout
package wait

import (
	"testing"
	"time"

	"github.com/hearthhub/configflow/internal/util"
	"github.com/hearthhub/configflow/pkg/api"
	"github.com/hearthhub/configflow/pkg/events"
)

type (
	Wait struct {
		t        *testing.T
		consumer *events.Consumer
		timeout  time.Duration
	}

	// EventFilter reports whether an event satisfies the wait condition
	EventFilter func(*events.FlowEvent) bool
)

const DefaultTimeout = time.Second * 5

func On(t *testing.T, consumer *events.Consumer) *Wait {
	return &Wait{
		t:        t,
		consumer: consumer,
		timeout:  DefaultTimeout,
	}
}

func (w *Wait) WithTimeout(timeout time.Duration) *Wait {
	res := *w
	res.timeout = timeout
	return &res
}

// ForEvents waits for matching events from the consumer
func (w *Wait) ForEvents(count int, filter EventFilter) {
	w.t.Helper()

	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	for seen := 0; seen < count; {
		select {
		case ev, ok := <-w.consumer.Receive():
			if !ok {
				w.t.Fatalf(
					"event consumer closed before receiving %d events", count,
				)
			}
			if !filter(ev) {
				continue
			}
			seen++
		case <-deadline.C:
			w.t.Fatalf("timeout waiting for %d events", count)
		}
	}
}

// ForEvent waits for a single matching event
func (w *Wait) ForEvent(filter EventFilter) {
	w.ForEvents(1, filter)
}

// And composes event filters and returns true when all match
func And(filters ...EventFilter) EventFilter {
	return func(ev *events.FlowEvent) bool {
		for _, filter := range filters {
			if !filter(ev) {
				return false
			}
		}
		return true
	}
}

// Type creates a filter for a single event type
func Type(eventType events.EventType) EventFilter {
	return Types(eventType)
}

// Types creates a filter for the given event types
func Types(eventTypes ...events.EventType) EventFilter {
	if len(eventTypes) == 0 {
		return func(*events.FlowEvent) bool { return false }
	}
	lookup := util.SetOf(eventTypes...)
	return func(ev *events.FlowEvent) bool {
		return lookup.Contains(ev.Type)
	}
}

// FlowID matches events for the provided flow ID
func FlowID(id api.FlowID) EventFilter {
	return func(ev *events.FlowEvent) bool {
		return ev.FlowID == id
	}
}

// FlowStarted matches flow started events for the provided flow ID
func FlowStarted(id api.FlowID) EventFilter {
	return And(Type(events.EventFlowStarted), FlowID(id))
}

// FlowCompleted matches flow completed events for the provided flow ID
func FlowCompleted(id api.FlowID) EventFilter {
	return And(Type(events.EventFlowCompleted), FlowID(id))
}

// FlowAborted matches flow aborted events for the provided flow ID
func FlowAborted(id api.FlowID) EventFilter {
	return And(Type(events.EventFlowAborted), FlowID(id))
}

// FlowTerminal matches terminal events for the provided flow ID
func FlowTerminal(id api.FlowID) EventFilter {
	return And(
		Types(events.EventFlowCompleted, events.EventFlowAborted),
		FlowID(id),
	)
}

// EntryCreated matches entry creation events for the provided flow ID
func EntryCreated(id api.FlowID) EventFilter {
	return And(Type(events.EventEntryCreated), FlowID(id))
}

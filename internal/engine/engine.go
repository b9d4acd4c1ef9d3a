// Package engine implements the base flow state machine: it binds handlers
// to flow instances, runs one step at a time, persists the resulting state,
// and converts handler failures into terminal abort results so a flow is
// never left dangling in progress.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/hearthhub/configflow/internal/definition"
	"github.com/hearthhub/configflow/internal/discovery"
	"github.com/hearthhub/configflow/internal/store"
	"github.com/hearthhub/configflow/pkg/api"
	"github.com/hearthhub/configflow/pkg/events"
)

type (
	// Engine drives config flows from start to terminal result
	Engine struct {
		registry    *Registry
		flows       *store.Store
		definitions *definition.Store
		discovery   discovery.Discoverer
		hub         *events.Hub
		discTimeout time.Duration
	}

	// Options configures a new engine
	Options struct {
		Registry         *Registry
		Flows            *store.Store
		Definitions      *definition.Store
		Discovery        discovery.Discoverer
		Hub              *events.Hub
		DiscoveryTimeout time.Duration
	}
)

var (
	ErrFlowNotFound = store.ErrFlowNotFound
	ErrFlowTerminal = errors.New("flow has reached a terminal state")
)

// New creates an engine. The registry is injected rather than consulted as
// ambient state; builtin handlers are registered once at process start
func New(opts Options) *Engine {
	discoverer := opts.Discovery
	if discoverer == nil {
		discoverer = discovery.None{}
	}
	timeout := opts.DiscoveryTimeout
	if timeout <= 0 {
		timeout = discovery.DefaultTimeout
	}
	hub := opts.Hub
	if hub == nil {
		hub = events.NewHub()
	}
	return &Engine{
		registry:    opts.Registry,
		flows:       opts.Flows,
		definitions: opts.Definitions,
		discovery:   discoverer,
		hub:         hub,
		discTimeout: timeout,
	}
}

// Registry exposes the handler registry, mainly for test overrides
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Hub exposes the engine's event hub
func (e *Engine) Hub() *events.Hub {
	return e.hub
}

// Definitions exposes the definition store
func (e *Engine) Definitions() *definition.Store {
	return e.definitions
}

// GetFlow loads one flow instance
func (e *Engine) GetFlow(
	ctx context.Context, id api.FlowID,
) (*api.FlowInstance, error) {
	return e.flows.GetFlow(ctx, id)
}

// ListFlows returns every persisted flow instance
func (e *Engine) ListFlows(ctx context.Context) ([]*api.FlowInstance, error) {
	return e.flows.ListFlows(ctx)
}

// ListEntries returns every persisted config entry
func (e *Engine) ListEntries(
	ctx context.Context,
) ([]*api.ConfigEntry, error) {
	return e.flows.ListEntries(ctx)
}

func (e *Engine) publish(typ events.EventType, flow *api.FlowInstance) {
	e.hub.Publish(events.NewFlowEvent(typ, flow))
}

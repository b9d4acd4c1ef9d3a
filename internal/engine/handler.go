package engine

import (
	"context"
	"time"

	"github.com/hearthhub/configflow/internal/discovery"
	"github.com/hearthhub/configflow/pkg/api"
)

type (
	// Handler implements one integration's step-transition behavior. A
	// handler is constructed fresh for every step evaluation; any state it
	// needs between steps lives in the flow's Data or Context
	Handler interface {
		// Kind reports the handler's interaction style
		Kind() api.HandlerKind

		// InitialStep names the step a new flow starts on
		InitialStep() api.StepID

		// Step evaluates the step the flow is currently bound to. A nil
		// input means the step is being entered, not submitted
		Step(
			ctx context.Context, sc *StepContext, input api.Data,
		) (*api.StepResult, error)
	}

	// Factory constructs a handler for one step evaluation
	Factory func() Handler

	// StepContext carries the flow and the capability set a step function
	// may use: createEntry, showForm, abort, waitForDiscovery
	StepContext struct {
		Flow             *api.FlowInstance
		StepID           api.StepID
		Discovery        discovery.Discoverer
		DiscoveryTimeout time.Duration
	}
)

// CreateEntry produces the terminal success result
func (sc *StepContext) CreateEntry(title string, data api.Data) *api.StepResult {
	return api.NewCreateEntryResult(title, data)
}

// Abort produces the terminal failure result
func (sc *StepContext) Abort(reason string) *api.StepResult {
	return api.NewAbortResult(reason)
}

// ShowForm produces a non-terminal result; the next submission is validated
// against the schema before being merged
func (sc *StepContext) ShowForm(
	stepID api.StepID, schema api.StepSchema,
) *api.StepResult {
	return api.NewFormResult(stepID, schema)
}

// ShowMenu produces a non-terminal result offering a choice of next steps
func (sc *StepContext) ShowMenu(
	stepID api.StepID, options []api.Option,
) *api.StepResult {
	return api.NewMenuResult(stepID, options)
}

// ExternalStep suspends the flow until an out-of-band callback resumes it
func (sc *StepContext) ExternalStep(url string) *api.StepResult {
	return api.NewExternalStepResult(url)
}

// WaitForDiscovery polls the discovery collaborator for the protocol,
// bounded by the handler's configured timeout. An empty list is a valid
// outcome; handlers treat zero devices as "fall back to manual entry"
func (sc *StepContext) WaitForDiscovery(
	ctx context.Context, protocol string,
) ([]api.DiscoveredDevice, error) {
	return discovery.WaitForDevices(
		ctx, sc.Discovery, protocol, sc.Flow.Data, sc.DiscoveryTimeout,
	)
}

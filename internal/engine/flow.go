package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hearthhub/configflow/internal/definition"
	"github.com/hearthhub/configflow/pkg/api"
	"github.com/hearthhub/configflow/pkg/events"
	"github.com/hearthhub/configflow/pkg/log"
)

// ctxLastSchema is the private context key holding the schema of the form
// most recently shown to the client, as JSON. The next submission is
// validated against it before being merged
const ctxLastSchema api.Name = "last_schema"

// StartFlow creates a new in-progress flow for the domain and invokes the
// handler's initial step with no input to obtain the first result
func (e *Engine) StartFlow(
	ctx context.Context, domain api.Domain,
) (*api.FlowInstance, *api.StepResult, error) {
	if domain == "" {
		return nil, nil, api.ErrDomainEmpty
	}

	handler := e.registry.Resolve(domain)()
	flow := api.NewFlowInstance(domain, handler.Kind())
	flow.CurrentStepID = handler.InitialStep()

	if err := e.flows.CreateFlow(ctx, flow); err != nil {
		return nil, nil, err
	}

	result := e.runStep(ctx, flow, handler, nil)
	if err := e.applyResult(ctx, flow, result); err != nil {
		return nil, nil, err
	}

	slog.Info("Flow started",
		log.FlowID(flow.ID),
		log.Domain(flow.Domain),
		log.StepID(flow.CurrentStepID))
	e.publish(events.EventFlowStarted, flow)
	return flow, result, nil
}

// AdvanceFlow merges the submitted input into the flow's accumulated data
// and invokes the handler's function bound to the current step. Submissions
// to a missing or terminal flow fail; invalid input re-shows the same form
// with per-field errors and leaves the flow untouched
func (e *Engine) AdvanceFlow(
	ctx context.Context, flowID api.FlowID, input api.Data,
) (*api.StepResult, error) {
	release, err := e.flows.AcquireLock(ctx, flowID)
	if err != nil {
		return nil, err
	}
	defer release()

	flow, err := e.flows.GetFlow(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if flow.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s",
			ErrFlowTerminal, flowID, flow.Status)
	}

	if schema := e.lastSchema(flow); schema != nil {
		if verr := ValidateInput(schema, flow.Data, input); verr != nil {
			return api.NewFormResult(flow.CurrentStepID, schema).
				WithErrors(verr.Fields), nil
		}
	}

	flow.Data = flow.Data.Merge(input)

	handler := e.registry.Resolve(flow.Domain)()
	result := e.runStep(ctx, flow, handler, input)
	if err := e.applyResult(ctx, flow, result); err != nil {
		return nil, err
	}

	e.publish(events.EventFlowAdvanced, flow)
	return result, nil
}

// ConfirmFlow merges the final fields and completes the flow, creating its
// config entry. The entry title falls back to the flow's domain when the
// accumulated data does not carry one
func (e *Engine) ConfirmFlow(
	ctx context.Context, flowID api.FlowID, finalFields api.Data,
) (*api.StepResult, error) {
	release, err := e.flows.AcquireLock(ctx, flowID)
	if err != nil {
		return nil, err
	}
	defer release()

	flow, err := e.flows.GetFlow(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if flow.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s",
			ErrFlowTerminal, flowID, flow.Status)
	}

	flow.Data = flow.Data.Merge(finalFields)
	title := flow.Data.GetString("title", string(flow.Domain))

	result := api.NewCreateEntryResult(title, flow.Data.Clone())
	if err := e.applyResult(ctx, flow, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetNextStep evaluates the active definition's transition rules for the
// step against the flow's data plus the candidate step data, and resolves
// the component the client should render next
func (e *Engine) GetNextStep(
	ctx context.Context, flowID api.FlowID, stepID api.StepID,
	stepData api.Data,
) (*api.NextStepResponse, error) {
	flow, err := e.flows.GetFlow(ctx, flowID)
	if err != nil {
		return nil, err
	}

	def, err := e.definitions.GetActiveFlowDefinition(ctx, flow.Domain)
	if err != nil {
		return nil, err
	}
	if def.Step(stepID) == nil {
		return nil, fmt.Errorf("%w: %s", definition.ErrStepNotFound, stepID)
	}

	merged := flow.Data.Merge(stepData)
	next, ok := definition.DetermineNextStep(def, stepID, merged)
	if !ok {
		return &api.NextStepResponse{Complete: true}, nil
	}

	probe := *flow
	probe.Data = merged
	component, err := definition.ResolveStepComponent(&probe, def, next)
	if err != nil {
		return nil, err
	}

	return &api.NextStepResponse{
		NextStepID: next,
		Component:  component,
	}, nil
}

// runStep invokes one handler step. Handler errors and panics become
// terminal abort results with the failure message as the reason, so an
// unhandled failure can never leave a flow silently stuck in progress
func (e *Engine) runStep(
	ctx context.Context, flow *api.FlowInstance, handler Handler,
	input api.Data,
) (result *api.StepResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Handler panicked",
				log.FlowID(flow.ID),
				log.StepID(flow.CurrentStepID),
				slog.Any("panic", r))
			result = api.NewAbortResult(fmt.Sprintf("%v", r))
		}
	}()

	sc := &StepContext{
		Flow:             flow,
		StepID:           flow.CurrentStepID,
		Discovery:        e.discovery,
		DiscoveryTimeout: e.discTimeout,
	}

	result, err := handler.Step(ctx, sc, input)
	if err != nil {
		slog.Warn("Handler step failed",
			log.FlowID(flow.ID),
			log.StepID(flow.CurrentStepID),
			log.Error(err))
		return api.NewAbortResult(err.Error())
	}
	if result == nil {
		return api.NewAbortResult("handler returned no result")
	}
	return result
}

// applyResult persists the instance mutations a step result implies:
// current step, last shown schema, terminal status, config entry creation
func (e *Engine) applyResult(
	ctx context.Context, flow *api.FlowInstance, result *api.StepResult,
) error {
	switch result.Type {
	case api.ResultForm:
		flow.CurrentStepID = result.StepID
		e.setLastSchema(flow, result.Schema)

	case api.ResultMenu:
		flow.CurrentStepID = result.StepID
		e.setLastSchema(flow, nil)

	case api.ResultExternalStep:
		// flow suspends on the current step; callback data is merged as-is
		e.setLastSchema(flow, nil)

	case api.ResultCreateEntry:
		if !flowTransitions.CanTransition(flow.Status, api.FlowCompleted) {
			return fmt.Errorf("%w: %s", ErrFlowTerminal, flow.ID)
		}
		flow.Status = api.FlowCompleted
		e.setLastSchema(flow, nil)
		if err := e.createEntry(ctx, flow, result); err != nil {
			return err
		}

	case api.ResultAbort:
		if !flowTransitions.CanTransition(flow.Status, api.FlowAborted) {
			return fmt.Errorf("%w: %s", ErrFlowTerminal, flow.ID)
		}
		flow.Status = api.FlowAborted
		e.setLastSchema(flow, nil)
	}

	if err := e.flows.SaveFlow(ctx, flow); err != nil {
		return err
	}

	switch result.Type {
	case api.ResultCreateEntry:
		slog.Info("Flow completed",
			log.FlowID(flow.ID),
			log.Domain(flow.Domain))
		e.publish(events.EventFlowCompleted, flow)
	case api.ResultAbort:
		slog.Info("Flow aborted",
			log.FlowID(flow.ID),
			log.Domain(flow.Domain),
			slog.String("reason", result.Reason))
		e.publish(events.EventFlowAborted, flow)
	}
	return nil
}

func (e *Engine) createEntry(
	ctx context.Context, flow *api.FlowInstance, result *api.StepResult,
) error {
	entry := &api.ConfigEntry{
		ID:        api.NewEntryID(),
		Domain:    flow.Domain,
		Title:     result.Title,
		Data:      result.Data,
		FlowID:    flow.ID,
		CreatedAt: flow.UpdatedAt,
	}
	if err := e.flows.CreateEntry(ctx, entry); err != nil {
		return err
	}

	ev := events.NewFlowEvent(events.EventEntryCreated, flow)
	ev.EntryID = entry.ID
	e.hub.Publish(ev)
	return nil
}

func (e *Engine) setLastSchema(flow *api.FlowInstance, schema api.StepSchema) {
	if schema == nil {
		delete(flow.Context, ctxLastSchema)
		return
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return
	}
	flow.Context[ctxLastSchema] = string(data)
}

func (e *Engine) lastSchema(flow *api.FlowInstance) api.StepSchema {
	raw, ok := flow.Context[ctxLastSchema].(string)
	if !ok || raw == "" {
		return nil
	}
	var schema api.StepSchema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return nil
	}
	return schema
}

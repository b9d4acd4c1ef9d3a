package handlers

import (
	"context"

	"github.com/hearthhub/configflow/internal/conditional"
	"github.com/hearthhub/configflow/internal/definition"
	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/pkg/api"
)

// WizardHandler drives a flow entirely from the domain's active flow
// definition: each step shows the definition's visible fields, transitions
// are evaluated against the accumulated data, and running out of
// transitions completes the flow
type WizardHandler struct {
	definitions *definition.Store
	domain      api.Domain
}

// wizardStepInit is the placeholder a wizard flow starts on before the
// active definition names the real initial step
const wizardStepInit api.StepID = "init"

var _ engine.Handler = (*WizardHandler)(nil)

// NewWizardFactory builds a definition-driven handler factory for a domain
func NewWizardFactory(
	defs *definition.Store, domain api.Domain,
) engine.Factory {
	return func() engine.Handler {
		return &WizardHandler{definitions: defs, domain: domain}
	}
}

func (h *WizardHandler) Kind() api.HandlerKind {
	return api.HandlerKindWizard
}

func (h *WizardHandler) InitialStep() api.StepID {
	return wizardStepInit
}

func (h *WizardHandler) Step(
	ctx context.Context, sc *engine.StepContext, input api.Data,
) (*api.StepResult, error) {
	def, err := h.definitions.GetActiveFlowDefinition(ctx, h.domain)
	if err != nil {
		return nil, err
	}

	if sc.StepID == wizardStepInit {
		return h.showStep(sc, def, def.InitialStep), nil
	}

	next, ok := definition.DetermineNextStep(def, sc.StepID, sc.Flow.Data)
	if !ok {
		title := sc.Flow.Data.GetString("title", string(h.domain))
		return sc.CreateEntry(title, sc.Flow.Data.Clone()), nil
	}
	return h.showStep(sc, def, next), nil
}

// showStep renders the visible subset of a definition step's schema
func (h *WizardHandler) showStep(
	sc *engine.StepContext, def *api.FlowDefinition, stepID api.StepID,
) *api.StepResult {
	step := def.Step(stepID)
	if step == nil {
		return sc.Abort("definition step missing: " + string(stepID))
	}

	visible := conditional.GetVisibleFields(step.Schema, sc.Flow.Data)
	schema := make(api.StepSchema, len(visible))
	for _, name := range visible {
		schema[name] = step.Schema[name]
	}
	return sc.ShowForm(stepID, schema)
}

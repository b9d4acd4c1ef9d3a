package definition

import (
	"errors"
	"fmt"

	"github.com/hearthhub/configflow/internal/conditional"
	"github.com/hearthhub/configflow/pkg/api"
)

var (
	ErrStepNotFound = errors.New("step not found in definition")
)

// DetermineNextStep evaluates the current step's transition rules against
// the flow's data and returns the first matching next step id. The second
// return is false when no rule matches and the flow is complete
func DetermineNextStep(
	def *api.FlowDefinition, currentStepID api.StepID, flowData api.Data,
) (api.StepID, bool) {
	step := def.Step(currentStepID)
	if step == nil {
		return "", false
	}
	for _, rule := range step.Transitions {
		if conditional.Evaluate(rule.When, flowData) {
			return rule.Next, true
		}
	}
	return "", false
}

// ResolveStepComponent combines a live flow's accumulated data with the
// definition's step schema to produce the exact field set the client should
// render. Visibility is recomputed from the current data on every call,
// never cached from a prior render
func ResolveStepComponent(
	flow *api.FlowInstance, def *api.FlowDefinition, stepID api.StepID,
) (*api.StepComponent, error) {
	step := def.Step(stepID)
	if step == nil {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}

	visible := conditional.GetVisibleFields(step.Schema, flow.Data)
	schema := make(api.StepSchema, len(visible))
	for _, name := range visible {
		schema[name] = step.Schema[name]
	}

	return &api.StepComponent{
		StepID: stepID,
		Fields: visible,
		Schema: schema,
	}, nil
}

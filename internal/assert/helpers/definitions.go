package helpers

import (
	"github.com/hearthhub/configflow/pkg/api"
)

// NewTestDefinition builds a two-step definition covering the common test
// shape: a mode select that routes to a manual step, which completes
func NewTestDefinition(domain api.Domain) *api.FlowDefinition {
	return &api.FlowDefinition{
		Domain:      domain,
		InitialStep: "user",
		Steps: map[api.StepID]*api.StepDefinition{
			"user": {
				Schema: api.StepSchema{
					"mode": {
						Type:     api.FieldTypeSelect,
						Label:    "Setup mode",
						Required: true,
						Options: api.SelectOptions(
							[2]string{"manual", "Manual"},
							[2]string{"auto", "Automatic"},
						),
						Order: 1,
					},
				},
				Transitions: []api.TransitionRule{
					{
						When: &api.Conditional{
							Field:    "mode",
							Operator: api.OpEquals,
							Value:    "manual",
						},
						Next: "manual",
					},
				},
			},
			"manual": {
				Schema: api.StepSchema{
					"host": {
						Type:     api.FieldTypeString,
						Label:    "Host",
						Required: true,
						Order:    1,
					},
					"port": {
						Type:    api.FieldTypeInteger,
						Label:   "Port",
						Default: 8080,
						Order:   2,
					},
				},
			},
		},
	}
}

// NewConditionalSchema builds a schema where the dependent field is only
// visible when trigger equals the given value
func NewConditionalSchema(
	trigger, dependent api.Name, value any,
) api.StepSchema {
	return api.StepSchema{
		trigger: {
			Type:     api.FieldTypeString,
			Required: true,
			Order:    1,
		},
		dependent: {
			Type: api.FieldTypeString,
			Conditional: &api.Conditional{
				Field:    trigger,
				Operator: api.OpEquals,
				Value:    value,
			},
			Order: 2,
		},
	}
}

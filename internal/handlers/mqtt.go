package handlers

import (
	"context"

	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/pkg/api"
)

// MQTTHandler is a plain manual-entry flow: one broker form, one entry
type MQTTHandler struct{}

const (
	mqttStepUser api.StepID = "user"
	mqttTitle               = "MQTT"
)

var mqttSchema = api.StepSchema{
	"broker": &api.FieldSchema{
		Type:     api.FieldTypeString,
		Label:    "Broker address",
		Required: true,
		Order:    0,
	},
	"port": &api.FieldSchema{
		Type:    api.FieldTypeInteger,
		Label:   "Port",
		Default: 1883,
		Order:   1,
	},
	"username": &api.FieldSchema{
		Type:  api.FieldTypeString,
		Label: "Username",
		Order: 2,
	},
	"password": &api.FieldSchema{
		Type:      api.FieldTypePassword,
		Label:     "Password",
		Order:     3,
		DependsOn: []api.Name{"username"},
		// an absent username satisfies not_equals, so the field stays
		// offered until an empty username is explicitly submitted
		Conditional: &api.Conditional{
			Field:    "username",
			Operator: api.OpNotEquals,
			Value:    "",
		},
	},
}

var _ engine.Handler = (*MQTTHandler)(nil)

// NewMQTTFactory builds the mqtt handler factory
func NewMQTTFactory() engine.Factory {
	return func() engine.Handler {
		return &MQTTHandler{}
	}
}

func (h *MQTTHandler) Kind() api.HandlerKind {
	return api.HandlerKindManual
}

func (h *MQTTHandler) InitialStep() api.StepID {
	return mqttStepUser
}

func (h *MQTTHandler) Step(
	_ context.Context, sc *engine.StepContext, input api.Data,
) (*api.StepResult, error) {
	if input == nil {
		return sc.ShowForm(mqttStepUser, mqttSchema), nil
	}

	data := sc.Flow.Data.Clone()
	if !data.Has("port") {
		data["port"] = 1883
	}
	return sc.CreateEntry(mqttTitle, data), nil
}

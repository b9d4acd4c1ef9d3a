// Package handlers ships the per-integration config flow handlers that come
// built in with the hub: zigbee, mqtt, hue, nest, and the generic
// definition-driven wizard.
package handlers

import (
	"context"

	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/pkg/api"
)

// ZigbeeHandler sets up a zigbee coordinator. It first waits for radio
// discovery; with zero discovered radios the user falls back to manual
// serial port entry
type ZigbeeHandler struct{}

const (
	zigbeeStepUser   api.StepID = "user"
	zigbeeStepManual api.StepID = "manual"
	zigbeeStepPick   api.StepID = "pick"

	zigbeeProtocol = "zigbee"
	zigbeeTitle    = "Zigbee Coordinator"
)

var zigbeeManualSchema = api.StepSchema{
	"serial_port": &api.FieldSchema{
		Type:     api.FieldTypeString,
		Label:    "Serial port",
		Required: true,
		Order:    0,
	},
	"radio_type": &api.FieldSchema{
		Type:    api.FieldTypeSelect,
		Label:   "Radio type",
		Default: "znp",
		Options: []api.Option{
			{Value: "znp", Label: "ZNP (Texas Instruments)"},
			{Value: "ezsp", Label: "EZSP (Silicon Labs)"},
			{Value: "deconz", Label: "deCONZ (ConBee/RaspBee)"},
		},
		Order: 1,
	},
}

var _ engine.Handler = (*ZigbeeHandler)(nil)

// NewZigbeeFactory builds the zigbee handler factory
func NewZigbeeFactory() engine.Factory {
	return func() engine.Handler {
		return &ZigbeeHandler{}
	}
}

func (h *ZigbeeHandler) Kind() api.HandlerKind {
	return api.HandlerKindDiscovery
}

func (h *ZigbeeHandler) InitialStep() api.StepID {
	return zigbeeStepUser
}

func (h *ZigbeeHandler) Step(
	ctx context.Context, sc *engine.StepContext, input api.Data,
) (*api.StepResult, error) {
	switch sc.StepID {
	case zigbeeStepUser:
		if input != nil {
			// input on the initial step means the caller already knows the
			// port; create the entry, never re-prompt
			return h.createEntry(sc), nil
		}

		devices, err := sc.WaitForDiscovery(ctx, zigbeeProtocol)
		if err != nil {
			return nil, err
		}
		if len(devices) == 0 {
			return sc.ShowForm(zigbeeStepManual, zigbeeManualSchema), nil
		}
		return sc.ShowForm(zigbeeStepPick, pickSchema(devices)), nil

	case zigbeeStepManual, zigbeeStepPick:
		return h.createEntry(sc), nil

	default:
		return sc.Abort("unknown zigbee step: " + string(sc.StepID)), nil
	}
}

func (h *ZigbeeHandler) createEntry(sc *engine.StepContext) *api.StepResult {
	data := sc.Flow.Data.Clone()
	if !data.Has("radio_type") {
		data["radio_type"] = "znp"
	}
	return sc.CreateEntry(zigbeeTitle, data)
}

func pickSchema(devices []api.DiscoveredDevice) api.StepSchema {
	options := make([]api.Option, 0, len(devices))
	for _, dev := range devices {
		options = append(options, api.Option{
			Value: dev.ID,
			Label: dev.Name,
		})
	}
	return api.StepSchema{
		"device": &api.FieldSchema{
			Type:     api.FieldTypeSelect,
			Label:    "Discovered radio",
			Required: true,
			Options:  options,
		},
	}
}

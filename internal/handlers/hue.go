package handlers

import (
	"context"

	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/pkg/api"
)

// HueHandler pairs a Hue bridge: SSDP discovery picks a bridge (or the user
// enters a host manually), then the link button press is confirmed
type HueHandler struct{}

const (
	hueStepUser   api.StepID = "user"
	hueStepManual api.StepID = "manual"
	hueStepLink   api.StepID = "link"

	hueProtocol = "ssdp"
	hueTitle    = "Philips Hue"

	ctxBridgeHost api.Name = "bridge_host"
)

var (
	hueManualSchema = api.StepSchema{
		"host": &api.FieldSchema{
			Type:     api.FieldTypeString,
			Label:    "Bridge address",
			Required: true,
		},
	}

	hueLinkSchema = api.StepSchema{
		"pressed": &api.FieldSchema{
			Type:     api.FieldTypeBoolean,
			Label:    "Link button pressed",
			Required: true,
		},
	}
)

var _ engine.Handler = (*HueHandler)(nil)

// NewHueFactory builds the hue handler factory
func NewHueFactory() engine.Factory {
	return func() engine.Handler {
		return &HueHandler{}
	}
}

func (h *HueHandler) Kind() api.HandlerKind {
	return api.HandlerKindHybrid
}

func (h *HueHandler) InitialStep() api.StepID {
	return hueStepUser
}

func (h *HueHandler) Step(
	ctx context.Context, sc *engine.StepContext, input api.Data,
) (*api.StepResult, error) {
	switch sc.StepID {
	case hueStepUser:
		if input != nil {
			return h.createEntry(sc), nil
		}

		bridges, err := sc.WaitForDiscovery(ctx, hueProtocol)
		if err != nil {
			return nil, err
		}
		if len(bridges) == 0 {
			return sc.ShowForm(hueStepManual, hueManualSchema), nil
		}

		sc.Flow.Context[ctxBridgeHost] = bridges[0].Identifiers.GetString(
			"host", bridges[0].ID,
		)
		return sc.ShowForm(hueStepLink, hueLinkSchema), nil

	case hueStepManual:
		sc.Flow.Context[ctxBridgeHost] = sc.Flow.Data.GetString("host", "")
		return sc.ShowForm(hueStepLink, hueLinkSchema), nil

	case hueStepLink:
		if pressed, _ := sc.Flow.Data["pressed"].(bool); !pressed {
			return sc.Abort("link button not pressed"), nil
		}
		return h.createEntry(sc), nil

	default:
		return sc.Abort("unknown hue step: " + string(sc.StepID)), nil
	}
}

func (h *HueHandler) createEntry(sc *engine.StepContext) *api.StepResult {
	data := sc.Flow.Data.Clone()
	if host, ok := sc.Flow.Context[ctxBridgeHost].(string); ok && host != "" {
		data["host"] = host
	}
	delete(data, "pressed")
	return sc.CreateEntry(hueTitle, data)
}

package proxy

import (
	"context"

	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/pkg/api"
)

// CtxExternalFlowID is the private context key carrying the id of the
// equivalent flow on the external hub
const CtxExternalFlowID api.Name = "external_flow_id"

// Handler forwards every step of a flow to the external hub's flow engine.
// On the first invocation it starts an equivalent external flow and stores
// its id in the flow's context; subsequent invocations forward the input to
// that flow. Failures are not retried: state on the external system may
// already have advanced, so a blind retry risks duplicate side effects
type Handler struct {
	client HubClient
}

var _ engine.Handler = (*Handler)(nil)

// NewFactory builds the registry fallback factory bound to the hub client
func NewFactory(client HubClient) engine.Factory {
	return func() engine.Handler {
		return &Handler{client: client}
	}
}

func (h *Handler) Kind() api.HandlerKind {
	return api.HandlerKindProxy
}

func (h *Handler) InitialStep() api.StepID {
	return "init"
}

func (h *Handler) Step(
	ctx context.Context, sc *engine.StepContext, input api.Data,
) (*api.StepResult, error) {
	resp, err := h.exchange(ctx, sc, input)
	if err != nil {
		return nil, err
	}

	if resp.FlowID != "" {
		sc.Flow.Context[CtxExternalFlowID] = string(resp.FlowID)
	}
	if resp.StepID != "" {
		sc.Flow.CurrentStepID = resp.StepID
	}
	return MapStepResult(resp), nil
}

func (h *Handler) exchange(
	ctx context.Context, sc *engine.StepContext, input api.Data,
) (*api.ExternalFlowResponse, error) {
	externalID, ok := sc.Flow.Context[CtxExternalFlowID].(string)
	if !ok || externalID == "" {
		return h.client.StartConfigFlow(ctx, sc.Flow.Domain)
	}
	return h.client.HandleConfigFlowStep(
		ctx, api.ExternalFlowID(externalID), input,
	)
}

package proxy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/configflow/internal/assert/helpers"
	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/internal/proxy"
	"github.com/hearthhub/configflow/pkg/api"
)

func newProxyStep(t *testing.T, hub *helpers.FakeHubClient) (
	engine.Handler, *engine.StepContext,
) {
	t.Helper()
	handler := proxy.NewFactory(hub)()
	flow := api.NewFlowInstance("shelly", handler.Kind())
	flow.CurrentStepID = handler.InitialStep()
	return handler, &engine.StepContext{Flow: flow, StepID: flow.CurrentStepID}
}

func TestProxyStartsExternalFlow(t *testing.T) {
	hub := helpers.NewFakeHubClient()
	hub.Queue(&api.ExternalFlowResponse{
		Type:   api.ExternalTypeForm,
		FlowID: "ext-1",
		StepID: "credentials",
	})
	handler, sc := newProxyStep(t, hub)

	result, err := handler.Step(t.Context(), sc, nil)
	require.NoError(t, err)

	assert.Equal(t, api.ResultForm, result.Type)
	assert.Equal(t, []api.Domain{"shelly"}, hub.Started())
	assert.Equal(t, "ext-1", sc.Flow.Context[proxy.CtxExternalFlowID])
	assert.Equal(t, api.StepID("credentials"), sc.Flow.CurrentStepID)
}

func TestProxyForwardsSubsequentSteps(t *testing.T) {
	hub := helpers.NewFakeHubClient()
	hub.Queue(
		&api.ExternalFlowResponse{
			Type:   api.ExternalTypeForm,
			FlowID: "ext-1",
			StepID: "credentials",
		},
		&api.ExternalFlowResponse{
			Type:  api.ExternalTypeCreateEntry,
			Title: "Shelly Plug",
		},
	)
	handler, sc := newProxyStep(t, hub)

	_, err := handler.Step(t.Context(), sc, nil)
	require.NoError(t, err)

	result, err := handler.Step(t.Context(), sc, api.Data{"host": "h"})
	require.NoError(t, err)

	assert.Equal(t, api.ResultCreateEntry, result.Type)
	assert.Equal(t, []api.ExternalFlowID{"ext-1"}, hub.Handled())
}

func TestProxyHubFailurePropagates(t *testing.T) {
	hub := helpers.NewFakeHubClient()
	hub.Fail(errors.New("hub went away"))
	handler, sc := newProxyStep(t, hub)

	_, err := handler.Step(t.Context(), sc, nil)
	assert.ErrorContains(t, err, "hub went away")
}

func TestProxyAbortPassthrough(t *testing.T) {
	hub := helpers.NewFakeHubClient()
	hub.Queue(&api.ExternalFlowResponse{
		Type:   api.ExternalTypeAbort,
		Reason: "already_configured",
	})
	handler, sc := newProxyStep(t, hub)

	result, err := handler.Step(t.Context(), sc, nil)
	require.NoError(t, err)
	assert.Equal(t, api.ResultAbort, result.Type)
	assert.Equal(t, "already_configured", result.Reason)
}

package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	as "github.com/hearthhub/configflow/internal/assert"
	"github.com/hearthhub/configflow/internal/assert/helpers"
	"github.com/hearthhub/configflow/internal/assert/wait"
	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/pkg/api"
)

func TestStartFlowEmptyDomain(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)

	_, _, err := env.Engine.StartFlow(t.Context(), "")
	assert.ErrorIs(t, err, api.ErrDomainEmpty)
}

func TestMQTTFlowCompletes(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)
	ctx := t.Context()

	flow, result, err := env.Engine.StartFlow(ctx, "mqtt")
	require.NoError(t, err)
	a.FormShown(result, "user")

	result, err = env.Engine.AdvanceFlow(ctx, flow.ID, api.Data{
		"broker": "10.0.0.5",
	})
	require.NoError(t, err)
	a.EntryCreated(result, "MQTT")
	assert.Equal(t, 1883, result.Data["port"])

	loaded, err := env.Engine.GetFlow(ctx, flow.ID)
	require.NoError(t, err)
	a.FlowStatus(loaded, api.FlowCompleted)

	entries, err := env.Engine.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "MQTT", entries[0].Title)
	assert.Equal(t, flow.ID, entries[0].FlowID)
}

func TestInvalidInputReShowsForm(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)
	ctx := t.Context()

	flow, _, err := env.Engine.StartFlow(ctx, "mqtt")
	require.NoError(t, err)

	// required broker is missing
	result, err := env.Engine.AdvanceFlow(ctx, flow.ID, api.Data{})
	require.NoError(t, err)
	a.FieldError(result, "broker")

	// the flow is untouched and a valid retry still works
	loaded, err := env.Engine.GetFlow(ctx, flow.ID)
	require.NoError(t, err)
	a.FlowStatus(loaded, api.FlowInProgress)
	assert.NotContains(t, loaded.Data, api.Name("broker"))

	result, err = env.Engine.AdvanceFlow(ctx, flow.ID, api.Data{
		"broker": "10.0.0.5",
	})
	require.NoError(t, err)
	a.EntryCreated(result, "MQTT")
}

func TestUnknownFieldRejected(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)
	ctx := t.Context()

	flow, _, err := env.Engine.StartFlow(ctx, "mqtt")
	require.NoError(t, err)

	result, err := env.Engine.AdvanceFlow(ctx, flow.ID, api.Data{
		"broker": "10.0.0.5",
		"rogue":  "value",
	})
	require.NoError(t, err)
	a.FieldError(result, "rogue")
}

func TestHiddenFieldNotAccepted(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)
	ctx := t.Context()

	flow, _, err := env.Engine.StartFlow(ctx, "mqtt")
	require.NoError(t, err)

	// password is conditional on a non-empty username
	result, err := env.Engine.AdvanceFlow(ctx, flow.ID, api.Data{
		"broker":   "10.0.0.5",
		"username": "",
		"password": "hunter2",
	})
	require.NoError(t, err)
	a.FieldError(result, "password")
}

func TestZigbeeFallsBackToManualEntry(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)
	ctx := t.Context()

	// the discoverer reports no radios
	flow, result, err := env.Engine.StartFlow(ctx, "zigbee")
	require.NoError(t, err)
	a.FormShown(result, "manual")
	assert.Contains(t, result.Schema, api.Name("serial_port"))
	assert.Contains(t, result.Schema, api.Name("radio_type"))

	result, err = env.Engine.AdvanceFlow(ctx, flow.ID, api.Data{
		"serial_port": "/dev/ttyUSB0",
	})
	require.NoError(t, err)
	a.EntryCreated(result, "Zigbee Coordinator")
	assert.Equal(t, "znp", result.Data["radio_type"])
}

func TestZigbeeShowsDiscoveredRadios(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)

	env.Discovery.SetDevices("zigbee", []api.DiscoveredDevice{
		{ID: "usb0", Name: "Sonoff Dongle", Protocol: "zigbee"},
	})

	_, result, err := env.Engine.StartFlow(t.Context(), "zigbee")
	require.NoError(t, err)
	a.FormShown(result, "pick")
	require.Contains(t, result.Schema, api.Name("device"))
	assert.Equal(t, "usb0", result.Schema["device"].Options[0].Value)
}

func TestHandlerErrorAbortsFlow(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)

	env.Discovery.SetError("zigbee", errors.New("device offline"))

	flow, result, err := env.Engine.StartFlow(t.Context(), "zigbee")
	require.NoError(t, err)
	a.Aborted(result, "device offline")

	loaded, err := env.Engine.GetFlow(t.Context(), flow.ID)
	require.NoError(t, err)
	a.FlowStatus(loaded, api.FlowAborted)
}

func TestHandlerPanicAbortsFlow(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	a := as.New(t)

	env.Registry.Register("boomer", func() engine.Handler {
		return panicHandler{}
	})

	flow, result, err := env.Engine.StartFlow(t.Context(), "boomer")
	require.NoError(t, err)
	a.Aborted(result, "kaboom")

	loaded, err := env.Engine.GetFlow(t.Context(), flow.ID)
	require.NoError(t, err)
	a.FlowStatus(loaded, api.FlowAborted)
}

func TestTerminalFlowRejectsSubmissions(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	ctx := t.Context()

	flow, _, err := env.Engine.StartFlow(ctx, "mqtt")
	require.NoError(t, err)

	_, err = env.Engine.AdvanceFlow(ctx, flow.ID, api.Data{
		"broker": "10.0.0.5",
	})
	require.NoError(t, err)

	_, err = env.Engine.AdvanceFlow(ctx, flow.ID, api.Data{
		"broker": "10.0.0.6",
	})
	assert.ErrorIs(t, err, engine.ErrFlowTerminal)

	_, err = env.Engine.ConfirmFlow(ctx, flow.ID, nil)
	assert.ErrorIs(t, err, engine.ErrFlowTerminal)
}

func TestAdvanceUnknownFlow(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()

	_, err := env.Engine.AdvanceFlow(t.Context(), "missing", api.Data{})
	assert.ErrorIs(t, err, engine.ErrFlowNotFound)
}

func TestConfirmFlowCreatesEntry(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)
	ctx := t.Context()

	flow, _, err := env.Engine.StartFlow(ctx, "mqtt")
	require.NoError(t, err)

	result, err := env.Engine.ConfirmFlow(ctx, flow.ID, api.Data{
		"broker": "10.0.0.5",
		"title":  "Main Broker",
	})
	require.NoError(t, err)
	a.EntryCreated(result, "Main Broker")

	entries, err := env.Engine.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Main Broker", entries[0].Title)
}

func TestConfirmFlowTitleFallsBackToDomain(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)
	ctx := t.Context()

	flow, _, err := env.Engine.StartFlow(ctx, "mqtt")
	require.NoError(t, err)

	result, err := env.Engine.ConfirmFlow(ctx, flow.ID, api.Data{
		"broker": "10.0.0.5",
	})
	require.NoError(t, err)
	a.EntryCreated(result, "mqtt")
}

func TestFlowLifecycleEvents(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	ctx := t.Context()

	consumer := env.Hub.NewConsumer()
	defer consumer.Close()

	flow, _, err := env.Engine.StartFlow(ctx, "mqtt")
	require.NoError(t, err)
	wait.On(t, consumer).ForEvent(wait.FlowStarted(flow.ID))

	_, err = env.Engine.AdvanceFlow(ctx, flow.ID, api.Data{
		"broker": "10.0.0.5",
	})
	require.NoError(t, err)
	wait.On(t, consumer).ForEvent(wait.EntryCreated(flow.ID))
	wait.On(t, consumer).ForEvent(wait.FlowCompleted(flow.ID))
}

func TestRegistryFallsBackToProxy(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)

	env.FakeHub.Queue(&api.ExternalFlowResponse{
		Type:   api.ExternalTypeForm,
		FlowID: "ext-42",
		StepID: "link",
	})

	_, result, err := env.Engine.StartFlow(t.Context(), "shelly")
	require.NoError(t, err)
	a.FormShown(result, "link")
	assert.Equal(t, []api.Domain{"shelly"}, env.FakeHub.Started())
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	env := helpers.NewTestEngine(t)
	defer env.Cleanup()
	env.RegisterBuiltins(t)
	a := as.New(t)

	env.Registry.Register("mqtt", func() engine.Handler {
		return panicHandler{}
	})

	_, result, err := env.Engine.StartFlow(t.Context(), "mqtt")
	require.NoError(t, err)
	a.Aborted(result, "kaboom")
}

type panicHandler struct{}

func (panicHandler) Kind() api.HandlerKind   { return api.HandlerKindManual }
func (panicHandler) InitialStep() api.StepID { return "user" }

func (panicHandler) Step(
	context.Context, *engine.StepContext, api.Data,
) (*api.StepResult, error) {
	panic("kaboom")
}

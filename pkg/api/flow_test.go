package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/configflow/pkg/api"
)

func TestNewFlowInstance(t *testing.T) {
	flow := api.NewFlowInstance("zigbee", api.HandlerKindDiscovery)

	assert.NotEmpty(t, flow.ID)
	assert.Equal(t, api.Domain("zigbee"), flow.Domain)
	assert.Equal(t, api.HandlerKindDiscovery, flow.HandlerKind)
	assert.Equal(t, api.FlowInProgress, flow.Status)
	assert.NotNil(t, flow.Data)
	assert.NotNil(t, flow.Context)
	assert.False(t, flow.CreatedAt.IsZero())
}

func TestFlowInstanceValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		flow := api.NewFlowInstance("zigbee", api.HandlerKindManual)
		assert.NoError(t, flow.Validate())
	})

	t.Run("empty id", func(t *testing.T) {
		flow := api.NewFlowInstance("zigbee", api.HandlerKindManual)
		flow.ID = ""
		assert.ErrorIs(t, flow.Validate(), api.ErrFlowIDEmpty)
	})

	t.Run("empty domain", func(t *testing.T) {
		flow := api.NewFlowInstance("", api.HandlerKindManual)
		assert.ErrorIs(t, flow.Validate(), api.ErrDomainEmpty)
	})
}

func TestFlowInstanceIsTerminal(t *testing.T) {
	flow := api.NewFlowInstance("zigbee", api.HandlerKindManual)
	assert.False(t, flow.IsTerminal())

	flow.Status = api.FlowCompleted
	assert.True(t, flow.IsTerminal())

	flow.Status = api.FlowAborted
	assert.True(t, flow.IsTerminal())
}

func TestFlowInstanceContextNotSerialized(t *testing.T) {
	flow := api.NewFlowInstance("zigbee", api.HandlerKindManual)
	flow.Context["token"] = "secret"

	data, err := json.Marshal(flow)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

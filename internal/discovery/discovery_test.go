package discovery_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/configflow/internal/discovery"
	"github.com/hearthhub/configflow/pkg/api"
)

func TestWaitForDevicesReturnsCanned(t *testing.T) {
	d := discovery.NewStatic()
	d.SetDevices("zigbee", []api.DiscoveredDevice{
		{ID: "usb0", Name: "Dongle", Protocol: "zigbee"},
	})

	devices, err := discovery.WaitForDevices(
		t.Context(), d, "zigbee", api.Data{}, time.Second,
	)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "usb0", devices[0].ID)
}

func TestWaitForDevicesEmptyIsNotAnError(t *testing.T) {
	d := discovery.NewStatic()

	devices, err := discovery.WaitForDevices(
		t.Context(), d, "zigbee", api.Data{}, time.Second,
	)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestWaitForDevicesTimeoutIsNotAnError(t *testing.T) {
	d := discovery.NewStatic()
	d.SetDevices("zigbee", []api.DiscoveredDevice{{ID: "usb0"}})
	d.SetDelay(200 * time.Millisecond)

	devices, err := discovery.WaitForDevices(
		t.Context(), d, "zigbee", api.Data{}, 20*time.Millisecond,
	)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestWaitForDevicesPropagatesFailure(t *testing.T) {
	d := discovery.NewStatic()
	d.SetError("zigbee", errors.New("device offline"))

	_, err := discovery.WaitForDevices(
		t.Context(), d, "zigbee", api.Data{}, time.Second,
	)
	assert.ErrorContains(t, err, "device offline")
}

func TestWaitForDevicesUnavailableCollaborator(t *testing.T) {
	d := discovery.NewStatic()
	d.SetAvailable(false)
	d.SetDevices("zigbee", []api.DiscoveredDevice{{ID: "usb0"}})

	devices, err := discovery.WaitForDevices(
		t.Context(), d, "zigbee", api.Data{}, time.Second,
	)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestNoneDiscoverer(t *testing.T) {
	devices, err := discovery.WaitForDevices(
		t.Context(), discovery.None{}, "zigbee", api.Data{}, time.Second,
	)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

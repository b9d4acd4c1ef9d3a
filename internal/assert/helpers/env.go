// Package helpers builds the environments that engine, server, and store
// tests run in: an in-memory Redis, an in-memory definition store, a
// scripted discoverer, and a fake hub client
package helpers

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/configflow/internal/definition"
	"github.com/hearthhub/configflow/internal/discovery"
	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/internal/handlers"
	"github.com/hearthhub/configflow/internal/proxy"
	"github.com/hearthhub/configflow/internal/store"
	"github.com/hearthhub/configflow/pkg/events"
)

// TestEngineEnv holds all the components needed for engine testing
type TestEngineEnv struct {
	Engine      *engine.Engine
	Registry    *engine.Registry
	Redis       *miniredis.Miniredis
	Flows       *store.Store
	Definitions *definition.Store
	Discovery   *discovery.Static
	Hub         *events.Hub
	FakeHub     *FakeHubClient
	Cleanup     func()
}

// NewTestEngine creates a fully configured test engine environment with an
// in-memory Redis backend, in-memory definition store, and fake hub client
func NewTestEngine(t *testing.T) *TestEngineEnv {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)

	flows := store.New(store.Options{
		Addr:   server.Addr(),
		Prefix: "test",
	})

	defs, err := definition.OpenMemory()
	require.NoError(t, err)

	disc := discovery.NewStatic()
	fakeHub := NewFakeHubClient()
	registry := engine.NewRegistry(proxy.NewFactory(fakeHub))
	hub := events.NewHub()

	eng := engine.New(engine.Options{
		Registry:    registry,
		Flows:       flows,
		Definitions: defs,
		Discovery:   disc,
		Hub:         hub,
	})

	cleanup := func() {
		hub.Close()
		_ = defs.Close()
		_ = flows.Close()
		server.Close()
	}

	return &TestEngineEnv{
		Engine:      eng,
		Registry:    registry,
		Redis:       server,
		Flows:       flows,
		Definitions: defs,
		Discovery:   disc,
		Hub:         hub,
		FakeHub:     fakeHub,
		Cleanup:     cleanup,
	}
}

// RegisterBuiltins registers the shipped handlers into the environment's
// registry, wizard handlers included for any stored definitions
func (e *TestEngineEnv) RegisterBuiltins(t *testing.T) {
	t.Helper()
	err := handlers.RegisterBuiltinHandlers(
		t.Context(), e.Registry, e.Definitions,
		"https://auth.example.com",
	)
	require.NoError(t, err)
}

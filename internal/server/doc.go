// Package server exposes the config-flow engine over HTTP: flow lifecycle
// endpoints, the definition catalog, external-step callbacks, and a
// WebSocket event feed
package server

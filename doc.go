// Package configflow implements the guided setup engine used by the hub to
// attach new device and service integrations. A config flow is a small state
// machine: each step shows a form, waits for discovery, redirects to an
// external authorization page, or finishes by creating a config entry.
package configflow

const (
	// Name is the service name reported in logs and health responses
	Name = "configflow"

	// Version is the engine version reported in logs and health responses
	Version = "0.9.2"
)

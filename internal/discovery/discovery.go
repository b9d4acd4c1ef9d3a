// Package discovery defines the collaborator contract for polling candidate
// devices per protocol. The engine only ever calls it with a bounded timeout
// and treats an empty result as a normal outcome.
package discovery

import (
	"context"
	"time"

	"github.com/hearthhub/configflow/pkg/api"
)

type (
	// Discoverer supplies candidate devices reachable via a protocol
	Discoverer interface {
		Discover(
			ctx context.Context, protocol string, config api.Data,
		) ([]api.DiscoveredDevice, error)
		IsAvailable() bool
	}

	// None is the null collaborator: always available, never finds anything
	None struct{}
)

// DefaultTimeout bounds a discovery wait when the handler configures none
const DefaultTimeout = 10 * time.Second

var _ Discoverer = (*None)(nil)

func (None) Discover(
	context.Context, string, api.Data,
) ([]api.DiscoveredDevice, error) {
	return nil, nil
}

func (None) IsAvailable() bool {
	return true
}

// WaitForDevices runs one discovery call bounded by the timeout. Expiry of
// the timeout is not an error: whatever finite list the collaborator
// produced before the deadline is returned, possibly empty
func WaitForDevices(
	ctx context.Context, d Discoverer, protocol string, config api.Data,
	timeout time.Duration,
) ([]api.DiscoveredDevice, error) {
	if d == nil || !d.IsAvailable() {
		return nil, nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	devices, err := d.Discover(ctx, protocol, config)
	if err != nil {
		if ctx.Err() != nil {
			return devices, nil
		}
		return nil, err
	}
	return devices, nil
}

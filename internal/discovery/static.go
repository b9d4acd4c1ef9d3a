package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/hearthhub/configflow/pkg/api"
)

// Static is a canned-response collaborator used in tests and demos: it
// serves a fixed device list per protocol, optionally after a delay
type Static struct {
	devices   map[string][]api.DiscoveredDevice
	errs      map[string]error
	delay     time.Duration
	available bool
	mu        sync.Mutex
}

var _ Discoverer = (*Static)(nil)

// NewStatic creates an available collaborator with no devices
func NewStatic() *Static {
	return &Static{
		devices:   map[string][]api.DiscoveredDevice{},
		errs:      map[string]error{},
		available: true,
	}
}

// SetDevices replaces the canned device list for a protocol
func (s *Static) SetDevices(protocol string, devices []api.DiscoveredDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[protocol] = devices
}

// SetError makes discovery for a protocol fail with err
func (s *Static) SetError(protocol string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[protocol] = err
}

// SetDelay makes every discovery call wait before answering
func (s *Static) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetAvailable toggles the collaborator's availability
func (s *Static) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = available
}

func (s *Static) Discover(
	ctx context.Context, protocol string, _ api.Data,
) ([]api.DiscoveredDevice, error) {
	s.mu.Lock()
	delay := s.delay
	err := s.errs[protocol]
	devices := append([]api.DiscoveredDevice{}, s.devices[protocol]...)
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (s *Static) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

package helpers

import (
	"context"
	"sync"

	"github.com/hearthhub/configflow/pkg/api"
)

// FakeHubClient is a scripted hub for proxy handler tests. Responses are
// consumed in the order they were queued
type FakeHubClient struct {
	responses []*api.ExternalFlowResponse
	err       error
	started   []api.Domain
	handled   []api.ExternalFlowID
	mu        sync.Mutex
}

// NewFakeHubClient creates an empty scripted hub client
func NewFakeHubClient() *FakeHubClient {
	return &FakeHubClient{}
}

// Queue appends responses to the script
func (f *FakeHubClient) Queue(responses ...*api.ExternalFlowResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, responses...)
}

// Fail makes every subsequent call return err
func (f *FakeHubClient) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Started returns the domains passed to StartConfigFlow, in order
func (f *FakeHubClient) Started() []api.Domain {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Domain{}, f.started...)
}

// Handled returns the external flow IDs passed to HandleConfigFlowStep
func (f *FakeHubClient) Handled() []api.ExternalFlowID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.ExternalFlowID{}, f.handled...)
}

func (f *FakeHubClient) StartConfigFlow(
	_ context.Context, domain api.Domain,
) (*api.ExternalFlowResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, domain)
	return f.next()
}

func (f *FakeHubClient) HandleConfigFlowStep(
	_ context.Context, flowID api.ExternalFlowID, _ api.Data,
) (*api.ExternalFlowResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handled = append(f.handled, flowID)
	return f.next()
}

func (f *FakeHubClient) next() (*api.ExternalFlowResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &api.ExternalFlowResponse{
			Type:   api.ExternalTypeAbort,
			Reason: "no scripted response",
		}, nil
	}
	res := f.responses[0]
	f.responses = f.responses[1:]
	return res, nil
}

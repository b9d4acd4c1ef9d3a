// Package proxy makes any hub-native integration configurable without a
// bespoke local handler by forwarding every step to an external hub's own
// config flow API and translating its responses into the local step-result
// contract.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hearthhub/configflow/pkg/api"
	"github.com/hearthhub/configflow/pkg/log"
)

type (
	// HubClient is the contract of the external hub's config flow API
	HubClient interface {
		StartConfigFlow(
			ctx context.Context, domain api.Domain,
		) (*api.ExternalFlowResponse, error)
		HandleConfigFlowStep(
			ctx context.Context, flowID api.ExternalFlowID, input api.Data,
		) (*api.ExternalFlowResponse, error)
	}

	// HTTPHubClient talks to a real external hub over HTTP
	HTTPHubClient struct {
		httpClient *http.Client
		baseURL    string
		token      string
	}
)

var (
	ErrHubUnavailable = errors.New("external hub unavailable")
	ErrHubHTTPError   = errors.New("external hub returned HTTP error")
)

var _ HubClient = (*HTTPHubClient)(nil)

// NewHTTPHubClient creates a client for the hub at baseURL, authenticating
// with the given bearer token
func NewHTTPHubClient(
	baseURL, token string, timeout time.Duration,
) *HTTPHubClient {
	return &HTTPHubClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		token:   token,
	}
}

// StartConfigFlow starts an equivalent flow on the external hub
func (c *HTTPHubClient) StartConfigFlow(
	ctx context.Context, domain api.Domain,
) (*api.ExternalFlowResponse, error) {
	body := map[string]any{"handler": domain}
	url := c.baseURL + "/api/config/config_entries/flow"
	return c.post(ctx, url, body)
}

// HandleConfigFlowStep forwards submitted input to an external flow
func (c *HTTPHubClient) HandleConfigFlowStep(
	ctx context.Context, flowID api.ExternalFlowID, input api.Data,
) (*api.ExternalFlowResponse, error) {
	if input == nil {
		input = api.Data{}
	}
	url := fmt.Sprintf("%s/api/config/config_entries/flow/%s",
		c.baseURL, flowID)
	return c.post(ctx, url, input)
}

func (c *HTTPHubClient) post(
	ctx context.Context, url string, payload any,
) (*api.ExternalFlowResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, url, bytes.NewBuffer(body),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	dur := time.Since(start)
	if err != nil {
		slog.Error("External hub request failed",
			slog.String("url", url),
			slog.Duration("duration", dur),
			log.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrHubUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHubUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("External hub error",
			slog.String("url", url),
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(respBody)))
		return nil, fmt.Errorf("%w: HTTP %d", ErrHubHTTPError, resp.StatusCode)
	}

	var external api.ExternalFlowResponse
	if err := json.Unmarshal(respBody, &external); err != nil {
		return nil, fmt.Errorf("decoding hub response: %w", err)
	}
	return &external, nil
}

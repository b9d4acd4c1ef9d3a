package api

import (
	"encoding/json"
	"time"
)

type (
	// ExternalFlowID identifies a flow on the external hub
	ExternalFlowID string

	// ExternalFlowResponse is the response shape of the external hub's flow
	// API. MenuOptions and DataSchema are kept raw: the hub returns menu
	// options either as an array of strings or as an object of value->label
	// pairs, and data_schema entries vary by hub version
	ExternalFlowResponse struct {
		Type        string          `json:"type"`
		FlowID      ExternalFlowID  `json:"flow_id"`
		StepID      StepID          `json:"step_id,omitempty"`
		DataSchema  json.RawMessage `json:"data_schema,omitempty"`
		MenuOptions json.RawMessage `json:"menu_options,omitempty"`
		Title       string          `json:"title,omitempty"`
		Reason      string          `json:"reason,omitempty"`
		URL         string          `json:"url,omitempty"`
		Data        Data            `json:"data,omitempty"`
	}

	// DiscoveredDevice is one candidate produced by a discovery call. Values
	// are transient: consumed by the step that requested them, never stored
	DiscoveredDevice struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Protocol     string    `json:"protocol"`
		Identifiers  Data      `json:"identifiers,omitempty"`
		DiscoveredAt time.Time `json:"discovered_at"`
	}
)

const (
	ExternalTypeForm        = "form"
	ExternalTypeMenu        = "menu"
	ExternalTypeExternal    = "external"
	ExternalTypeCreateEntry = "create_entry"
	ExternalTypeAbort       = "abort"
)

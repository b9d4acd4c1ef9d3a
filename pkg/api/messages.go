package api

type (
	// StartFlowRequest contains parameters for starting a new flow
	StartFlowRequest struct {
		Domain string `json:"domain"`
	}

	// AdvanceFlowRequest carries the user's input for the current step
	AdvanceFlowRequest struct {
		Input Data `json:"input"`
	}

	// ConfirmFlowRequest carries the final fields of a flow confirmation
	ConfirmFlowRequest struct {
		Fields Data `json:"fields"`
	}

	// NextStepRequest asks which step follows stepID given the flow's data
	NextStepRequest struct {
		StepID   StepID `json:"step_id"`
		StepData Data   `json:"step_data"`
	}

	// FlowStartedResponse is returned when a flow start succeeds
	FlowStartedResponse struct {
		FlowID FlowID      `json:"flow_id"`
		Result *StepResult `json:"result"`
	}

	// NextStepResponse names the next step and its resolved component
	NextStepResponse struct {
		NextStepID StepID         `json:"next_step_id,omitempty"`
		Complete   bool           `json:"complete"`
		Component  *StepComponent `json:"component,omitempty"`
	}

	// StepComponent is the concrete UI contract for one step: the ordered,
	// currently visible subset of the step's fields
	StepComponent struct {
		StepID StepID     `json:"step_id"`
		Fields []Name     `json:"fields"`
		Schema StepSchema `json:"schema"`
	}

	// FlowsListResponse contains a list of flow instances
	FlowsListResponse struct {
		Flows []*FlowInstance `json:"flows"`
		Count int             `json:"count"`
	}

	// EntriesListResponse contains a list of config entries
	EntriesListResponse struct {
		Entries []*ConfigEntry `json:"entries"`
		Count   int            `json:"count"`
	}

	// DefinitionVersionsResponse lists a domain's definition versions,
	// newest first
	DefinitionVersionsResponse struct {
		Domain   Domain            `json:"domain"`
		Versions []*FlowDefinition `json:"versions"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Version string `json:"version"`
		Status  string `json:"status"`
	}

	// SubscribeRequest narrows a WebSocket client's event feed. An empty
	// filter list matches everything
	SubscribeRequest struct {
		Type       string   `json:"type"`
		Domains    []Domain `json:"domains"`
		EventTypes []string `json:"event_types"`
	}

	// ErrorResponse is the uniform error payload of the HTTP API
	ErrorResponse struct {
		Error  string      `json:"error"`
		Status int         `json:"status"`
		Fields FieldErrors `json:"fields,omitempty"`
	}
)

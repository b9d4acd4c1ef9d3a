package api

type (
	// ResultType discriminates the step result variants
	ResultType string

	// FieldErrors carries per-field validation messages
	FieldErrors map[Name][]string

	// StepResult is the outcome of evaluating one flow step. Exactly the
	// fields relevant to Type are populated
	StepResult struct {
		Type    ResultType  `json:"type"`
		StepID  StepID      `json:"step_id,omitempty"`
		Schema  StepSchema  `json:"schema,omitempty"`
		Errors  FieldErrors `json:"errors,omitempty"`
		Options []Option    `json:"options,omitempty"`
		URL     string      `json:"url,omitempty"`
		Title   string      `json:"title,omitempty"`
		Data    Data        `json:"data,omitempty"`
		Reason  string      `json:"reason,omitempty"`
	}
)

const (
	ResultForm         ResultType = "form"
	ResultMenu         ResultType = "menu"
	ResultExternalStep ResultType = "external_step"
	ResultCreateEntry  ResultType = "create_entry"
	ResultAbort        ResultType = "abort"
)

// NewFormResult builds a non-terminal result showing a form for the step
func NewFormResult(stepID StepID, schema StepSchema) *StepResult {
	return &StepResult{
		Type:   ResultForm,
		StepID: stepID,
		Schema: schema,
	}
}

// NewMenuResult builds a non-terminal result offering a choice of next steps
func NewMenuResult(stepID StepID, options []Option) *StepResult {
	return &StepResult{
		Type:    ResultMenu,
		StepID:  stepID,
		Options: options,
	}
}

// NewExternalStepResult builds a result that suspends the flow until an
// out-of-band callback completes
func NewExternalStepResult(url string) *StepResult {
	return &StepResult{
		Type: ResultExternalStep,
		URL:  url,
	}
}

// NewCreateEntryResult builds the terminal success result
func NewCreateEntryResult(title string, data Data) *StepResult {
	return &StepResult{
		Type:  ResultCreateEntry,
		Title: title,
		Data:  data,
	}
}

// NewAbortResult builds the terminal failure result
func NewAbortResult(reason string) *StepResult {
	return &StepResult{
		Type:   ResultAbort,
		Reason: reason,
	}
}

// WithErrors attaches per-field validation messages to a form result
func (r *StepResult) WithErrors(errs FieldErrors) *StepResult {
	r.Errors = errs
	return r
}

// IsTerminal reports whether the result ends the flow
func (r *StepResult) IsTerminal() bool {
	return r.Type == ResultCreateEntry || r.Type == ResultAbort
}

package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hearthhub/configflow/pkg/api"
)

// Wrapper wraps testify assertions with config-flow specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 100 * time.Millisecond

// New creates a new test assertion wrapper
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
	}
}

// FormShown asserts that a result re-renders a form for the given step
func (w *Wrapper) FormShown(r *api.StepResult, stepID api.StepID) {
	w.Helper()
	w.NotNil(r)
	w.Equal(api.ResultForm, r.Type)
	w.Equal(stepID, r.StepID)
	w.NotNil(r.Schema)
}

// MenuShown asserts that a result presents a menu for the given step
func (w *Wrapper) MenuShown(r *api.StepResult, stepID api.StepID) {
	w.Helper()
	w.NotNil(r)
	w.Equal(api.ResultMenu, r.Type)
	w.Equal(stepID, r.StepID)
	w.NotEmpty(r.Options)
}

// EntryCreated asserts that a result completed the flow with an entry
func (w *Wrapper) EntryCreated(r *api.StepResult, title string) {
	w.Helper()
	w.NotNil(r)
	w.Equal(api.ResultCreateEntry, r.Type)
	w.Equal(title, r.Title)
}

// Aborted asserts that a result aborted the flow for the given reason
func (w *Wrapper) Aborted(r *api.StepResult, reason string) {
	w.Helper()
	w.NotNil(r)
	w.Equal(api.ResultAbort, r.Type)
	if reason != "" {
		w.Contains(r.Reason, reason)
	}
}

// FieldError asserts that a form result carries an error for the field
func (w *Wrapper) FieldError(r *api.StepResult, field api.Name) {
	w.Helper()
	w.NotNil(r)
	w.Equal(api.ResultForm, r.Type)
	w.NotEmpty(r.Errors[field])
}

// FlowStatus asserts the status of a flow instance
func (w *Wrapper) FlowStatus(f *api.FlowInstance, status api.FlowStatus) {
	w.Helper()
	w.NotNil(f)
	w.Equal(status, f.Status)
}

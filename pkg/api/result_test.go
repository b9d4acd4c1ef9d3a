package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hearthhub/configflow/pkg/api"
)

func TestStepResultConstructors(t *testing.T) {
	t.Run("form", func(t *testing.T) {
		schema := api.StepSchema{
			"host": {Type: api.FieldTypeString},
		}
		r := api.NewFormResult("user", schema)
		assert.Equal(t, api.ResultForm, r.Type)
		assert.Equal(t, api.StepID("user"), r.StepID)
		assert.Equal(t, schema, r.Schema)
		assert.False(t, r.IsTerminal())
	})

	t.Run("menu", func(t *testing.T) {
		opts := api.SelectOptions([2]string{"a", "A"})
		r := api.NewMenuResult("pick", opts)
		assert.Equal(t, api.ResultMenu, r.Type)
		assert.Equal(t, opts, r.Options)
		assert.False(t, r.IsTerminal())
	})

	t.Run("external step", func(t *testing.T) {
		r := api.NewExternalStepResult("https://auth.example.com/authorize")
		assert.Equal(t, api.ResultExternalStep, r.Type)
		assert.Equal(t, "https://auth.example.com/authorize", r.URL)
		assert.False(t, r.IsTerminal())
	})

	t.Run("create entry", func(t *testing.T) {
		r := api.NewCreateEntryResult("Hue", api.Data{"host": "10.0.0.7"})
		assert.Equal(t, api.ResultCreateEntry, r.Type)
		assert.Equal(t, "Hue", r.Title)
		assert.True(t, r.IsTerminal())
	})

	t.Run("abort", func(t *testing.T) {
		r := api.NewAbortResult("already configured")
		assert.Equal(t, api.ResultAbort, r.Type)
		assert.Equal(t, "already configured", r.Reason)
		assert.True(t, r.IsTerminal())
	})
}

func TestStepResultWithErrors(t *testing.T) {
	r := api.NewFormResult("user", api.StepSchema{}).
		WithErrors(api.FieldErrors{
			"host": {"value is required"},
		})
	assert.Equal(t, api.ResultForm, r.Type)
	assert.Contains(t, r.Errors, api.Name("host"))
}

package conditional_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hearthhub/configflow/internal/conditional"
	"github.com/hearthhub/configflow/pkg/api"
)

func TestEvaluateNilConditional(t *testing.T) {
	assert.True(t, conditional.Evaluate(nil, api.Data{}))
}

func TestEvaluateOperators(t *testing.T) {
	data := api.Data{
		"mode":  "manual",
		"port":  float64(8883),
		"tags":  []any{"a", "b"},
		"hosts": "broker.local",
	}

	tests := []struct {
		name string
		cond *api.Conditional
		want bool
	}{
		{"equals match", &api.Conditional{
			Field: "mode", Operator: api.OpEquals, Value: "manual",
		}, true},
		{"equals mismatch", &api.Conditional{
			Field: "mode", Operator: api.OpEquals, Value: "auto",
		}, false},
		{"not equals", &api.Conditional{
			Field: "mode", Operator: api.OpNotEquals, Value: "auto",
		}, true},
		{"contains string", &api.Conditional{
			Field: "hosts", Operator: api.OpContains, Value: "broker",
		}, true},
		{"contains list", &api.Conditional{
			Field: "tags", Operator: api.OpContains, Value: "b",
		}, true},
		{"greater than", &api.Conditional{
			Field: "port", Operator: api.OpGreaterThan, Value: 1883,
		}, true},
		{"less than", &api.Conditional{
			Field: "port", Operator: api.OpLessThan, Value: 1883,
		}, false},
		{"in", &api.Conditional{
			Field: "mode", Operator: api.OpIn,
			Value: []any{"manual", "auto"},
		}, true},
		{"not in", &api.Conditional{
			Field: "mode", Operator: api.OpNotIn,
			Value: []any{"manual", "auto"},
		}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, conditional.Evaluate(tc.cond, data))
		})
	}
}

func TestEvaluateNumericEqualsAcrossTypes(t *testing.T) {
	// JSON decoding yields float64; definitions often carry ints
	data := api.Data{"port": float64(1883)}
	cond := &api.Conditional{
		Field: "port", Operator: api.OpEquals, Value: 1883,
	}
	assert.True(t, conditional.Evaluate(cond, data))
}

func TestEvaluateAbsentField(t *testing.T) {
	data := api.Data{}

	eq := &api.Conditional{
		Field: "mode", Operator: api.OpEquals, Value: "manual",
	}
	assert.False(t, conditional.Evaluate(eq, data))

	ne := &api.Conditional{
		Field: "mode", Operator: api.OpNotEquals, Value: "manual",
	}
	assert.True(t, conditional.Evaluate(ne, data))

	notIn := &api.Conditional{
		Field: "mode", Operator: api.OpNotIn, Value: []any{"manual"},
	}
	assert.True(t, conditional.Evaluate(notIn, data))
}

func TestEvaluateUnknownOperatorFailsOpen(t *testing.T) {
	cond := &api.Conditional{
		Field: "mode", Operator: "matches_regex", Value: ".*",
	}
	assert.True(t, conditional.Evaluate(cond, api.Data{"mode": "manual"}))

	// the default holds even before the referenced field has a value
	assert.True(t, conditional.Evaluate(cond, api.Data{}))
	assert.True(t, conditional.Evaluate(cond, nil))
}

func TestGetVisibleFieldsOrdering(t *testing.T) {
	schema := api.StepSchema{
		"port":     {Type: api.FieldTypeInteger, Order: 2},
		"host":     {Type: api.FieldTypeString, Order: 1},
		"password": {Type: api.FieldTypePassword, Order: 3},
		"username": {
			Type:  api.FieldTypeString,
			Order: 3,
		},
	}

	visible := conditional.GetVisibleFields(schema, api.Data{})
	assert.Equal(t, []api.Name{"host", "port", "password", "username"}, visible)
}

func TestGetVisibleFieldsIdempotent(t *testing.T) {
	schema := api.StepSchema{
		"username": {Type: api.FieldTypeString, Order: 1},
		"password": {
			Type:  api.FieldTypePassword,
			Order: 2,
			Conditional: &api.Conditional{
				Field:    "username",
				Operator: api.OpNotEquals,
				Value:    "",
			},
		},
	}
	data := api.Data{"username": "admin"}

	first := conditional.GetVisibleFields(schema, data)
	for range 10 {
		assert.Equal(t, first, conditional.GetVisibleFields(schema, data))
	}
}

func TestConditionalFieldHiddenUntilSatisfied(t *testing.T) {
	schema := api.StepSchema{
		"username": {Type: api.FieldTypeString, Order: 1},
		"password": {
			Type:  api.FieldTypePassword,
			Order: 2,
			Conditional: &api.Conditional{
				Field:    "username",
				Operator: api.OpNotEquals,
				Value:    "",
			},
		},
	}

	assert.Equal(t, []api.Name{"username"},
		conditional.GetVisibleFields(schema, api.Data{"username": ""}))
	assert.Equal(t, []api.Name{"username", "password"},
		conditional.GetVisibleFields(schema, api.Data{"username": "admin"}))
}

func TestGetFieldDependencyChain(t *testing.T) {
	schema := api.StepSchema{
		"a": {
			Type: api.FieldTypeString,
			Conditional: &api.Conditional{
				Field: "b", Operator: api.OpEquals, Value: "x",
			},
		},
		"b": {
			Type:      api.FieldTypeString,
			DependsOn: []api.Name{"c"},
		},
		"c": {Type: api.FieldTypeString},
	}

	chain := conditional.GetFieldDependencyChain(schema, "a")
	assert.Equal(t, []api.Name{"b", "c"}, chain)
}

func TestGetFieldDependencyChainCycleTerminates(t *testing.T) {
	schema := api.StepSchema{
		"a": {Type: api.FieldTypeString, DependsOn: []api.Name{"b"}},
		"b": {Type: api.FieldTypeString, DependsOn: []api.Name{"a"}},
	}

	chain := conditional.GetFieldDependencyChain(schema, "a")
	assert.Equal(t, []api.Name{"b"}, chain)
}

func TestShouldShowFieldNil(t *testing.T) {
	assert.False(t, conditional.ShouldShowField(nil, api.Data{}))
}

package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hearthhub/configflow/internal/conditional"
	"github.com/hearthhub/configflow/pkg/api"
)

// ValidationError reports submitted input that fails the step schema's field
// constraints. The flow is not aborted on validation failure; the caller is
// re-shown the same form with the per-field messages attached
type ValidationError struct {
	Fields api.FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for name, msgs := range e.Fields {
		parts = append(parts,
			fmt.Sprintf("%s: %s", name, strings.Join(msgs, "; ")))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// ValidateInput checks one step submission against the schema the step was
// shown with. Visibility is evaluated against the accumulated data with the
// submission layered on, so a field hidden by the user's own choices is
// neither required nor accepted
func ValidateInput(
	schema api.StepSchema, accumulated, input api.Data,
) *ValidationError {
	if len(schema) == 0 {
		return nil
	}

	merged := accumulated.Merge(input)
	errs := api.FieldErrors{}

	visible := map[api.Name]struct{}{}
	for _, name := range conditional.GetVisibleFields(schema, merged) {
		visible[name] = struct{}{}
	}

	for name := range input {
		field, ok := schema[name]
		if !ok {
			errs[name] = append(errs[name], "unknown field")
			continue
		}
		if _, show := visible[name]; !show {
			errs[name] = append(errs[name], "field is not applicable")
			continue
		}
		if msg := checkFieldValue(field, input[name]); msg != "" {
			errs[name] = append(errs[name], msg)
		}
	}

	for name, field := range schema {
		if !field.Required {
			continue
		}
		if _, show := visible[name]; !show {
			continue
		}
		if merged.Has(name) || field.Default != nil {
			continue
		}
		errs[name] = append(errs[name], "field is required")
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

func checkFieldValue(field *api.FieldSchema, value any) string {
	switch field.Type {
	case api.FieldTypeInteger:
		if !isInteger(value) {
			return "expected an integer"
		}
	case api.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return "expected a boolean"
		}
	case api.FieldTypeSelect:
		if !isOption(field.Options, value) {
			return "not a valid option"
		}
	case api.FieldTypeMultiSelect:
		items, ok := value.([]any)
		if !ok {
			return "expected a list of options"
		}
		for _, item := range items {
			if !isOption(field.Options, item) {
				return "not a valid option"
			}
		}
	case api.FieldTypeString, api.FieldTypePassword:
		if _, ok := value.(string); !ok {
			return "expected a string"
		}
	}
	return ""
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int64:
		return true
	case float64:
		return v == float64(int64(v))
	case string:
		_, err := strconv.ParseInt(v, 10, 64)
		return err == nil
	default:
		return false
	}
}

func isOption(options []api.Option, value any) bool {
	str, ok := value.(string)
	if !ok {
		return false
	}
	for _, opt := range options {
		if opt.Value == str {
			return true
		}
	}
	return false
}

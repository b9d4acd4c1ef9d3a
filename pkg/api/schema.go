package api

import (
	"errors"
	"fmt"
)

type (
	// FieldType is the input widget type of a schema field
	FieldType string

	// Operator names a conditional comparison
	Operator string

	// Conditional controls a field's visibility based on a previously
	// accumulated value
	Conditional struct {
		Field    Name     `json:"field"`
		Operator Operator `json:"operator"`
		Value    any      `json:"value"`
	}

	// Option is one choice of a select field
	Option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}

	// FieldSchema describes one form field. Order gives deterministic field
	// ordering within a step; ties break on field name
	FieldSchema struct {
		Type        FieldType    `json:"type"`
		Label       string       `json:"label,omitempty"`
		Required    bool         `json:"required,omitempty"`
		Default     any          `json:"default,omitempty"`
		Options     []Option     `json:"options,omitempty"`
		Conditional *Conditional `json:"conditional,omitempty"`
		DependsOn   []Name       `json:"depends_on,omitempty"`
		Order       int          `json:"order,omitempty"`
	}

	// StepSchema maps field names to their definitions for one step
	StepSchema map[Name]*FieldSchema
)

const (
	FieldTypeString      FieldType = "string"
	FieldTypePassword    FieldType = "password"
	FieldTypeInteger     FieldType = "integer"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multi_select"

	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
)

var (
	ErrFieldNameEmpty   = errors.New("field name empty")
	ErrFieldNil         = errors.New("field has nil definition")
	ErrInvalidFieldType = errors.New("invalid field type")
	ErrSelectNoOptions  = errors.New("select field has no options")
)

var validFieldTypes = map[FieldType]struct{}{
	FieldTypeString:      {},
	FieldTypePassword:    {},
	FieldTypeInteger:     {},
	FieldTypeBoolean:     {},
	FieldTypeSelect:      {},
	FieldTypeMultiSelect: {},
}

// SelectOptions builds the option list for a synthesized select field from
// value/label pairs
func SelectOptions(pairs ...[2]string) []Option {
	res := make([]Option, 0, len(pairs))
	for _, p := range pairs {
		res = append(res, Option{Value: p[0], Label: p[1]})
	}
	return res
}

// Validate checks a single field definition in isolation
func (f *FieldSchema) Validate(name Name) error {
	if name == "" {
		return ErrFieldNameEmpty
	}
	if f == nil {
		return ErrFieldNil
	}
	if _, ok := validFieldTypes[f.Type]; !ok {
		return fmt.Errorf("%w: %q on field %s", ErrInvalidFieldType, f.Type, name)
	}
	if f.Type == FieldTypeSelect || f.Type == FieldTypeMultiSelect {
		if len(f.Options) == 0 {
			return fmt.Errorf("%w: %s", ErrSelectNoOptions, name)
		}
	}
	return nil
}

// References returns every field name this field depends on, explicit
// depends_on entries first, then the conditional's field
func (f *FieldSchema) References() []Name {
	var refs []Name
	refs = append(refs, f.DependsOn...)
	if f.Conditional != nil && f.Conditional.Field != "" {
		refs = append(refs, f.Conditional.Field)
	}
	return refs
}

// Validate checks every field of a step schema
func (s StepSchema) Validate() error {
	for name, field := range s {
		if err := field.Validate(name); err != nil {
			return err
		}
	}
	return nil
}

package proxy

import (
	"fmt"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/hearthhub/configflow/pkg/api"
)

// FieldNextStep is the synthesized select field a bare external menu is
// flattened into: the local UI layer only understands form and
// menu-as-form, not a menu primitive
const FieldNextStep api.Name = "next_step_id"

// externalFieldTypes maps the hub's data_schema type names onto local field
// types. Anything unrecognized renders as a plain string input
var externalFieldTypes = map[string]api.FieldType{
	"string":       api.FieldTypeString,
	"text":         api.FieldTypeString,
	"password":     api.FieldTypePassword,
	"integer":      api.FieldTypeInteger,
	"int":          api.FieldTypeInteger,
	"boolean":      api.FieldTypeBoolean,
	"bool":         api.FieldTypeBoolean,
	"select":       api.FieldTypeSelect,
	"multi_select": api.FieldTypeMultiSelect,
}

var resultMappers = map[string]func(*api.ExternalFlowResponse) *api.StepResult{
	api.ExternalTypeCreateEntry: mapCreateEntry,
	api.ExternalTypeAbort:       mapAbort,
	api.ExternalTypeMenu:        mapMenu,
	api.ExternalTypeForm:        mapForm,
	api.ExternalTypeExternal:    mapExternalStep,
}

// MapStepResult translates an external hub flow response into the local
// step-result contract. Dispatch is table-driven by the external type so
// protocol drift stays isolated here
func MapStepResult(resp *api.ExternalFlowResponse) *api.StepResult {
	mapper, ok := resultMappers[resp.Type]
	if !ok {
		return api.NewAbortResult(
			fmt.Sprintf("unsupported external result type: %q", resp.Type))
	}
	return mapper(resp)
}

func mapCreateEntry(resp *api.ExternalFlowResponse) *api.StepResult {
	return api.NewCreateEntryResult(resp.Title, resp.Data)
}

func mapAbort(resp *api.ExternalFlowResponse) *api.StepResult {
	return api.NewAbortResult(resp.Reason)
}

// mapMenu synthesizes a bare external menu into a form with one select
// field whose options are the menu choices
func mapMenu(resp *api.ExternalFlowResponse) *api.StepResult {
	options := normalizeMenuOptions(resp.MenuOptions)
	schema := api.StepSchema{
		FieldNextStep: &api.FieldSchema{
			Type:     api.FieldTypeSelect,
			Label:    "Next step",
			Required: true,
			Options:  options,
		},
	}
	result := api.NewFormResult(resp.StepID, schema)
	result.Data = embedFlowID(resp)
	return result
}

func mapForm(resp *api.ExternalFlowResponse) *api.StepResult {
	result := api.NewFormResult(resp.StepID, mapDataSchema(resp.DataSchema))
	result.Data = embedFlowID(resp)
	return result
}

func mapExternalStep(resp *api.ExternalFlowResponse) *api.StepResult {
	result := api.NewExternalStepResult(resp.URL)
	result.Data = embedFlowID(resp)
	return result
}

// normalizeMenuOptions accepts both shapes the external API produces: an
// array of strings, or an object of value->label pairs
func normalizeMenuOptions(raw []byte) []api.Option {
	parsed := gjson.ParseBytes(raw)

	var options []api.Option
	switch {
	case parsed.IsArray():
		for _, item := range parsed.Array() {
			value := item.String()
			options = append(options, api.Option{Value: value, Label: value})
		}
	case parsed.IsObject():
		parsed.ForEach(func(key, value gjson.Result) bool {
			options = append(options, api.Option{
				Value: key.String(),
				Label: value.String(),
			})
			return true
		})
		slices.SortFunc(options, func(a, b api.Option) int {
			switch {
			case a.Value < b.Value:
				return -1
			case a.Value > b.Value:
				return 1
			default:
				return 0
			}
		})
	}
	return options
}

// mapDataSchema converts the hub's data_schema array field-by-field into
// local field schemas, preserving the external ordering
func mapDataSchema(raw []byte) api.StepSchema {
	schema := api.StepSchema{}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return schema
	}

	order := 0
	parsed.ForEach(func(_, entry gjson.Result) bool {
		name := api.Name(entry.Get("name").String())
		if name == "" {
			return true
		}

		fieldType, ok := externalFieldTypes[entry.Get("type").String()]
		if !ok {
			fieldType = api.FieldTypeString
		}

		field := &api.FieldSchema{
			Type:     fieldType,
			Label:    entry.Get("label").String(),
			Required: entry.Get("required").Bool(),
			Order:    order,
		}
		if def := entry.Get("default"); def.Exists() {
			field.Default = def.Value()
		}
		if opts := entry.Get("options"); opts.Exists() {
			field.Options = normalizeMenuOptions([]byte(opts.Raw))
		}

		schema[name] = field
		order++
		return true
	})
	return schema
}

// embedFlowID re-embeds the external flow id in the result's data so the
// caller's persistence layer can recover it on the next call
func embedFlowID(resp *api.ExternalFlowResponse) api.Data {
	if resp.FlowID == "" {
		return nil
	}
	return api.Data{CtxExternalFlowID: string(resp.FlowID)}
}

// Package conditional implements the pure evaluation of field visibility and
// step-transition predicates against a flow's accumulated data. No I/O
// happens here; everything operates on values already in memory.
package conditional

import (
	"slices"
	"strconv"
	"strings"

	"github.com/hearthhub/configflow/internal/util"
	"github.com/hearthhub/configflow/pkg/api"
)

// Evaluate reports whether the conditional holds against the accumulated
// data. A nil conditional always holds. An unknown operator evaluates to
// true: a malformed definition must not hide a field the user could then
// never satisfy
func Evaluate(cond *api.Conditional, data api.Data) bool {
	if cond == nil {
		return true
	}

	if !knownOperator(cond.Operator) {
		return true
	}

	actual, ok := data[cond.Field]
	if !ok {
		// absent reference values only satisfy negated operators
		return cond.Operator == api.OpNotEquals || cond.Operator == api.OpNotIn
	}

	switch cond.Operator {
	case api.OpEquals:
		return looseEquals(actual, cond.Value)
	case api.OpNotEquals:
		return !looseEquals(actual, cond.Value)
	case api.OpContains:
		return contains(actual, cond.Value)
	case api.OpGreaterThan:
		return compareNumeric(actual, cond.Value, func(a, b float64) bool {
			return a > b
		})
	case api.OpLessThan:
		return compareNumeric(actual, cond.Value, func(a, b float64) bool {
			return a < b
		})
	case api.OpIn:
		return member(cond.Value, actual)
	case api.OpNotIn:
		return !member(cond.Value, actual)
	}
	return true
}

func knownOperator(op api.Operator) bool {
	switch op {
	case api.OpEquals, api.OpNotEquals, api.OpContains,
		api.OpGreaterThan, api.OpLessThan, api.OpIn, api.OpNotIn:
		return true
	}
	return false
}

// ShouldShowField reports whether the field is currently visible
func ShouldShowField(field *api.FieldSchema, data api.Data) bool {
	if field == nil {
		return false
	}
	return Evaluate(field.Conditional, data)
}

// GetVisibleFields returns the ordered subset of field names whose
// conditionals are satisfied (or that carry none). Ordering is by the
// field's Order, ties broken by name, so repeated calls over identical
// inputs yield identical output
func GetVisibleFields(schema api.StepSchema, data api.Data) []api.Name {
	visible := make([]api.Name, 0, len(schema))
	for name, field := range schema {
		if ShouldShowField(field, data) {
			visible = append(visible, name)
		}
	}
	slices.SortFunc(visible, func(a, b api.Name) int {
		oa, ob := schema[a].Order, schema[b].Order
		if oa != ob {
			return oa - ob
		}
		return strings.Compare(string(a), string(b))
	})
	return visible
}

// GetFieldDependencyChain collects, depth first, every field the named field
// depends on through explicit depends_on entries and implicit conditional
// references. A repeated name short-circuits the walk, so cyclic definitions
// terminate with a possibly-incomplete chain instead of looping
func GetFieldDependencyChain(schema api.StepSchema, name api.Name) []api.Name {
	chain := []api.Name{}
	visited := util.SetOf(name)
	walkDependencies(schema, name, visited, &chain)
	return chain
}

func walkDependencies(
	schema api.StepSchema, name api.Name, visited util.Set[api.Name],
	chain *[]api.Name,
) {
	field, ok := schema[name]
	if !ok {
		return
	}
	for _, ref := range field.References() {
		if visited.Contains(ref) {
			continue
		}
		visited.Add(ref)
		*chain = append(*chain, ref)
		walkDependencies(schema, ref, visited, chain)
	}
}

// looseEquals compares across the types JSON decoding produces: numbers
// compare numerically regardless of Go type, everything else by string form
func looseEquals(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return stringify(a) == stringify(b)
}

func contains(actual, want any) bool {
	switch v := actual.(type) {
	case string:
		return strings.Contains(v, stringify(want))
	case []any:
		for _, item := range v {
			if looseEquals(item, want) {
				return true
			}
		}
		return false
	case []string:
		return slices.Contains(v, stringify(want))
	default:
		return strings.Contains(stringify(actual), stringify(want))
	}
}

func member(list, value any) bool {
	switch v := list.(type) {
	case []any:
		for _, item := range v {
			if looseEquals(item, value) {
				return true
			}
		}
	case []string:
		return slices.Contains(v, stringify(value))
	}
	return false
}

func compareNumeric(a, b any, cmp func(a, b float64) bool) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}
	return cmp(af, bf)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

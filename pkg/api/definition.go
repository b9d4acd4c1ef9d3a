package api

import (
	"errors"
	"fmt"
	"time"
)

type (
	// TransitionRule routes a flow to its next step. Rules are evaluated in
	// order; a nil When matches unconditionally
	TransitionRule struct {
		When *Conditional `json:"when,omitempty"`
		Next StepID       `json:"next"`
	}

	// StepDefinition is one node of a flow definition's step graph
	StepDefinition struct {
		Schema      StepSchema       `json:"schema"`
		Transitions []TransitionRule `json:"transitions,omitempty"`
	}

	// FlowDefinition is a versioned, domain-keyed step graph. Versions are
	// immutable once created; at most one version per domain is active
	FlowDefinition struct {
		Domain      Domain                     `json:"domain"`
		Version     int                        `json:"version"`
		IsActive    bool                       `json:"is_active"`
		IsDefault   bool                       `json:"is_default"`
		InitialStep StepID                     `json:"initial_step"`
		Steps       map[StepID]*StepDefinition `json:"steps"`
		CreatedAt   time.Time                  `json:"created_at"`
	}
)

var (
	ErrDefinitionDomainEmpty = errors.New("definition domain empty")
	ErrDefinitionNoSteps     = errors.New("definition has no steps")
	ErrInitialStepUnknown    = errors.New("initial step not in step graph")
	ErrTransitionUnknownStep = errors.New("transition references unknown step")
	ErrDanglingReference     = errors.New("conditional references unknown field")
	ErrDependencyCycle       = errors.New("field dependency cycle")
)

// Validate checks the structural invariants of a definition: a resolvable
// initial step, transitions into known steps, no dangling conditional or
// depends_on references, and an acyclic field dependency graph
func (d *FlowDefinition) Validate() error {
	if d.Domain == "" {
		return ErrDefinitionDomainEmpty
	}
	if len(d.Steps) == 0 {
		return ErrDefinitionNoSteps
	}
	if _, ok := d.Steps[d.InitialStep]; !ok {
		return fmt.Errorf("%w: %s", ErrInitialStepUnknown, d.InitialStep)
	}

	known := d.fieldNames()
	for stepID, step := range d.Steps {
		if err := step.Schema.Validate(); err != nil {
			return fmt.Errorf("step %s: %w", stepID, err)
		}
		for name, field := range step.Schema {
			for _, ref := range field.References() {
				if _, ok := known[ref]; !ok {
					return fmt.Errorf("%w: %s -> %s", ErrDanglingReference,
						name, ref)
				}
			}
		}
		for _, rule := range step.Transitions {
			if _, ok := d.Steps[rule.Next]; !ok {
				return fmt.Errorf("%w: %s -> %s", ErrTransitionUnknownStep,
					stepID, rule.Next)
			}
			if rule.When != nil && rule.When.Field != "" {
				if _, ok := known[rule.When.Field]; !ok {
					return fmt.Errorf("%w: transition on %s",
						ErrDanglingReference, rule.When.Field)
				}
			}
		}
	}

	return d.checkCycles()
}

// Step returns the definition of one step, or nil if unknown
func (d *FlowDefinition) Step(id StepID) *StepDefinition {
	if d == nil {
		return nil
	}
	return d.Steps[id]
}

func (d *FlowDefinition) fieldNames() map[Name]*FieldSchema {
	fields := map[Name]*FieldSchema{}
	for _, step := range d.Steps {
		for name, field := range step.Schema {
			fields[name] = field
		}
	}
	return fields
}

func (d *FlowDefinition) checkCycles() error {
	fields := d.fieldNames()
	for start := range fields {
		if err := walkReferences(fields, start, map[Name]struct{}{}); err != nil {
			return err
		}
	}
	return nil
}

func walkReferences(
	fields map[Name]*FieldSchema, name Name, path map[Name]struct{},
) error {
	if _, onPath := path[name]; onPath {
		return fmt.Errorf("%w: %s", ErrDependencyCycle, name)
	}
	field, ok := fields[name]
	if !ok {
		return nil
	}
	path[name] = struct{}{}
	for _, ref := range field.References() {
		if err := walkReferences(fields, ref, path); err != nil {
			return err
		}
	}
	delete(path, name)
	return nil
}

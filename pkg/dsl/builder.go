package dsl

import (
	"errors"
	"fmt"

	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/domain"
)

// Builder manages the table construction. Rows keep the order they were
// added in, which is the order candidates of one step are evaluated.
type Builder struct {
	rows []*StepBuilder
}

// New creates a new table builder.
func New() *Builder {
	return &Builder{}
}

// Step appends a new row named name. Calling Step twice with the same name
// adds a second candidate for that step, usually guarded by When.
func (b *Builder) Step(name string) *StepBuilder {
	sb := &StepBuilder{
		step:    domain.Step{Name: name},
		builder: b,
	}
	b.rows = append(b.rows, sb)
	return sb
}

// Steps returns the rows built so far, in order.
func (b *Builder) Steps() []domain.Step {
	steps := make([]domain.Step, 0, len(b.rows))
	for _, sb := range b.rows {
		steps = append(steps, sb.step)
	}
	return steps
}

// Build checks every row and compiles the table into a memory Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	steps := b.Steps()
	var errs []error
	for i, step := range steps {
		if step.Name == "" {
			errs = append(errs, fmt.Errorf("row %d: step name is empty", i+1))
		}
		if len(step.PromptActions) != len(step.PromptFields) {
			errs = append(errs, fmt.Errorf("row %d (%s): %d prompts but %d prompt fields", i+1, step.Name, len(step.PromptActions), len(step.PromptFields)))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to build table: %w", errors.Join(errs...))
	}
	return memory.NewLoader(steps...), nil
}

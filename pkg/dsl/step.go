package dsl

import (
	"fmt"

	"github.com/aibee/wizard/pkg/domain"
)

// StepBuilder provides a fluent API for configuring one table row.
type StepBuilder struct {
	step    domain.Step
	builder *Builder
}

// After records the step this row is expected to follow. It is informational,
// as in the line format's previous-step column.
func (s *StepBuilder) After(previous string) *StepBuilder {
	s.step.PreviousStep = previous
	return s
}

// When guards the row with a condition such as "isProvincial" or "!isProvincial".
func (s *StepBuilder) When(condition string) *StepBuilder {
	s.step.Condition = condition
	return s
}

// Ask adds a question whose answer is stored under variable.
func (s *StepBuilder) Ask(question, variable string) *StepBuilder {
	s.step.Questions = append(s.step.Questions, question)
	s.step.Variables = append(s.step.Variables, variable)
	return s
}

// Prompt adds a prompt template whose completion is stored under field.
func (s *StepBuilder) Prompt(template, field string) *StepBuilder {
	s.step.PromptActions = append(s.step.PromptActions, template)
	s.step.PromptFields = append(s.step.PromptFields, field)
	return s
}

// Set adds a variable action assigning value to name when the row is taken.
func (s *StepBuilder) Set(name, value string) *StepBuilder {
	s.step.VariableActions = append(s.step.VariableActions, fmt.Sprintf("%s=%s", name, value))
	return s
}

// Go sets the step that follows this row.
func (s *StepBuilder) Go(next string) *StepBuilder {
	s.step.NextStep = next
	return s
}

// Terminal marks the row as the end of the flow.
func (s *StepBuilder) Terminal() *StepBuilder {
	s.step.NextStep = ""
	return s
}

// Build returns the underlying domain.Step.
func (s *StepBuilder) Build() domain.Step {
	return s.step
}

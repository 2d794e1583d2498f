package dto

import (
	"strings"

	"github.com/aibee/wizard/pkg/domain"
)

// StepMetadata is one entry of a YAML transition table.
// It uses "mapstructure" tags so that short and long key spellings (next, next_step) both decode.
type StepMetadata struct {
	Name string `json:"name" mapstructure:"name"`

	From         string `json:"from" mapstructure:"from"`
	PreviousStep string `json:"previous_step" mapstructure:"previous_step"`

	Condition string `json:"condition" mapstructure:"condition"`

	// Questions and Variables may be given as parallel lists or as Ask pairs.
	Questions []string           `json:"questions" mapstructure:"questions"`
	Variables []string           `json:"variables" mapstructure:"variables"`
	Ask       []QuestionMetadata `json:"ask" mapstructure:"ask"`

	PromptActions []string         `json:"prompt_actions" mapstructure:"prompt_actions"`
	PromptFields  []string         `json:"prompt_fields" mapstructure:"prompt_fields"`
	Prompts       []PromptMetadata `json:"prompts" mapstructure:"prompts"`

	// Set holds "key=value" assignments.
	Set             []string `json:"set" mapstructure:"set"`
	VariableActions []string `json:"variable_actions" mapstructure:"variable_actions"`

	Next     string `json:"next" mapstructure:"next"`
	NextStep string `json:"next_step" mapstructure:"next_step"`
}

// QuestionMetadata pairs a question with the variable receiving its answer.
type QuestionMetadata struct {
	Question string `json:"question" mapstructure:"question"`
	Variable string `json:"variable" mapstructure:"variable"`
}

// PromptMetadata pairs a prompt template with the field receiving its result.
type PromptMetadata struct {
	Action string `json:"action" mapstructure:"action"`
	Field  string `json:"field" mapstructure:"field"`
}

// ToStep converts the metadata into a domain step. The literal "null" means absent.
func (m StepMetadata) ToStep() domain.Step {
	step := domain.Step{
		Name:            m.Name,
		PreviousStep:    absent(first(m.PreviousStep, m.From)),
		Condition:       absent(m.Condition),
		Questions:       append([]string{}, m.Questions...),
		Variables:       append([]string{}, m.Variables...),
		PromptActions:   append([]string{}, m.PromptActions...),
		PromptFields:    append([]string{}, m.PromptFields...),
		VariableActions: append(append([]string{}, m.VariableActions...), m.Set...),
		NextStep:        absent(first(m.NextStep, m.Next)),
	}
	for _, q := range m.Ask {
		step.Questions = append(step.Questions, q.Question)
		step.Variables = append(step.Variables, q.Variable)
	}
	for _, p := range m.Prompts {
		step.PromptActions = append(step.PromptActions, p.Action)
		step.PromptFields = append(step.PromptFields, p.Field)
	}
	return step
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func absent(s string) string {
	s = strings.TrimSpace(s)
	if s == "null" {
		return ""
	}
	return s
}

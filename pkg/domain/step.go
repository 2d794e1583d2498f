package domain

// Step is one row of the transition table: a candidate workflow node guarded by a condition.
// Several steps may share a Name; they form a group evaluated in table order.
type Step struct {
	Name         string `json:"name" yaml:"name"`
	PreviousStep string `json:"previous_step,omitempty" yaml:"previous_step,omitempty"`

	// Condition is a variable name, optionally prefixed with "!".
	// Empty means the step always matches.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	// Questions and Variables are paired positionally.
	Questions []string `json:"questions" yaml:"questions"`
	Variables []string `json:"variables" yaml:"variables"`

	// PromptActions are templates sent to the LLM; PromptFields name where each result is stored.
	PromptActions []string `json:"prompt_actions,omitempty" yaml:"prompt_actions,omitempty"`
	PromptFields  []string `json:"prompt_fields,omitempty" yaml:"prompt_fields,omitempty"`

	// VariableActions are literal "key=value" assignments applied when the step is entered.
	VariableActions []string `json:"variable_actions,omitempty" yaml:"variable_actions,omitempty"`

	// NextStep is the following step name. Empty means terminal.
	NextStep string `json:"next_step,omitempty" yaml:"next_step,omitempty"`
}

// Terminal reports whether the step has no successor.
func (s Step) Terminal() bool {
	return s.NextStep == ""
}

// Table is the loaded transition table. Steps are grouped by name and each
// group keeps the order in which its steps appeared in the source.
type Table struct {
	names  []string
	groups map[string][]Step
}

// NewTable builds a table from steps in source order.
func NewTable(steps ...Step) *Table {
	t := &Table{groups: make(map[string][]Step)}
	for _, s := range steps {
		t.Add(s)
	}
	return t
}

// Add appends a step to its name group.
func (t *Table) Add(step Step) {
	if t.groups == nil {
		t.groups = make(map[string][]Step)
	}
	if _, exists := t.groups[step.Name]; !exists {
		t.names = append(t.names, step.Name)
	}
	t.groups[step.Name] = append(t.groups[step.Name], step)
}

// Candidates returns the steps registered under name, in table order.
func (t *Table) Candidates(name string) []Step {
	if t == nil {
		return nil
	}
	return t.groups[name]
}

// Has reports whether any step is registered under name.
func (t *Table) Has(name string) bool {
	return len(t.Candidates(name)) > 0
}

// Names returns the step names in order of first appearance.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return t.names
}

// Steps returns every step, grouped by name in order of first appearance.
func (t *Table) Steps() []Step {
	if t == nil {
		return nil
	}
	var out []Step
	for _, name := range t.names {
		out = append(out, t.groups[name]...)
	}
	return out
}

// Len returns the total number of steps.
func (t *Table) Len() int {
	n := 0
	if t == nil {
		return n
	}
	for _, g := range t.groups {
		n += len(g)
	}
	return n
}

// Options describes what the current step asks for.
type Options struct {
	StepName  string   `json:"step"`
	Questions []string `json:"questions"`
	Variables []string `json:"variables"`
	NextStep  string   `json:"next,omitempty"`
}

// Advance is the outcome of submitting answers.
type Advance struct {
	Session *Session `json:"session"`

	// FromStep is the step the answers were submitted to.
	FromStep string `json:"from"`

	// NextStep is the new current step; empty when the workflow completed.
	NextStep string `json:"next,omitempty"`

	// Completed is true when the selected step was terminal or no step matched.
	Completed bool `json:"completed"`
}

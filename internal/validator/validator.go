package validator

import (
	"fmt"
	"strings"

	"github.com/aibee/wizard/pkg/domain"
)

// Check walks the table from entryStep and returns a description of every problem found:
// missing or unreachable steps, unpaired questions or prompts, and malformed variable actions.
func Check(table *domain.Table, entryStep string) []string {
	var problems []string

	if !table.Has(entryStep) {
		return []string{fmt.Sprintf("Missing entry step: '%s'", entryStep)}
	}

	// Crawler
	visited := make(map[string]bool)
	queue := []string{entryStep}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		candidates := table.Candidates(current)
		if len(candidates) == 0 {
			problems = append(problems, fmt.Sprintf("Missing step: '%s'", current))
			continue
		}

		for _, step := range candidates {
			if !step.Terminal() && !visited[step.NextStep] {
				queue = append(queue, step.NextStep)
			}
		}
	}

	for _, name := range table.Names() {
		if !visited[name] {
			problems = append(problems, fmt.Sprintf("Unreachable step: '%s'", name))
		}
		for i, step := range table.Candidates(name) {
			problems = append(problems, checkStep(step, i)...)
		}
	}
	return problems
}

func checkStep(step domain.Step, index int) []string {
	var problems []string
	where := fmt.Sprintf("'%s' (candidate %d)", step.Name, index+1)

	if len(step.Questions) != len(step.Variables) {
		problems = append(problems, fmt.Sprintf("Step %s has %d questions but %d variables", where, len(step.Questions), len(step.Variables)))
	}
	if len(step.PromptActions) != len(step.PromptFields) {
		problems = append(problems, fmt.Sprintf("Step %s has %d prompt actions but %d prompt fields", where, len(step.PromptActions), len(step.PromptFields)))
	}
	for _, action := range step.VariableActions {
		if key, _, ok := strings.Cut(action, "="); !ok || strings.TrimSpace(key) == "" {
			problems = append(problems, fmt.Sprintf("Step %s has malformed variable action %q", where, action))
		}
	}
	return problems
}

// ValidateTable checks for broken links and unreachable steps starting from entryStep.
func ValidateTable(table *domain.Table, entryStep string) error {
	problems := Check(table, entryStep)
	if len(problems) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

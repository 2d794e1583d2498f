package validator

import (
	"strings"
	"testing"

	"github.com/aibee/wizard/internal/compiler"
	"github.com/aibee/wizard/pkg/domain"
)

func TestValidateTable(t *testing.T) {
	parser := compiler.NewParser()

	// Scenario A: Valid table with a conditional branch.
	valid, _, err := parser.ParseLines([]byte(`q1,null,null,["Name?"],["name"],[],[],[],q2
q2,q1,isProvincial,[],[],[],[],["level=provincial"],q3
q2,q1,null,[],[],[],[],[],q3
q3,q2,null,[],[],[],[],[],null
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := ValidateTable(valid, "q1"); err != nil {
		t.Errorf("Scenario A (Valid) failed: %v", err)
	}

	// Scenario B: Broken link, unreachable step and unpaired lists.
	broken := domain.NewTable(
		domain.Step{Name: "q1", Questions: []string{"a?", "b?"}, Variables: []string{"a"}, NextStep: "ghost"},
		domain.Step{Name: "island", PromptActions: []string{"x"}, VariableActions: []string{"oops"}},
	)
	err = ValidateTable(broken, "q1")
	if err == nil {
		t.Fatal("Scenario B (Broken) should have failed, but got nil")
	}
	for _, want := range []string{
		"Missing step: 'ghost'",
		"Unreachable step: 'island'",
		"2 questions but 1 variables",
		"1 prompt actions but 0 prompt fields",
		`malformed variable action "oops"`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in error, got: %v", want, err)
		}
	}

	// Scenario C: Missing entry step.
	if problems := Check(valid, "start"); len(problems) != 1 || !strings.Contains(problems[0], "Missing entry step") {
		t.Errorf("Scenario C expected a single missing entry problem, got %v", problems)
	}
}

package runtime_test

import (
	"testing"

	"github.com/aibee/wizard/internal/runtime"
	"github.com/aibee/wizard/pkg/domain"
)

func TestExpand(t *testing.T) {
	answers := domain.Answers{
		"name":   domain.String("Road"),
		"budget": domain.Number("1500"),
		"scope":  domain.Map(domain.Field{Key: "roads", Value: domain.Int(3)}),
		"tricky": domain.String("^name and @name"),
		"empty":  domain.Null(),
	}
	defaults := domain.Answers{
		"capitalCost": domain.Map(domain.Field{Key: "data", Value: domain.List()}),
		"name":        domain.String("Default"),
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"Answer Marker", "Project: ^name", "Project: Road"},
		{"Unknown Answer Marker", "^missing", "UNKNOWN_missing"},
		{"Answer Marker Ignores Defaults", "^capitalCost", "UNKNOWN_capitalCost"},
		{"Json Marker Prefers Answers", "@name", "Road"},
		{"Json Marker Falls Back To Defaults", "Fill @capitalCost", `Fill {"data":[]}`},
		{"Unknown Json Marker", "@nothing here", "UNKNOWN_JSON_nothing here"},
		{"Structured Answer", "Scope ^scope.", `Scope {"roads":3}.`},
		{"Number", "^budget million", "1500 million"},
		{"Null", "^empty", "null"},
		{"Not Rescanned", "^tricky", "^name and @name"},
		{"Several Markers", "^name/@name/^budget", "Road/Road/1500"},
		{"Identifier Boundary", "^name-suffix", "Road-suffix"},
		{"Bare Sigil", "email @ domain ^", "email @ domain ^"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runtime.Expand(tt.template, answers, defaults); got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

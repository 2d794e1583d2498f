package graph

import (
	"fmt"
	"strings"

	"github.com/aibee/wizard/pkg/domain"
)

// doneID names the synthetic node terminal steps point to.
const doneID = "__done__"

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// GenerateMermaid produces a Mermaid flowchart of a transition table.
// Each step group is one node:
// - Entry step: ((Circle))
// - Group with prompt actions: [[Subroutine]]
// - Group asking questions: [/Parallelogram/]
// - Default: [Rectangle]
// Each candidate step becomes an edge labeled with its condition, so the
// first-match alternatives of a group are visible side by side.
func GenerateMermaid(table *domain.Table, entryStep string, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	hasTerminal := false
	for _, name := range table.Names() {
		candidates := table.Candidates(name)
		safeID := sanitizeMermaidID(name)

		opener, closer := "[", "]"
		switch {
		case name == entryStep:
			opener, closer = "((", "))"
		case anyStep(candidates, func(s domain.Step) bool { return len(s.PromptActions) > 0 }):
			opener, closer = "[[", "]]"
		case anyStep(candidates, func(s domain.Step) bool { return len(s.Questions) > 0 }):
			opener, closer = "[/", "/]"
		}

		label := name
		if n := questionCount(candidates); n > 0 {
			label = fmt.Sprintf("%s <br/> %d question(s)", name, n)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, step := range candidates {
			target := doneID
			if !step.Terminal() {
				target = sanitizeMermaidID(step.NextStep)
			} else {
				hasTerminal = true
			}

			arrow := "-->"
			if step.Condition != "" {
				// Escape double quotes in condition for Mermaid label
				safeCondition := strings.ReplaceAll(step.Condition, "\"", "'")
				arrow = fmt.Sprintf("-- \"%s\" -->", safeCondition)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, target)
		}
	}

	if hasTerminal {
		fmt.Fprintf(&sb, "    %s(((\"done\")))\n", doneID)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, name := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(name)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep))
		}
	}

	return sb.String()
}

// OverlayFor builds an overlay from a session's history.
func OverlayFor(sess *domain.Session) *GraphOverlay {
	if sess == nil {
		return nil
	}
	return &GraphOverlay{VisitedSteps: sess.History, CurrentStep: sess.CurrentStep}
}

func anyStep(steps []domain.Step, pred func(domain.Step) bool) bool {
	for _, s := range steps {
		if pred(s) {
			return true
		}
	}
	return false
}

func questionCount(steps []domain.Step) int {
	n := 0
	for _, s := range steps {
		if len(s.Questions) > n {
			n = len(s.Questions)
		}
	}
	return n
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

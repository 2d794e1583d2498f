package cli

import "github.com/charmbracelet/lipgloss"

// Styles controls how the interactive session is drawn.
type Styles struct {
	Step     lipgloss.Style
	Question lipgloss.Style
	Prompt   lipgloss.Style
	Hint     lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the colored styles used on a terminal.
func DefaultStyles() Styles {
	return Styles{
		Step: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#15803d")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#0d9488")),
		Question: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0284c7")),
		Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")),
		Hint:     lipgloss.NewStyle().Faint(true).Italic(true),
		Success:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#16a34a")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#dc2626")),
	}
}

// PlainStyles returns styles that render text unchanged, for pipes and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Step:     plain,
		Question: plain,
		Prompt:   plain,
		Hint:     plain,
		Success:  plain,
		Error:    plain,
	}
}

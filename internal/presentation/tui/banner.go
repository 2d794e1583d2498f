package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the wizard banner to w using the terminal's color profile.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// Government green fading to teal
	lines := []struct {
		text, color string
	}{
		{" __        ___                  _ ", "#15803d"},
		{" \\ \\      / (_)______ _ _ __ __| |", "#16a34a"},
		{"  \\ \\ /\\ / /| |_  / _` | '__/ _` |", "#0d9488"},
		{"   \\ V  V / | |/ / (_| | | | (_| |", "#0891b2"},
		{"    \\_/\\_/  |_/___\\__,_|_|  \\__,_|", "#0284c7"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("    PC-1 proposal wizard").Faint())
	fmt.Fprintln(w)
}

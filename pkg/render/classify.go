package render

import (
	"strings"
	"unicode/utf8"
)

// LineKind is the visual role assigned to one line of free text.
type LineKind int

const (
	LinePlain LineKind = iota
	LineSubheading
	LineBullet
)

func (k LineKind) String() string {
	switch k {
	case LineSubheading:
		return "subheading"
	case LineBullet:
		return "bullet"
	}
	return "plain"
}

// Classifier assigns a LineKind to a trimmed, non-empty line.
type Classifier func(line string) LineKind

// MaxLabelLength bounds the text before the first colon for a line to count as a subheading.
const MaxLabelLength = 30

// DefaultClassifier recognizes "Label: text" lines with a short label and "- item" bullets.
// The label check runs first, so "- a: b" is a subheading.
func DefaultClassifier(line string) LineKind {
	if label, _, ok := strings.Cut(line, ":"); ok && utf8.RuneCountInString(strings.TrimSpace(label)) < MaxLabelLength {
		return LineSubheading
	}
	if strings.HasPrefix(line, "- ") {
		return LineBullet
	}
	return LinePlain
}

// stripEmphasis removes markdown bold and italic markers.
func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, "*", "")
}

// splitLabel splits a subheading line into its bold prefix (with ": ") and the trimmed rest.
func splitLabel(line string) (string, string) {
	label, rest, _ := strings.Cut(line, ":")
	return label + ": ", strings.TrimSpace(rest)
}

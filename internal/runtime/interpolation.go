package runtime

import (
	"regexp"

	"github.com/aibee/wizard/pkg/domain"
)

var markerPattern = regexp.MustCompile(`([@^])(\w+)`)

// Expand replaces markers in template in a single left-to-right pass.
// "@name" reads answers, then defaults, else becomes "UNKNOWN_JSON_name".
// "^name" reads answers only, else becomes "UNKNOWN_name".
// Inserted text is not scanned again.
func Expand(template string, answers, defaults domain.Answers) string {
	return markerPattern.ReplaceAllStringFunc(template, func(marker string) string {
		sigil, name := marker[0], marker[1:]

		if v, ok := answers.Lookup(name); ok {
			return inline(v)
		}
		if sigil == '^' {
			return "UNKNOWN_" + name
		}
		if v, ok := defaults.Lookup(name); ok {
			return inline(v)
		}
		return "UNKNOWN_JSON_" + name
	})
}

func inline(v domain.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.Text()
}

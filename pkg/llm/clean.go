package llm

import (
	"regexp"
	"strings"

	"github.com/aibee/wizard/pkg/domain"
)

var (
	thinkBlock  = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceMarker = regexp.MustCompile("(?i)(---json|```json|```)")
)

// Clean removes reasoning blocks and code-fence markers from a completion.
func Clean(raw string) string {
	cleaned := thinkBlock.ReplaceAllString(raw, "")
	cleaned = fenceMarker.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// Parse cleans raw and decodes it as JSON. Text that is not a JSON document
// is returned as a Raw result holding the cleaned text.
func Parse(raw string) domain.PromptResult {
	cleaned := Clean(raw)
	v, err := domain.ParseJSON([]byte(cleaned))
	if err != nil {
		return domain.Raw(cleaned)
	}
	return domain.Parsed(v)
}

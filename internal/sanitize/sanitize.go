// Package sanitize cleans free-text answers before they are stored or
// interpolated into prompts.
package sanitize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aibee/wizard/pkg/domain"
)

// DefaultMaxInputSize bounds a single string answer (64KB).
const DefaultMaxInputSize = 64 << 10

var (
	ErrInputTooLarge = fmt.Errorf("%w: input exceeds maximum allowed size", domain.ErrInvalidAnswer)
	ErrInvalidUTF8   = fmt.Errorf("%w: input contains invalid UTF-8 sequences", domain.ErrInvalidAnswer)
)

// Input enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return. A limit <= 0
// uses DefaultMaxInputSize.
func Input(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	// Rejected rather than truncated so the stored answer is always what was sent.
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: nothing to strip.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Answers returns a copy of answers with every string value cleaned by Input.
// Structured values are kept as submitted.
func Answers(answers domain.Answers, limit int) (domain.Answers, error) {
	if answers == nil {
		return nil, nil
	}
	out := make(domain.Answers, len(answers))
	for key, v := range answers {
		s, ok := v.Str()
		if !ok {
			out[key] = v
			continue
		}
		cleaned, err := Input(s, limit)
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", key, err)
		}
		out[key] = domain.String(cleaned)
	}
	return out, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

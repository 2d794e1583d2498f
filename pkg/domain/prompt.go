package domain

// PromptResult is the outcome of one LLM completion: either structured data
// parsed from the response, or the cleaned raw text when parsing failed.
type PromptResult struct {
	parsed bool
	value  Value
	raw    string
}

// Parsed wraps a successfully parsed structured response.
func Parsed(v Value) PromptResult {
	return PromptResult{parsed: true, value: v}
}

// Raw wraps a response that could not be parsed.
func Raw(text string) PromptResult {
	return PromptResult{raw: text}
}

// IsParsed reports whether the response was valid structured data.
func (r PromptResult) IsParsed() bool { return r.parsed }

// RawText returns the unparsed text (empty for parsed results).
func (r PromptResult) RawText() string { return r.raw }

// Value returns what gets stored in the answer map.
func (r PromptResult) Value() Value {
	if r.parsed {
		return r.value
	}
	return String(r.raw)
}

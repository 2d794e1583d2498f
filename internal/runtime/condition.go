package runtime

import (
	"context"
	"strings"

	"github.com/aibee/wizard/pkg/domain"
)

// ConditionEvaluator decides whether a step guard holds for the given answers.
type ConditionEvaluator func(ctx context.Context, condition string, answers domain.Answers) (bool, error)

var (
	affirmative = map[string]bool{"yes": true, "true": true, "1": true}
	negative    = map[string]bool{"no": true, "false": true, "0": true, "": true}
)

// EvaluateCondition implements the guard language: an empty condition always
// holds, "x" holds when answer x is yes/true/1, and "!x" holds when x is
// absent, null, or no/false/0/empty. Comparison is trimmed and case-insensitive.
func EvaluateCondition(condition string, answers domain.Answers) bool {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return true
	}

	if name, negated := strings.CutPrefix(condition, "!"); negated {
		v, ok := answers.Lookup(strings.TrimSpace(name))
		if !ok || v.IsNull() {
			return true
		}
		return negative[normalize(v)]
	}

	v, ok := answers.Lookup(condition)
	if !ok {
		return false
	}
	return affirmative[normalize(v)]
}

// DefaultEvaluator adapts EvaluateCondition to ConditionEvaluator.
func DefaultEvaluator(_ context.Context, condition string, answers domain.Answers) (bool, error) {
	return EvaluateCondition(condition, answers), nil
}

func normalize(v domain.Value) string {
	return strings.ToLower(strings.TrimSpace(v.Text()))
}

package ports

import (
	"context"

	"github.com/aibee/wizard/pkg/domain"
)

// PromptRunner sends a fully expanded prompt to a language model.
type PromptRunner interface {
	// RunPrompt returns the cleaned completion, parsed when it is structured data.
	// An error means the call failed; the engine leaves the target field unset.
	RunPrompt(ctx context.Context, prompt string) (domain.PromptResult, error)
}

// PromptRunnerFunc adapts a function to PromptRunner.
type PromptRunnerFunc func(ctx context.Context, prompt string) (domain.PromptResult, error)

// RunPrompt calls f.
func (f PromptRunnerFunc) RunPrompt(ctx context.Context, prompt string) (domain.PromptResult, error) {
	return f(ctx, prompt)
}

package runtime

import (
	"context"
	"time"

	"github.com/aibee/wizard/pkg/domain"
	"golang.org/x/sync/errgroup"
)

type promptCall struct {
	field  string
	prompt string
}

type promptOutcome struct {
	result domain.PromptResult
	ok     bool
}

// runPrompts fills the step's prompt fields. A failed call leaves its field
// unset and never aborts the submission.
func (e *Engine) runPrompts(ctx context.Context, sess *domain.Session, step domain.Step) {
	if len(step.PromptActions) == 0 {
		return
	}
	if e.prompts == nil {
		e.logger.Warn("No prompt runner configured, skipping prompt actions", "step", step.Name, "count", len(step.PromptActions))
		return
	}

	var calls []promptCall
	for i, action := range step.PromptActions {
		if i >= len(step.PromptFields) || step.PromptFields[i] == "" {
			e.logger.Warn("Skipping prompt action without target field", "step", step.Name, "index", i)
			continue
		}
		calls = append(calls, promptCall{field: step.PromptFields[i], prompt: action})
	}

	if e.concurrency <= 1 || len(calls) < 2 {
		for _, c := range calls {
			c.prompt = Expand(c.prompt, sess.Answers, e.defaults)
			if out := e.callPrompt(ctx, sess.ID, step.Name, c); out.ok {
				sess.Answers[c.field] = out.result.Value()
			}
		}
		return
	}

	outcomes := make([]promptOutcome, len(calls))
	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for i := range calls {
		calls[i].prompt = Expand(calls[i].prompt, sess.Answers, e.defaults)
		c := calls[i]
		g.Go(func() error {
			outcomes[i] = e.callPrompt(ctx, sess.ID, step.Name, c)
			return nil
		})
	}
	_ = g.Wait()

	for i, out := range outcomes {
		if out.ok {
			sess.Answers[calls[i].field] = out.result.Value()
		}
	}
}

func (e *Engine) callPrompt(ctx context.Context, sessionID, stepName string, c promptCall) promptOutcome {
	event := &domain.PromptEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventPromptCall,
			SessionID: sessionID,
		},
		Step:  stepName,
		Field: c.field,
	}
	if e.hooks.OnPromptCall != nil {
		e.hooks.OnPromptCall(ctx, event)
	}

	start := time.Now()
	result, err := e.prompts.RunPrompt(ctx, c.prompt)

	ret := *event
	ret.Timestamp = time.Now()
	ret.Type = domain.EventPromptReturn
	ret.Duration = time.Since(start)
	ret.IsError = err != nil
	ret.Parsed = err == nil && result.IsParsed()
	if e.hooks.OnPromptReturn != nil {
		e.hooks.OnPromptReturn(ctx, &ret)
	}

	if err != nil {
		e.logger.Warn("Prompt completion failed, leaving field unset", "step", stepName, "field", c.field, "err", err)
		return promptOutcome{}
	}
	if !result.IsParsed() {
		e.logger.Debug("Prompt response is not structured, storing raw text", "step", stepName, "field", c.field)
	}
	return promptOutcome{result: result, ok: true}
}

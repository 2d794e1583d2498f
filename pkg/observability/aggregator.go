package observability

import (
	"context"

	"github.com/aibee/wizard/pkg/domain"
)

// Aggregate combines several hook sets into one. Callbacks run in the order
// the sets were given; nil callbacks are skipped.
func Aggregate(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			for _, s := range sets {
				if s.OnStepEnter != nil {
					s.OnStepEnter(ctx, e)
				}
			}
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			for _, s := range sets {
				if s.OnStepLeave != nil {
					s.OnStepLeave(ctx, e)
				}
			}
		},
		OnPromptCall: func(ctx context.Context, e *domain.PromptEvent) {
			for _, s := range sets {
				if s.OnPromptCall != nil {
					s.OnPromptCall(ctx, e)
				}
			}
		},
		OnPromptReturn: func(ctx context.Context, e *domain.PromptEvent) {
			for _, s := range sets {
				if s.OnPromptReturn != nil {
					s.OnPromptReturn(ctx, e)
				}
			}
		},
	}
}

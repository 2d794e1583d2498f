package observability

import (
	"context"
	"log/slog"

	"github.com/aibee/wizard/pkg/domain"
)

// LoggingHooks writes one structured record per lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.Info("step_enter", "session_id", e.SessionID, "step", e.Step)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.Info("step_leave", "session_id", e.SessionID, "step", e.Step, "next_step", e.NextStep)
		},
		OnPromptCall: func(ctx context.Context, e *domain.PromptEvent) {
			logger.Debug("prompt_call", "session_id", e.SessionID, "step", e.Step, "field", e.Field)
		},
		OnPromptReturn: func(ctx context.Context, e *domain.PromptEvent) {
			level := slog.LevelInfo
			if e.IsError {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "prompt_return",
				"session_id", e.SessionID,
				"step", e.Step,
				"field", e.Field,
				"duration", e.Duration,
				"parsed", e.Parsed,
				"is_error", e.IsError,
			)
		},
	}
}

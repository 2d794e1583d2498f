package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aibee/wizard/internal/logging"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/ports"
)

// Engine is the workflow state machine. It holds the transition table but no
// session state: every operation takes a session and returns a new one.
type Engine struct {
	loader      ports.TableLoader
	evaluator   ConditionEvaluator
	prompts     ports.PromptRunner
	defaults    domain.Answers
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	entryStep   string
	concurrency int

	mu    sync.RWMutex
	table *domain.Table
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithConditionEvaluator replaces the step guard evaluator.
func WithConditionEvaluator(eval ConditionEvaluator) EngineOption {
	return func(e *Engine) {
		if eval != nil {
			e.evaluator = eval
		}
	}
}

// WithPromptRunner sets the LLM collaborator used for prompt actions.
// Without one, prompt actions are skipped.
func WithPromptRunner(r ports.PromptRunner) EngineOption {
	return func(e *Engine) {
		e.prompts = r
	}
}

// WithDefaults sets the side table consulted by @name markers.
func WithDefaults(defaults domain.Answers) EngineOption {
	return func(e *Engine) {
		e.defaults = defaults
	}
}

// WithEntryStep configures the initial step (default: "q1").
func WithEntryStep(name string) EngineOption {
	return func(e *Engine) {
		if name != "" {
			e.entryStep = name
		}
	}
}

// WithConcurrentPrompts runs up to n prompt actions of a step at once.
// All prompts of the step are then expanded against the answers as they were
// before any of them ran; results are still stored in action order.
// n <= 1 keeps the sequential behavior, where each prompt sees earlier results.
func WithConcurrentPrompts(n int) EngineOption {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// NewEngine creates a new engine reading its table from loader.
func NewEngine(loader ports.TableLoader, opts ...EngineOption) *Engine {
	e := &Engine{
		loader:      loader,
		evaluator:   DefaultEvaluator,
		logger:      logging.NewNop(),
		entryStep:   domain.DefaultEntryStep,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EntryStep returns the step new sessions start at.
func (e *Engine) EntryStep() string {
	return e.entryStep
}

// Reload discards the cached table and reads it again from the loader.
func (e *Engine) Reload(ctx context.Context) error {
	table, err := e.loader.LoadTable(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transition table: %w", err)
	}
	e.mu.Lock()
	e.table = table
	e.mu.Unlock()
	e.logger.Debug("Transition table loaded", "steps", table.Len())
	return nil
}

func (e *Engine) loadTable(ctx context.Context) (*domain.Table, error) {
	e.mu.RLock()
	table := e.table
	e.mu.RUnlock()
	if table != nil {
		return table, nil
	}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.table, nil
}

// Inspect returns the transition table for introspection tools.
func (e *Engine) Inspect() (*domain.Table, error) {
	return e.loadTable(context.Background())
}

// Start creates a session at the entry step and triggers lifecycle hooks.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.Session {
	sess := domain.NewSession(sessionID, e.entryStep)
	e.emitStep(ctx, e.hooks.OnStepEnter, domain.EventStepEnter, sess.ID, sess.CurrentStep, "")
	return sess
}

// Restart returns a clean session with the same ID: entry step, no answers.
func (e *Engine) Restart(ctx context.Context, sess *domain.Session) *domain.Session {
	id := ""
	if sess != nil {
		id = sess.ID
	}
	e.logger.Debug("Session restarted", "session_id", id)
	return e.Start(ctx, id)
}

// CurrentOptions selects the step for the session's current position and
// returns what it asks for. It returns domain.ErrNoValidTransition when no
// candidate matches, including for completed sessions.
func (e *Engine) CurrentOptions(ctx context.Context, sess *domain.Session) (domain.Options, error) {
	step, err := e.resolve(ctx, sess)
	if err != nil {
		return domain.Options{}, err
	}
	return domain.Options{
		StepName:  step.Name,
		Questions: append([]string(nil), step.Questions...),
		Variables: append([]string(nil), step.Variables...),
		NextStep:  step.NextStep,
	}, nil
}

// Submit merges answers into a copy of sess, re-selects the current step,
// applies its variable and prompt actions and moves to its next step.
// A terminal step completes the session. When no step matches, the result is
// reported as completed but the session keeps its position, so a later
// submission with different answers can still match.
func (e *Engine) Submit(ctx context.Context, sess *domain.Session, answers domain.Answers) (*domain.Advance, error) {
	if sess == nil {
		return nil, errors.New("submit: nil session")
	}

	next := sess.Clone()
	if next.Answers == nil {
		next.Answers = make(domain.Answers)
	}
	next.Answers.Merge(answers)
	from := next.CurrentStep

	step, err := e.resolve(ctx, next)
	if errors.Is(err, domain.ErrNoValidTransition) {
		e.logger.Debug("No valid transition", "session_id", next.ID, "step", from)
		next.UpdatedAt = time.Now().UTC()
		return &domain.Advance{Session: next, FromStep: from, Completed: true}, nil
	}
	if err != nil {
		return nil, err
	}

	e.applyVariableActions(next, step)
	e.runPrompts(ctx, next, step)

	e.emitStep(ctx, e.hooks.OnStepLeave, domain.EventStepLeave, next.ID, step.Name, step.NextStep)

	if step.Terminal() {
		e.complete(next)
		return &domain.Advance{Session: next, FromStep: from, Completed: true}, nil
	}

	next.CurrentStep = step.NextStep
	next.History = append(next.History, step.NextStep)
	next.UpdatedAt = time.Now().UTC()
	e.emitStep(ctx, e.hooks.OnStepEnter, domain.EventStepEnter, next.ID, next.CurrentStep, "")

	e.logger.Debug("Step advanced", "session_id", next.ID, "from", from, "to", next.CurrentStep)
	return &domain.Advance{Session: next, FromStep: from, NextStep: next.CurrentStep}, nil
}

// resolve returns the first candidate of the current step group whose condition holds.
func (e *Engine) resolve(ctx context.Context, sess *domain.Session) (domain.Step, error) {
	if sess == nil || sess.Completed() {
		return domain.Step{}, domain.ErrNoValidTransition
	}
	table, err := e.loadTable(ctx)
	if err != nil {
		return domain.Step{}, err
	}

	for _, candidate := range table.Candidates(sess.CurrentStep) {
		ok, err := e.evaluator(ctx, candidate.Condition, sess.Answers)
		if err != nil {
			e.logger.Warn("Condition evaluation failed", "step", candidate.Name, "condition", candidate.Condition, "err", err)
			continue
		}
		if ok {
			return candidate, nil
		}
	}
	return domain.Step{}, fmt.Errorf("%w: step %q", domain.ErrNoValidTransition, sess.CurrentStep)
}

func (e *Engine) complete(sess *domain.Session) {
	sess.CurrentStep = ""
	sess.Status = domain.StatusCompleted
	sess.UpdatedAt = time.Now().UTC()
}

// applyVariableActions stores each "key=value" literal. The value "null" stores Null.
func (e *Engine) applyVariableActions(sess *domain.Session, step domain.Step) {
	for _, action := range step.VariableActions {
		key, value, ok := strings.Cut(action, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			e.logger.Warn("Skipping malformed variable action", "step", step.Name, "action", action)
			continue
		}
		if value == "null" {
			sess.Answers[key] = domain.Null()
			continue
		}
		sess.Answers[key] = domain.String(value)
	}
}

func (e *Engine) emitStep(ctx context.Context, hook func(context.Context, *domain.StepEvent), typ domain.EventType, sessionID, step, next string) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      typ,
			SessionID: sessionID,
		},
		Step:     step,
		NextStep: next,
	})
}

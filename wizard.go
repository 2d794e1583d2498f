package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aibee/wizard/internal/compiler"
	"github.com/aibee/wizard/internal/runtime"
	"github.com/aibee/wizard/internal/sanitize"
	"github.com/aibee/wizard/pkg/adapters/docx"
	"github.com/aibee/wizard/pkg/adapters/file"
	"github.com/aibee/wizard/pkg/adapters/markdown"
	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/ports"
	"github.com/aibee/wizard/pkg/render"
	"github.com/aibee/wizard/pkg/session"
)

// Document formats accepted by Write.
const (
	FormatDOCX     = "docx"
	FormatMarkdown = "markdown"
)

var _ ports.Workflow = (*runtime.Engine)(nil)

// Engine is the high-level entry point for the wizard library.
// It combines the stateless workflow runtime with a session manager and
// the document renderer, so callers only deal with session IDs.
type Engine struct {
	runtime  *runtime.Engine
	loader   ports.TableLoader
	sessions *session.Manager
	renderer ports.DocumentRenderer
	writers  map[string]ports.DocumentWriter

	store       ports.SessionStore
	locker      ports.DistributedLocker
	prompts     ports.PromptRunner
	evaluator   runtime.ConditionEvaluator
	defaults    domain.Answers
	entryStep   string
	concurrency int
	maxAnswer   int
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom TableLoader, bypassing the default file loader.
func WithLoader(l ports.TableLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithStore sets the session store (default: in memory).
func WithStore(s ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker enables distributed session locking.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithPromptRunner sets the LLM client used for prompt actions.
func WithPromptRunner(r ports.PromptRunner) Option {
	return func(e *Engine) {
		e.prompts = r
	}
}

// WithConditionEvaluator sets a custom condition evaluator.
func WithConditionEvaluator(eval runtime.ConditionEvaluator) Option {
	return func(e *Engine) {
		e.evaluator = eval
	}
}

// WithDefaults sets the side table consulted by @name markers.
func WithDefaults(defaults domain.Answers) Option {
	return func(e *Engine) {
		e.defaults = defaults
	}
}

// WithEntryStep configures the initial step (default: "q1").
func WithEntryStep(name string) Option {
	return func(e *Engine) {
		e.entryStep = name
	}
}

// WithConcurrentPrompts runs up to n prompt actions of a step in parallel.
func WithConcurrentPrompts(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithRenderer replaces the document renderer.
func WithRenderer(r ports.DocumentRenderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithWriter registers a writer for format, replacing the built-in one.
func WithWriter(format string, w ports.DocumentWriter) Option {
	return func(e *Engine) {
		if e.writers == nil {
			e.writers = make(map[string]ports.DocumentWriter)
		}
		e.writers[format] = w
	}
}

// WithMaxAnswerSize bounds each string answer in bytes. Zero keeps the default.
func WithMaxAnswerSize(n int) Option {
	return func(e *Engine) {
		e.maxAnswer = n
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a wizard Engine.
// By default, it reads the transition table from tablePath.
// If WithLoader option is provided, tablePath can be empty.
func New(tablePath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if eng.loader == nil {
		if tablePath == "" {
			return nil, fmt.Errorf("tablePath is required when no custom loader is provided")
		}
		absPath, err := filepath.Abs(tablePath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.loader = file.NewLoader(absPath, file.WithLogger(eng.logger))
	}
	if tablePath != "" {
		eng.Name = filepath.Base(tablePath)
		eng.logger = eng.logger.With("table", eng.Name)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	sessOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessOpts...)

	if eng.renderer == nil {
		eng.renderer = render.New(render.WithLogger(eng.logger))
	}
	writers := map[string]ports.DocumentWriter{
		FormatDOCX:     docx.New(),
		FormatMarkdown: markdown.New(),
	}
	for format, w := range eng.writers {
		writers[format] = w
	}
	eng.writers = writers

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithConditionEvaluator(eng.evaluator),
		runtime.WithDefaults(eng.defaults),
		runtime.WithConcurrentPrompts(eng.concurrency),
	}
	if eng.prompts != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithPromptRunner(eng.prompts))
	}
	if eng.entryStep != "" {
		runtimeOpts = append(runtimeOpts, runtime.WithEntryStep(eng.entryStep))
	}
	eng.runtime = runtime.NewEngine(eng.loader, runtimeOpts...)

	return eng, nil
}

// LoadDefaults reads a JSON or YAML object used as the @name side table.
// A missing file yields an empty table.
func LoadDefaults(path string) (domain.Answers, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Answers{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}
	return compiler.ParseDefaults(data, compiler.FormatFromPath(path))
}

func (e *Engine) start(sessionID string) *domain.Session {
	return e.runtime.Start(context.Background(), sessionID)
}

// Session loads the session, creating it at the entry step if needed.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.sessions.LoadOrStart(ctx, sessionID, e.start)
}

// Questions returns what the session's current step asks for.
// A completed session yields empty Options and no error.
func (e *Engine) Questions(ctx context.Context, sessionID string) (domain.Options, error) {
	sess, err := e.Session(ctx, sessionID)
	if err != nil {
		return domain.Options{}, err
	}
	opts, err := e.runtime.CurrentOptions(ctx, sess)
	if errors.Is(err, domain.ErrNoValidTransition) {
		return domain.Options{}, nil
	}
	return opts, err
}

// Submit merges answers into the session and advances it. The returned diff
// describes what changed.
func (e *Engine) Submit(ctx context.Context, sessionID string, answers domain.Answers) (*domain.Advance, *domain.SessionDiff, error) {
	answers, err := sanitize.Answers(answers, e.maxAnswer)
	if err != nil {
		return nil, nil, err
	}

	var (
		adv  *domain.Advance
		prev *domain.Session
	)
	_, err = e.sessions.Update(ctx, sessionID, e.start, func(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
		var err error
		prev = sess
		adv, err = e.runtime.Submit(ctx, sess, answers)
		if err != nil {
			return nil, err
		}
		return adv.Session, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return adv, domain.Diff(prev, adv.Session), nil
}

// Restart discards the session's answers and returns it to the entry step.
func (e *Engine) Restart(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.sessions.Update(ctx, sessionID, e.start, func(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
		return e.runtime.Restart(ctx, sess), nil
	})
}

// Export returns a copy of the session's answers.
func (e *Engine) Export(ctx context.Context, sessionID string) (domain.Answers, error) {
	sess, err := e.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Answers.Clone(), nil
}

// Render builds the document model for answers.
func (e *Engine) Render(answers domain.Answers) (*document.Document, []document.Diagnostic) {
	return e.renderer.Render(answers)
}

// Writer returns the writer registered for format.
func (e *Engine) Writer(format string) (ports.DocumentWriter, error) {
	w, ok := e.writers[format]
	if !ok {
		return nil, fmt.Errorf("unknown document format %q", format)
	}
	return w, nil
}

// Write renders answers and writes them in format to out.
func (e *Engine) Write(out io.Writer, format string, answers domain.Answers) ([]document.Diagnostic, error) {
	w, err := e.Writer(format)
	if err != nil {
		return nil, err
	}
	doc, diags := e.Render(answers)
	for _, d := range diags {
		e.logger.Warn("Render diagnostic", "section", d.Section, "message", d.Message)
	}
	if err := w.Write(out, doc); err != nil {
		return diags, fmt.Errorf("write %s: %w", format, err)
	}
	return diags, nil
}

// Inspect returns the transition table for visualization or validation tools.
func (e *Engine) Inspect() (*domain.Table, error) {
	return e.runtime.Inspect()
}

// EntryStep returns the step new sessions start at.
func (e *Engine) EntryStep() string {
	return e.runtime.EntryStep()
}

// Reload discards the cached table and loads it again.
func (e *Engine) Reload(ctx context.Context) error {
	return e.runtime.Reload(ctx)
}

// Watch returns a channel that signals when the underlying table changes.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// AutoReload reloads the table on every change until ctx is done.
func (e *Engine) AutoReload(ctx context.Context) error {
	changes, err := e.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range changes {
			if err := e.Reload(ctx); err != nil {
				e.logger.Warn("Table reload failed, keeping previous table", "err", err)
				continue
			}
			e.logger.Info("Table reloaded")
		}
	}()
	return nil
}

// Sessions returns the session manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Runtime returns the stateless workflow core.
func (e *Engine) Runtime() ports.Workflow {
	return e.runtime
}

// Loader returns the underlying TableLoader used by the engine.
func (e *Engine) Loader() ports.TableLoader {
	return e.loader
}

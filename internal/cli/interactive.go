package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aibee/wizard/internal/logging"
	"github.com/aibee/wizard/pkg/domain"
)

// ErrQuit is returned when the user leaves the session with :quit.
var ErrQuit = errors.New("session left by user")

// Commands recognized in place of an answer.
const (
	CommandQuit    = ":quit"
	CommandRestart = ":restart"
)

// Workflow is the part of the engine an interactive session drives.
type Workflow interface {
	Questions(ctx context.Context, sessionID string) (domain.Options, error)
	Submit(ctx context.Context, sessionID string, answers domain.Answers) (*domain.Advance, *domain.SessionDiff, error)
	Restart(ctx context.Context, sessionID string) (*domain.Session, error)
	Export(ctx context.Context, sessionID string) (domain.Answers, error)
}

// Session asks the questions of each step on a line-oriented terminal and
// submits the answers until the workflow completes.
type Session struct {
	workflow Workflow
	id       string
	in       *bufio.Reader
	out      io.Writer
	styles   Styles
	logger   *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) SessionOption {
	return func(s *Session) {
		s.in = bufio.NewReader(in)
		s.out = out
	}
}

// WithStyles sets the styles used to draw steps and questions.
func WithStyles(styles Styles) SessionOption {
	return func(s *Session) {
		s.styles = styles
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates an interactive session bound to sessionID.
func NewSession(workflow Workflow, sessionID string, opts ...SessionOption) *Session {
	s := &Session{
		workflow: workflow,
		id:       sessionID,
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		styles:   DefaultStyles(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until the workflow completes, the user quits, input ends or
// ctx is cancelled. Answers submitted so far stay in the session store.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, s.styles.Hint.Render(fmt.Sprintf("Type %s to start over or %s to leave.", CommandRestart, CommandQuit)))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		opts, err := s.workflow.Questions(ctx, s.id)
		if err != nil {
			return fmt.Errorf("failed to get questions: %w", err)
		}
		if opts.StepName == "" {
			fmt.Fprintln(s.out, s.styles.Success.Render("All questions answered."))
			return nil
		}

		answers, restart, err := s.ask(ctx, opts)
		if err != nil {
			return err
		}
		if restart {
			if _, err := s.workflow.Restart(ctx, s.id); err != nil {
				return fmt.Errorf("restart failed: %w", err)
			}
			fmt.Fprintln(s.out, s.styles.Hint.Render("Starting over."))
			continue
		}

		adv, _, err := s.workflow.Submit(ctx, s.id, answers)
		if err != nil {
			return fmt.Errorf("submit failed: %w", err)
		}
		s.logger.Debug("Step answered", "session_id", s.id, "from", adv.FromStep, "next", adv.NextStep)
		if adv.Completed {
			fmt.Fprintln(s.out, s.styles.Success.Render("All questions answered."))
			return nil
		}
	}
}

// ask collects one answer per question of the step.
func (s *Session) ask(ctx context.Context, opts domain.Options) (domain.Answers, bool, error) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.styles.Step.Render("Step "+opts.StepName))

	answers := make(domain.Answers, len(opts.Variables))
	for i, question := range opts.Questions {
		fmt.Fprintln(s.out, s.styles.Question.Render(question))
		fmt.Fprint(s.out, s.styles.Prompt.Render("> "))

		line, err := s.readLine(ctx)
		if err != nil {
			return nil, false, err
		}
		switch line {
		case CommandQuit:
			return nil, false, ErrQuit
		case CommandRestart:
			return nil, true, nil
		}
		if i < len(opts.Variables) {
			answers[opts.Variables[i]] = domain.String(line)
		}
	}
	return answers, false, nil
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one trimmed line. Cancelling ctx abandons the pending read.
func (s *Session) readLine(ctx context.Context) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := s.in.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", fmt.Errorf("input error: %w", r.err)
		}
		return strings.TrimSpace(r.line), nil
	}
}

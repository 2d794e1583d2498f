package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aibee/wizard/pkg/domain"
)

// Event is one line written by RunJSON.
type Event struct {
	Type      string         `json:"type"`
	Step      string         `json:"step,omitempty"`
	Questions []string       `json:"questions,omitempty"`
	Variables []string       `json:"variables,omitempty"`
	Answers   domain.Answers `json:"answers,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Event types.
const (
	EventQuestions = "questions"
	EventCompleted = "completed"
	EventError     = "error"
)

// RunJSON drives a session over JSON Lines: every step is written as a
// questions event, and every input line must be a JSON object of answers.
// A line that cannot be decoded produces an error event and the step is
// asked again. The final line is a completed event carrying all answers.
func RunJSON(ctx context.Context, workflow Workflow, sessionID string, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	enc := json.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		opts, err := workflow.Questions(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to get questions: %w", err)
		}
		if opts.StepName == "" {
			answers, err := workflow.Export(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			return enc.Encode(Event{Type: EventCompleted, Answers: answers})
		}

		if err := enc.Encode(Event{
			Type:      EventQuestions,
			Step:      opts.StepName,
			Questions: opts.Questions,
			Variables: opts.Variables,
		}); err != nil {
			return err
		}

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && strings.TrimSpace(line) != "") {
			return fmt.Errorf("input error: %w", err)
		}

		var answers domain.Answers
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &answers); err != nil {
			if err := enc.Encode(Event{Type: EventError, Error: "answers must be a JSON object: " + err.Error()}); err != nil {
				return err
			}
			continue
		}

		if _, _, err := workflow.Submit(ctx, sessionID, answers); err != nil {
			if errors.Is(err, domain.ErrInvalidAnswer) {
				if err := enc.Encode(Event{Type: EventError, Error: err.Error()}); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("submit failed: %w", err)
		}
	}
}

package domain

import "time"

// DefaultEntryStep is the step every new session starts at.
const DefaultEntryStep = "q1"

// SessionStatus defines whether a session still has steps to answer.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"    // Waiting for answers
	StatusCompleted SessionStatus = "completed" // No next step
)

// Session is the explicit workflow state: the current step and the accumulated answers.
// The engine never holds sessions; callers pass them in and keep the returned copies.
type Session struct {
	ID string `json:"id"`

	// CurrentStep names the active step group. Empty once completed.
	CurrentStep string `json:"current_step"`

	Status SessionStatus `json:"status"`

	// Answers is appended to by submissions, variable actions and prompt results.
	Answers Answers `json:"answers"`

	// History lists the step names visited, in order.
	History []string `json:"history"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a clean session positioned at entryStep.
func NewSession(id, entryStep string) *Session {
	return &Session{
		ID:          id,
		CurrentStep: entryStep,
		Status:      StatusActive,
		Answers:     make(Answers),
		History:     []string{entryStep},
		UpdatedAt:   time.Now().UTC(),
	}
}

// Completed reports whether the session reached the end of the workflow.
func (s *Session) Completed() bool {
	return s.Status == StatusCompleted || s.CurrentStep == ""
}

// Clone returns a copy that can be mutated without affecting s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Answers = s.Answers.Clone()
	next.History = append([]string(nil), s.History...)
	return &next
}

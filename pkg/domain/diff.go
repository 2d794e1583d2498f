package domain

import (
	"reflect"
)

// SessionDiff represents the changes between two sessions.
// It is serialized to JSON so clients can apply partial updates.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentStep *string        `json:"current_step,omitempty"`
	Status      *SessionStatus `json:"status,omitempty"`

	// Answers contains only changed, added or deleted keys.
	// Deleted keys are present with a null value.
	Answers map[string]Value `json:"answers,omitempty"`

	// History holds the step names appended since the old session.
	History []string `json:"history,omitempty"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil, the diff describes the entire newSession.
// It returns nil when nothing changed.
func Diff(oldSession, newSession *Session) *SessionDiff {
	if newSession == nil {
		return nil
	}

	diff := &SessionDiff{SessionID: newSession.ID}

	if oldSession == nil || oldSession.CurrentStep != newSession.CurrentStep {
		step := newSession.CurrentStep
		diff.CurrentStep = &step
	}
	if oldSession == nil || oldSession.Status != newSession.Status {
		status := newSession.Status
		diff.Status = &status
	}

	diff.Answers = diffAnswers(oldSession, newSession)
	diff.History = diffHistory(oldSession, newSession)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffAnswers(old, new *Session) map[string]Value {
	delta := make(map[string]Value)

	if old == nil {
		for k, v := range new.Answers {
			delta[k] = v
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new.Answers {
		oldVal, exists := old.Answers[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old.Answers {
		if _, exists := new.Answers[k]; !exists {
			delta[k] = Null()
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffHistory assumes append-only history. A restart shortens it, in which case
// the whole new history is reported.
func diffHistory(old, new *Session) []string {
	if len(new.History) == 0 {
		return nil
	}
	if old == nil || len(new.History) < len(old.History) {
		return new.History
	}
	if len(new.History) > len(old.History) {
		return new.History[len(old.History):]
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.CurrentStep == nil &&
		d.Status == nil &&
		len(d.Answers) == 0 &&
		len(d.History) == 0
}

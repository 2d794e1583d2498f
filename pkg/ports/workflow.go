package ports

import (
	"context"

	"github.com/aibee/wizard/pkg/domain"
)

// Workflow defines the interface for workflow cores that do not maintain session state.
// This is the primary interface used by adapters (e.g., HTTP, MCP) that keep sessions externally.
type Workflow interface {
	// Start returns a new session positioned at the entry step.
	Start(ctx context.Context, sessionID string) *domain.Session

	// CurrentOptions returns the questions of the step selected for sess.
	// Returns domain.ErrNoValidTransition when no candidate step matches.
	CurrentOptions(ctx context.Context, sess *domain.Session) (domain.Options, error)

	// Submit merges answers into a copy of sess and advances it.
	Submit(ctx context.Context, sess *domain.Session, answers domain.Answers) (*domain.Advance, error)

	// Restart returns a clean session with the same ID.
	Restart(ctx context.Context, sess *domain.Session) *domain.Session

	// Inspect returns the transition table for introspection.
	Inspect() (*domain.Table, error)
}

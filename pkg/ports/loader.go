package ports

import (
	"context"

	"github.com/aibee/wizard/pkg/domain"
)

// TableLoader defines how the engine retrieves the transition table.
// This allows the source (file, memory, remote) to be decoupled from the runtime.
type TableLoader interface {
	// LoadTable returns the parsed table. Malformed rows are skipped by the
	// loader; an error means the source itself could not be read.
	LoadTable(ctx context.Context) (*domain.Table, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload while editing a table.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying table changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

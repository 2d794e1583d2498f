package memory

import (
	"context"
	"fmt"

	"github.com/aibee/wizard/internal/compiler"
	"github.com/aibee/wizard/pkg/domain"
)

// Loader implements ports.TableLoader over steps held in memory.
type Loader struct {
	table *domain.Table
}

// NewLoader creates a loader serving the given steps in order.
func NewLoader(steps ...domain.Step) *Loader {
	return &Loader{table: domain.NewTable(steps...)}
}

// NewFromSource parses raw table data, improving DX for tests and embedded tables.
// Malformed rows are skipped, as with file sources.
func NewFromSource(data string, format compiler.Format) (*Loader, error) {
	table, _, err := compiler.NewParser().Parse([]byte(data), format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse table: %w", err)
	}
	return &Loader{table: table}, nil
}

// LoadTable returns the in-memory table.
func (l *Loader) LoadTable(ctx context.Context) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.table, nil
}

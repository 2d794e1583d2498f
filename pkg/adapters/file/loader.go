package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aibee/wizard/internal/compiler"
	"github.com/aibee/wizard/internal/logging"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// Loader implements ports.TableLoader and ports.Watchable over a table file.
// The format is inferred from the extension: .yaml/.yml or the line format.
type Loader struct {
	path     string
	format   compiler.Format
	logger   *slog.Logger
	debounce time.Duration
}

// LoaderOption configures the Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger for skipped rows and watch errors.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithFormat overrides the format inferred from the file extension.
func WithFormat(format compiler.Format) LoaderOption {
	return func(l *Loader) {
		l.format = format
	}
}

// WithDebounce sets how long Watch waits for writes to settle before signaling.
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.debounce = d
	}
}

// NewLoader creates a loader for the table file at path.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{
		path:     path,
		format:   compiler.FormatFromPath(path),
		logger:   logging.NewNop(),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the table file path.
func (l *Loader) Path() string {
	return l.path
}

// LoadTable reads and parses the table file. Malformed rows are skipped and logged.
func (l *Loader) LoadTable(ctx context.Context) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", l.path, err)
	}

	table, rowErrs, err := compiler.NewParser(compiler.WithLogger(l.logger)).Parse(data, l.format)
	if err != nil {
		return nil, err
	}
	if len(rowErrs) > 0 {
		l.logger.Warn("Table loaded with skipped rows", "path", l.path, "skipped", len(rowErrs))
	}
	return table, nil
}

// Watch signals on the returned channel after the table file changes.
// The parent directory is watched so that editors replacing the file are seen.
// The channel is closed when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	abs, err := filepath.Abs(l.path)
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("invalid table path: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer fsw.Close()

		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					pending = time.After(l.debounce)
				}

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				l.logger.Error("Watcher error", "path", l.path, "err", err)

			case <-pending:
				pending = nil
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	l.logger.Debug("Watching table", "path", abs)
	return out, nil
}

// Package render converts an answer map of arbitrary shape into a document.Document.
//
// Rendering is section-driven: each fixed report section extracts its keys
// from the answers and dispatches to one of three strategies (flat key/value
// table, recursive free-text formatter, grid formatter). Missing keys render
// as a placeholder and recoverable problems become diagnostics; rendering
// itself never fails. A Renderer holds no mutable state and may be shared.
package render

import (
	"fmt"
	"log/slog"

	"github.com/aibee/wizard/internal/logging"
	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Missing is substituted for answers that are absent or null.
const Missing = "N/A"

// NoData is written in place of a table that has no headers or rows.
const NoData = "No data available for this table."

// DefaultTitle is the banner at the top of every document.
var DefaultTitle = []string{"PC-1 FORM", "GOVERNMENT OF PAKISTAN", "PLANNING COMMISSION"}

// Renderer produces documents from answer maps.
type Renderer struct {
	classify Classifier
	logger   *slog.Logger
	title    []string
}

// Option configures the Renderer.
type Option func(*Renderer)

// WithClassifier replaces the line classification heuristic used for free text.
func WithClassifier(c Classifier) Option {
	return func(r *Renderer) {
		r.classify = c
	}
}

// WithLogger reports diagnostics through logger at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithTitle overrides the document banner.
func WithTitle(lines ...string) Option {
	return func(r *Renderer) {
		r.title = lines
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		classify: DefaultClassifier,
		logger:   logging.NewNop(),
		title:    DefaultTitle,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.classify == nil {
		r.classify = DefaultClassifier
	}
	return r
}

// Render builds the document for answers. The answers are not modified.
func (r *Renderer) Render(answers domain.Answers) (*document.Document, []document.Diagnostic) {
	b := &builder{
		doc:      document.New(),
		classify: r.classify,
		title:    cases.Title(language.English),
	}

	if len(r.title) > 0 {
		b.doc.Add(document.Title{Lines: append([]string(nil), r.title...)})
	}

	for _, s := range sections {
		b.section = s.title
		b.heading(s.title)
		s.render(b, answers)
	}

	for _, d := range b.diags {
		r.logger.Warn("render diagnostic", "section", d.Section, "message", d.Message)
	}
	return b.doc, b.diags
}

// Render builds a document with the default renderer.
func Render(answers domain.Answers) (*document.Document, []document.Diagnostic) {
	return New().Render(answers)
}

// builder accumulates blocks and diagnostics for a single Render call.
type builder struct {
	doc      *document.Document
	classify Classifier
	title    cases.Caser
	section  string
	diags    []document.Diagnostic
}

func (b *builder) warn(format string, args ...any) {
	b.diags = append(b.diags, document.Diagnostic{Section: b.section, Message: fmt.Sprintf(format, args...)})
}

func (b *builder) heading(text string) {
	b.doc.Add(document.Heading{Text: text, Level: 1})
}

func (b *builder) subheading(text string) {
	b.doc.Add(document.Heading{Text: text, Level: 2})
}

func (b *builder) paragraph(runs ...document.Run) {
	b.doc.Add(document.Paragraph{Runs: runs})
}

// labeled emits a paragraph with a bold "label: " followed by text.
func (b *builder) labeled(label, text string) {
	runs := []document.Run{document.Bold(label)}
	if text != "" {
		runs = append(runs, document.Plain(text))
	}
	b.paragraph(runs...)
}

// bullet appends an item, extending the previous list when it has the same level.
func (b *builder) bullet(level int, runs ...document.Run) {
	if n := len(b.doc.Blocks); n > 0 {
		if list, ok := b.doc.Blocks[n-1].(document.BulletList); ok && list.Level == level {
			list.Items = append(list.Items, runs)
			b.doc.Blocks[n-1] = list
			return
		}
	}
	b.doc.Add(document.BulletList{Items: [][]document.Run{runs}, Level: level})
}

// humanize turns "hardware_specs" into "Hardware Specs".
func (b *builder) humanize(key string) string {
	return b.title.String(replaceUnderscores(key))
}

// Package document defines the writer-agnostic model produced by the renderer:
// an ordered sequence of blocks (headings, paragraphs, bullet lists, tables).
//
// The set of blocks is closed. Writers switch over the concrete types and
// every block implements the unexported isBlock marker.
package document

import (
	"fmt"
	"strings"
)

// Block is one element of a Document.
type Block interface {
	isBlock()
}

// Document is an ordered sequence of blocks.
type Document struct {
	Blocks []Block
}

// New creates an empty document.
func New() *Document {
	return &Document{}
}

// Add appends blocks in order.
func (d *Document) Add(blocks ...Block) {
	d.Blocks = append(d.Blocks, blocks...)
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	return len(d.Blocks)
}

// Diagnostic records a recoverable problem met while building a document.
type Diagnostic struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Section, d.Message)
}

// Title is the centered banner printed at the top of the document, one line per entry.
type Title struct {
	Lines []string
}

// Heading is a section title. Level 1 is a numbered section header, level 2 a bold subheading.
type Heading struct {
	Text  string
	Level int
}

// Run is a span of inline text.
type Run struct {
	Text string
	Bold bool
}

// Plain returns a normal run.
func Plain(text string) Run { return Run{Text: text} }

// Bold returns a bold run.
func Bold(text string) Run { return Run{Text: text, Bold: true} }

// Paragraph is a line of inline runs.
type Paragraph struct {
	Runs []Run
}

// Text concatenates the runs.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// BulletList is a list of items, each made of inline runs.
// Level 0 is a top-level list; higher levels are nested under the previous block.
type BulletList struct {
	Items [][]Run
	Level int
}

// Cell is a table cell: either text or, when Bullets is set, a list of bullet lines.
type Cell struct {
	Text    string
	Bullets []string
}

// TextCell returns a plain text cell.
func TextCell(text string) Cell { return Cell{Text: text} }

// BulletCell returns a cell rendered as bullet lines.
func BulletCell(items ...string) Cell { return Cell{Bullets: items} }

// Table is a grid with a single header row.
// Total, when non-nil, is an extra bold row appended after the data rows.
type Table struct {
	Headers []string
	Rows    [][]Cell
	Total   []Cell
}

// HeaderGroup is one top-level header of a MergedHeaderTable.
// A group without sub-columns occupies a single column.
type HeaderGroup struct {
	Label      string
	Subcolumns []string
}

// Width returns the number of columns covered by the group.
func (g HeaderGroup) Width() int {
	if len(g.Subcolumns) == 0 {
		return 1
	}
	return len(g.Subcolumns)
}

// MergedHeaderTable is a grid whose top header cells may span several sub-columns.
// When any group has sub-columns a second header row lists them.
type MergedHeaderTable struct {
	Groups []HeaderGroup
	Rows   [][]Cell
}

// Columns returns the total number of leaf columns.
func (t MergedHeaderTable) Columns() int {
	n := 0
	for _, g := range t.Groups {
		n += g.Width()
	}
	return n
}

// HasSubheader reports whether a second header row is needed.
func (t MergedHeaderTable) HasSubheader() bool {
	for _, g := range t.Groups {
		if len(g.Subcolumns) > 0 {
			return true
		}
	}
	return false
}

func (Title) isBlock()             {}
func (Heading) isBlock()           {}
func (Paragraph) isBlock()         {}
func (BulletList) isBlock()        {}
func (Table) isBlock()             {}
func (MergedHeaderTable) isBlock() {}

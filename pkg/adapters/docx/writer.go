// Package docx writes documents as Office Open XML word-processing files.
package docx

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomutex/godocx"
	gdocx "github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"

	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/ports"
)

// ContentType is the MIME type of .docx files.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Page geometry in twentieths of a point.
const (
	twipsPerInch = 1440
	pageWidth    = 83 * twipsPerInch / 10  // 8.3in
	pageHeight   = 117 * twipsPerInch / 10 // 11.7in
	pageMargin   = twipsPerInch / 2        // 0.5in
	textWidth    = pageWidth - 2*pageMargin
)

// Font settings in points.
const (
	fontName    = "Times New Roman"
	bodySize    = 11
	titleSize   = 16
	sectionSize = 14
)

// Bullet paragraph styles of the default template, by nesting level.
var bulletStyles = []string{"ListBullet", "ListBullet2", "ListBullet3"}

var _ ports.DocumentWriter = (*Writer)(nil)

// Writer renders a document.Document into a .docx package.
type Writer struct{}

// New creates a Writer.
func New() *Writer {
	return &Writer{}
}

// ContentType implements ports.DocumentWriter.
func (w *Writer) ContentType() string {
	return ContentType
}

// Write implements ports.DocumentWriter.
func (w *Writer) Write(out io.Writer, doc *document.Document) error {
	rd, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("open docx template: %w", err)
	}
	defer rd.Close()

	b := &builder{rd: rd}
	for _, block := range doc.Blocks {
		switch blk := block.(type) {
		case document.Title:
			b.title(blk)
		case document.Heading:
			b.heading(blk)
		case document.Paragraph:
			b.runs(rd.AddEmptyParagraph(), blk.Runs, runStyle{})
		case document.BulletList:
			for _, item := range blk.Items {
				p := rd.AddEmptyParagraph()
				p.Style(bulletStyle(blk.Level))
				b.runs(p, item, runStyle{})
			}
		case document.Table:
			b.table(blk)
		case document.MergedHeaderTable:
			b.mergedTable(blk)
		default:
			return fmt.Errorf("unsupported block %T", block)
		}
	}
	b.pageSetup()

	if err := rd.Write(out); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func bulletStyle(level int) string {
	if level < 0 {
		level = 0
	}
	if level >= len(bulletStyles) {
		level = len(bulletStyles) - 1
	}
	return bulletStyles[level]
}

type builder struct {
	rd *gdocx.RootDoc
}

type runStyle struct {
	bold      bool
	size      uint64
	underline bool
}

func (b *builder) pageSetup() {
	body := b.rd.Document.Body
	if body.SectPr == nil {
		body.SectPr = ctypes.NewSectionProper()
	}
	width, height := uint64(pageWidth), uint64(pageHeight)
	body.SectPr.PageSize = &ctypes.PageSize{Width: &width, Height: &height}

	side, edge, gap, gutter := pageMargin, twipsPerInch, twipsPerInch/2, 0
	body.SectPr.PageMargin = &ctypes.PageMargin{
		Top:    &edge,
		Bottom: &edge,
		Left:   &side,
		Right:  &side,
		Header: &gap,
		Footer: &gap,
		Gutter: &gutter,
	}
}

// runs appends the runs to p. Embedded newlines become line breaks.
func (b *builder) runs(p *gdocx.Paragraph, runs []document.Run, style runStyle) {
	for _, r := range runs {
		lines := strings.Split(r.Text, "\n")
		for i, line := range lines {
			run := p.AddText(line).Font(fontName).Size(bodySize)
			if style.size > 0 {
				run.Size(style.size)
			}
			if r.Bold || style.bold {
				run.Bold(true)
			}
			if style.underline {
				run.Underline(stypes.UnderlineSingle)
			}
			if i < len(lines)-1 {
				run.AddBreak(nil)
			}
		}
	}
}

func (b *builder) title(t document.Title) {
	for _, line := range t.Lines {
		p := b.rd.AddEmptyParagraph()
		p.Justification(stypes.JustificationCenter)
		b.runs(p, []document.Run{document.Bold(line)}, runStyle{size: titleSize})
	}
	b.rd.AddEmptyParagraph()
}

func (b *builder) heading(h document.Heading) {
	if h.Level <= 1 {
		b.rd.AddEmptyParagraph()
		b.runs(b.rd.AddEmptyParagraph(), []document.Run{document.Bold(h.Text)}, runStyle{size: sectionSize, underline: true})
		return
	}
	b.runs(b.rd.AddEmptyParagraph(), []document.Run{document.Bold(h.Text)}, runStyle{})
}

func (b *builder) newTable(columns int) *gdocx.Table {
	tbl := b.rd.AddTable()
	tbl.Style("TableGrid")
	tbl.Width(5000, stypes.TableWidthPct)

	widths := make([]uint64, columns)
	for i := range widths {
		widths[i] = uint64(textWidth / columns)
	}
	tbl.Grid(widths...)
	return tbl
}

// headerRow adds a row repeated at the top of every page.
func headerRow(tbl *gdocx.Table) *gdocx.Row {
	row := tbl.AddRow()
	rows := tbl.GetCT().RowContents
	last := rows[len(rows)-1].Row
	if last.Property == nil {
		last.Property = &ctypes.RowProperty{}
	}
	last.Property.Header = &ctypes.OnOff{}
	return row
}

func (b *builder) headerCell(row *gdocx.Row, label string) *gdocx.Cell {
	cell := row.AddCell().VerticalAlign("center")
	p := cell.AddEmptyPara()
	p.Justification(stypes.JustificationCenter)
	b.runs(p, []document.Run{document.Bold(label)}, runStyle{})
	return cell
}

func (b *builder) cell(row *gdocx.Row, c document.Cell, bold bool) {
	cell := row.AddCell().VerticalAlign("center")
	if len(c.Bullets) == 0 {
		b.runs(cell.AddEmptyPara(), []document.Run{{Text: c.Text, Bold: bold}}, runStyle{})
		return
	}
	for _, item := range c.Bullets {
		p := cell.AddEmptyPara()
		p.Style(bulletStyle(0))
		b.runs(p, []document.Run{{Text: item, Bold: bold}}, runStyle{})
	}
}

// row pads short rows so every row has the full column count.
func (b *builder) row(tbl *gdocx.Table, cells []document.Cell, columns int, bold bool) {
	row := tbl.AddRow()
	for i := 0; i < columns; i++ {
		var c document.Cell
		if i < len(cells) {
			c = cells[i]
		}
		b.cell(row, c, bold)
	}
}

func (b *builder) table(t document.Table) {
	columns := len(t.Headers)
	if columns == 0 {
		return
	}
	tbl := b.newTable(columns)

	header := headerRow(tbl)
	for _, h := range t.Headers {
		b.headerCell(header, h)
	}
	for _, r := range t.Rows {
		b.row(tbl, r, columns, false)
	}
	if t.Total != nil {
		b.row(tbl, t.Total, columns, true)
	}
	b.rd.AddEmptyParagraph()
}

func (b *builder) mergedTable(t document.MergedHeaderTable) {
	columns := t.Columns()
	if columns == 0 {
		return
	}
	tbl := b.newTable(columns)
	sub := t.HasSubheader()

	top := headerRow(tbl)
	for _, g := range t.Groups {
		cell := b.headerCell(top, g.Label)
		if g.Width() > 1 {
			cell.ColSpan(g.Width())
		}
		if sub && len(g.Subcolumns) == 0 {
			setVMerge(tbl, stypes.MergeCellRestart)
		}
	}

	if sub {
		second := headerRow(tbl)
		for _, g := range t.Groups {
			if len(g.Subcolumns) == 0 {
				second.AddCell().VerticalAlign("center").AddEmptyPara()
				setVMerge(tbl, stypes.MergeCellContinue)
				continue
			}
			for _, s := range g.Subcolumns {
				b.headerCell(second, s)
			}
		}
	}

	for _, r := range t.Rows {
		b.row(tbl, r, columns, false)
	}
	b.rd.AddEmptyParagraph()
}

// setVMerge marks the last cell of the last row as part of a vertical merge.
func setVMerge(tbl *gdocx.Table, merge stypes.MergeCell) {
	rows := tbl.GetCT().RowContents
	cells := rows[len(rows)-1].Row.Contents
	last := cells[len(cells)-1].Cell
	if last.Property == nil {
		last.Property = &ctypes.CellProperty{}
	}
	last.Property.VMerge = ctypes.NewGenOptStrVal(merge)
}

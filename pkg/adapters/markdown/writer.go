// Package markdown writes documents as GitHub-flavored markdown, suitable
// for terminal preview and for the HTTP text endpoint.
package markdown

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/ports"
)

// ContentType is the MIME type of the output.
const ContentType = "text/markdown; charset=utf-8"

var _ ports.DocumentWriter = (*Writer)(nil)

// Writer renders a document.Document into markdown.
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
	bw := bufio.NewWriter(out)
	for i, block := range doc.Blocks {
		if i > 0 {
			bw.WriteString("\n")
		}
		switch blk := block.(type) {
		case document.Title:
			for _, line := range blk.Lines {
				fmt.Fprintf(bw, "# %s\n", line)
			}
		case document.Heading:
			level := "##"
			if blk.Level > 1 {
				level = "###"
			}
			fmt.Fprintf(bw, "%s %s\n", level, inline(blk.Text))
		case document.Paragraph:
			fmt.Fprintf(bw, "%s\n", runs(blk.Runs))
		case document.BulletList:
			indent := strings.Repeat("  ", blk.Level)
			for _, item := range blk.Items {
				fmt.Fprintf(bw, "%s- %s\n", indent, runs(item))
			}
		case document.Table:
			writeTable(bw, blk.Headers, blk.Rows, blk.Total)
		case document.MergedHeaderTable:
			writeTable(bw, flattenHeaders(blk.Groups), blk.Rows, nil)
		default:
			return fmt.Errorf("unsupported block %T", block)
		}
	}
	return bw.Flush()
}

// flattenHeaders joins group and sub-column labels, since markdown tables
// have a single header row.
func flattenHeaders(groups []document.HeaderGroup) []string {
	var out []string
	for _, g := range groups {
		if len(g.Subcolumns) == 0 {
			out = append(out, g.Label)
			continue
		}
		for _, s := range g.Subcolumns {
			out = append(out, g.Label+" / "+s)
		}
	}
	return out
}

func writeTable(w io.Writer, headers []string, rows [][]document.Cell, total []document.Cell) {
	if len(headers) == 0 {
		return
	}
	cols := len(headers)
	escaped := make([]string, cols)
	for i, h := range headers {
		escaped[i] = cellText(document.TextCell(h))
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
	fmt.Fprintf(w, "|%s\n", strings.Repeat(" --- |", cols))

	line := func(cells []document.Cell, bold bool) {
		out := make([]string, cols)
		for i := range out {
			if i < len(cells) {
				out[i] = cellText(cells[i])
			}
			if bold && out[i] != "" {
				out[i] = "**" + out[i] + "**"
			}
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(out, " | "))
	}
	for _, r := range rows {
		line(r, false)
	}
	if total != nil {
		line(total, true)
	}
}

func cellText(c document.Cell) string {
	if len(c.Bullets) > 0 {
		items := make([]string, len(c.Bullets))
		for i, b := range c.Bullets {
			items[i] = "• " + escapeCell(b)
		}
		return strings.Join(items, "<br>")
	}
	return escapeCell(c.Text)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

func runs(rs []document.Run) string {
	var b strings.Builder
	for _, r := range rs {
		text := inline(r.Text)
		if r.Bold && strings.TrimSpace(text) != "" {
			// Emphasis markers must hug the text.
			lead := text[:len(text)-len(strings.TrimLeft(text, " "))]
			trail := text[len(strings.TrimRight(text, " ")):]
			text = lead + "**" + strings.Trim(text, " ") + "**" + trail
		}
		b.WriteString(text)
	}
	return b.String()
}

func inline(s string) string {
	return strings.ReplaceAll(s, "\n", "  \n")
}

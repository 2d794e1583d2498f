package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/aibee/wizard/pkg/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, blocks ...document.Block) map[string]string {
	t.Helper()
	doc := document.New()
	doc.Add(blocks...)

	var buf bytes.Buffer
	require.NoError(t, New().Write(&buf, doc))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	parts := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		parts[f.Name] = string(data)
	}
	return parts
}

// wellFormed decodes every token so malformed markup fails the test.
func wellFormed(t *testing.T, data string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		require.NoError(t, err)
	}
}

func TestWriter_Package(t *testing.T) {
	parts := writeDoc(t, document.Title{Lines: []string{"PC-1 FORM"}})

	for _, name := range []string{"[Content_Types].xml", "word/styles.xml", "word/document.xml"} {
		require.Contains(t, parts, name)
		wellFormed(t, parts[name])
	}

	body := parts["word/document.xml"]
	assert.Contains(t, body, `<w:pgSz w:w="11952"`)
	assert.Contains(t, body, `w:left="720"`)
	assert.Contains(t, body, `w:jc w:val="center"`)
	assert.Contains(t, body, `w:ascii="Times New Roman"`)
	assert.Contains(t, body, "PC-1 FORM")
	assert.Equal(t, ContentType, New().ContentType())
}

func TestWriter_TextBlocks(t *testing.T) {
	body := writeDoc(t,
		document.Heading{Text: "1. Project Overview", Level: 1},
		document.Heading{Text: "Scope", Level: 2},
		document.Paragraph{Runs: []document.Run{document.Bold("Project Name: "), document.Plain("Roads & <Bridges>")}},
		document.Paragraph{Runs: []document.Run{document.Plain("first\nsecond")}},
		document.BulletList{Items: [][]document.Run{{document.Plain("one")}}, Level: 5},
	)["word/document.xml"]

	wellFormed(t, body)
	assert.Contains(t, body, `w:u w:val="single"`)
	assert.Contains(t, body, "Roads &amp; &lt;Bridges&gt;")
	assert.Contains(t, body, "<w:br")
	assert.Contains(t, body, `w:pStyle w:val="ListBullet3"`, "nesting is capped")
}

func TestWriter_Table(t *testing.T) {
	body := writeDoc(t, document.Table{
		Headers: []string{"Year", "Amount"},
		Rows: [][]document.Cell{
			{document.TextCell("2024"), document.TextCell("1,000")},
			{document.TextCell("2025")},
		},
		Total: []document.Cell{document.TextCell("Total"), document.TextCell("1,000")},
	})["word/document.xml"]

	wellFormed(t, body)
	assert.Equal(t, 2, strings.Count(body, "<w:gridCol "))
	assert.Equal(t, 4, strings.Count(body, "<w:tr>"), "short rows are padded, not dropped")
	assert.Equal(t, 8, strings.Count(body, "<w:tc>"))
	assert.Contains(t, body, "w:tblHeader")
	assert.Contains(t, body, `w:tblStyle w:val="TableGrid"`)
	assert.Contains(t, body, `w:vAlign w:val="center"`)
	assert.Contains(t, body, "Total")
}

func TestWriter_MergedHeaderTable(t *testing.T) {
	body := writeDoc(t, document.MergedHeaderTable{
		Groups: []document.HeaderGroup{
			{Label: "Item"},
			{Label: "Cost", Subcolumns: []string{"Local", "Foreign"}},
		},
		Rows: [][]document.Cell{{document.TextCell("Road"), document.TextCell("10"), document.TextCell("5")}},
	})["word/document.xml"]

	wellFormed(t, body)
	assert.Equal(t, 3, strings.Count(body, "<w:gridCol "))
	assert.Contains(t, body, `w:gridSpan w:val="2"`)
	assert.Contains(t, body, `w:vMerge w:val="restart"`)
	assert.Contains(t, body, `w:vMerge w:val="continue"`)
	assert.Contains(t, body, "Foreign")
}

func TestWriter_BulletCell(t *testing.T) {
	body := writeDoc(t, document.Table{
		Headers: []string{"Description"},
		Rows:    [][]document.Cell{{document.BulletCell("a", "b")}},
	})["word/document.xml"]

	assert.Equal(t, 2, strings.Count(body, `w:pStyle w:val="ListBullet"`))
}

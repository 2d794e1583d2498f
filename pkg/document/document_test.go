package document_test

import (
	"testing"

	"github.com/aibee/wizard/pkg/document"
	"github.com/stretchr/testify/assert"
)

func TestMergedHeaderTable_Layout(t *testing.T) {
	table := document.MergedHeaderTable{
		Groups: []document.HeaderGroup{
			{Label: "Item"},
			{Label: "Cost", Subcolumns: []string{"Capital", "Recurring"}},
		},
	}

	assert.Equal(t, 3, table.Columns())
	assert.True(t, table.HasSubheader())
	assert.Equal(t, 1, table.Groups[0].Width())
	assert.Equal(t, 2, table.Groups[1].Width())

	flat := document.MergedHeaderTable{Groups: []document.HeaderGroup{{Label: "A"}, {Label: "B"}}}
	assert.False(t, flat.HasSubheader())
}

func TestParagraph_Text(t *testing.T) {
	p := document.Paragraph{Runs: []document.Run{document.Bold("Cost: "), document.Plain("500")}}
	assert.Equal(t, "Cost: 500", p.Text())
}

func TestDocument_Add(t *testing.T) {
	doc := document.New()
	doc.Add(document.Heading{Text: "1. Overview", Level: 1}, document.Paragraph{})
	assert.Equal(t, 2, doc.Len())
}

package ports

import (
	"io"

	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/domain"
)

// DocumentWriter serializes a document model to a concrete file format.
type DocumentWriter interface {
	Write(w io.Writer, doc *document.Document) error

	// ContentType is the MIME type of the written output.
	ContentType() string
}

// DocumentRenderer builds a document model from an answer map.
type DocumentRenderer interface {
	Render(answers domain.Answers) (*document.Document, []document.Diagnostic)
}

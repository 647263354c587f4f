package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
)

// PDFExtractor extracts per-page text from PDF files.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads the PDF and returns the plain text of each page. Pages whose
// text cannot be decoded are kept as empty entries so page numbers stay
// aligned with the source document.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte, fileName string) ([]schema.PageText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", fileName, err)
	}

	numPages := reader.NumPage()
	pages := make([]schema.PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			if t, err := page.GetPlainText(nil); err == nil {
				text = strings.TrimSpace(t)
			}
		}
		pages = append(pages, schema.PageText{PageNumber: i, Text: text})
	}

	return pages, nil
}

// SupportsFileType reports whether the file is a PDF.
func (e *PDFExtractor) SupportsFileType(fileName string) bool {
	return hasExtension(fileName, ".pdf")
}

var _ interfaces.TextExtractor = (*PDFExtractor)(nil)

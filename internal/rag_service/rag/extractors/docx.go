package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/v2/document"

	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
)

// DocxExtractor extracts text from Word (.docx) files. Word documents have no
// fixed pagination, so paragraphs are grouped into estimated pages.
type DocxExtractor struct{}

// NewDocxExtractor creates a new DocxExtractor.
func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

// Extract reads the document paragraphs in order and groups them into
// estimated pages.
func (e *DocxExtractor) Extract(ctx context.Context, data []byte, fileName string) ([]schema.PageText, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx %s: %w", fileName, err)
	}
	defer doc.Close()

	var blocks []string
	for _, para := range doc.Paragraphs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var sb strings.Builder
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			blocks = append(blocks, text)
		}
	}

	return paginate(blocks), nil
}

// SupportsFileType reports whether the file is a Word document.
func (e *DocxExtractor) SupportsFileType(fileName string) bool {
	return hasExtension(fileName, ".docx")
}

var _ interfaces.TextExtractor = (*DocxExtractor)(nil)

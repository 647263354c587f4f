package extractors

import (
	"context"
	"strings"

	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
)

// TextExtractor extracts plain text and Markdown files, grouping paragraphs
// into estimated pages.
type TextExtractor struct{}

// NewTextExtractor creates a new TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract paginates the raw text on paragraph boundaries.
func (e *TextExtractor) Extract(ctx context.Context, data []byte, fileName string) ([]schema.PageText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return paginate(strings.Split(text, "\n\n")), nil
}

// SupportsFileType reports whether the file is a plain text or Markdown file.
func (e *TextExtractor) SupportsFileType(fileName string) bool {
	return hasExtension(fileName, ".txt", ".md", ".markdown")
}

var _ interfaces.TextExtractor = (*TextExtractor)(nil)

package extractors

import (
	"context"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
)

// HTMLExtractor extracts text from HTML files by converting the markup to
// Markdown, then grouping paragraphs into estimated pages.
type HTMLExtractor struct{}

// NewHTMLExtractor creates a new HTMLExtractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract converts the HTML to Markdown and paginates it.
func (e *HTMLExtractor) Extract(ctx context.Context, data []byte, fileName string) ([]schema.PageText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markdown, err := htmltomarkdown.ConvertString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to convert html %s: %w", fileName, err)
	}

	return paginate(strings.Split(markdown, "\n\n")), nil
}

// SupportsFileType reports whether the file is an HTML document.
func (e *HTMLExtractor) SupportsFileType(fileName string) bool {
	return hasExtension(fileName, ".html", ".htm")
}

var _ interfaces.TextExtractor = (*HTMLExtractor)(nil)

package extractors

import (
	"context"
	"fmt"
	"path/filepath"

	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
)

// Composite routes extraction to the first registered extractor that supports
// the file type.
type Composite struct {
	extractors []interfaces.TextExtractor
}

// NewComposite creates a Composite over the given extractors. With no
// arguments it registers the full default set.
func NewComposite(extractors ...interfaces.TextExtractor) *Composite {
	if len(extractors) == 0 {
		extractors = []interfaces.TextExtractor{
			NewPDFExtractor(),
			NewDocxExtractor(),
			NewXlsxExtractor(),
			NewHTMLExtractor(),
			NewTextExtractor(),
		}
	}
	return &Composite{extractors: extractors}
}

// Extract delegates to the extractor supporting the file type. It returns
// ErrUnsupportedFormat when no extractor accepts the file.
func (c *Composite) Extract(ctx context.Context, data []byte, fileName string) ([]schema.PageText, error) {
	for _, ex := range c.extractors {
		if ex.SupportsFileType(fileName) {
			return ex.Extract(ctx, data, fileName)
		}
	}
	return nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedFormat, filepath.Ext(fileName))
}

// SupportsFileType reports whether any registered extractor supports the file
// type.
func (c *Composite) SupportsFileType(fileName string) bool {
	for _, ex := range c.extractors {
		if ex.SupportsFileType(fileName) {
			return true
		}
	}
	return false
}

var _ interfaces.TextExtractor = (*Composite)(nil)

package extractors

import (
	"strings"

	"taxcopilot/internal/rag_service/rag/schema"
)

// estimatedPageChars is the text size treated as one page for formats without
// physical page boundaries.
const estimatedPageChars = 3000

// paginate groups text blocks into estimated pages of roughly
// estimatedPageChars each, numbered from 1. Blocks are never split.
func paginate(blocks []string) []schema.PageText {
	var pages []schema.PageText
	var buf strings.Builder

	flush := func() {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		pages = append(pages, schema.PageText{PageNumber: len(pages) + 1, Text: text})
	}

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if buf.Len() > 0 && buf.Len()+len(block) > estimatedPageChars {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(block)
	}
	flush()

	return pages
}

// hasExtension reports whether the file name ends with one of the given
// extensions, case-insensitively. Extensions include the leading dot.
func hasExtension(fileName string, exts ...string) bool {
	lower := strings.ToLower(fileName)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

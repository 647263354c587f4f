package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"taxcopilot/internal/rag_service/rag/schema"
)

const (
	DefaultChunkSize = 3500
	DefaultOverlap   = 400

	// minimum forward progress when overlap would rewind past a short chunk
	minAdvance = 100
)

// Chunker splits page-ordered document text into overlapping chunks that
// respect page boundaries where possible. Pages are accumulated until the
// size target is reached; pages larger than the target are split on sentence
// or word boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
	detect    HeadingDetector
}

// New creates a Chunker with the given size target and overlap, both in
// bytes. Non-positive values fall back to the defaults.
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap, detect: DetectHeading}
}

// WithHeadingDetector replaces the default heading detector.
func (c *Chunker) WithHeadingDetector(detect HeadingDetector) *Chunker {
	c.detect = detect
	return c
}

// Chunk splits the pages into ordered chunks carrying the document metadata,
// the covered page range and the most recent section heading. Empty pages are
// skipped. Chunk ids are deterministic per document and chunk index.
func (c *Chunker) Chunk(ctx context.Context, doc schema.DocumentInfo, pages []schema.PageText) ([]schema.TextChunk, error) {
	var chunks []schema.TextChunk
	var buf strings.Builder
	currentHeading := ""
	chunkStart := 0
	chunkEnd := 0

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageText := strings.TrimSpace(page.Text)
		if pageText == "" {
			continue
		}
		if buf.Len() == 0 {
			chunkStart = page.PageNumber
		}

		if heading, ok := c.detect(pageText); ok {
			currentHeading = heading
		}

		// finalize the pending chunk before it would exceed the target
		if buf.Len() > 0 && buf.Len()+len(pageText) > c.chunkSize {
			chunks = append(chunks, c.newChunk(doc, len(chunks), buf.String(), chunkStart, chunkEnd, currentHeading))
			overlap := overlapText(buf.String(), c.overlap)
			buf.Reset()
			buf.WriteString(overlap)
			chunkStart = page.PageNumber
		}

		if len(pageText) > c.chunkSize {
			if buf.Len() > 0 {
				chunks = append(chunks, c.newChunk(doc, len(chunks), buf.String(), chunkStart, chunkEnd, currentHeading))
				buf.Reset()
			}
			for _, part := range splitLargeText(pageText, c.chunkSize, c.overlap) {
				chunks = append(chunks, c.newChunk(doc, len(chunks), part, page.PageNumber, page.PageNumber, currentHeading))
			}
			chunkStart = page.PageNumber + 1
			continue
		}

		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(pageText)
		chunkEnd = page.PageNumber
	}

	if text := strings.TrimSpace(buf.String()); text != "" {
		chunks = append(chunks, c.newChunk(doc, len(chunks), text, chunkStart, chunkEnd, currentHeading))
	}

	return chunks, nil
}

func (c *Chunker) newChunk(doc schema.DocumentInfo, index int, text string, pageStart, pageEnd int, heading string) schema.TextChunk {
	if pageEnd < pageStart {
		pageEnd = pageStart
	}
	return schema.TextChunk{
		ChunkID:         fmt.Sprintf("%s_chunk_%d", doc.DocumentID, index),
		DocumentID:      doc.DocumentID,
		DocumentTitle:   doc.DocumentTitle,
		ChunkText:       strings.TrimSpace(text),
		PageNumberStart: pageStart,
		PageNumberEnd:   pageEnd,
		SectionHeading:  heading,
		Jurisdiction:    doc.Jurisdiction,
		TaxType:         doc.TaxType,
		Version:         doc.Version,
		EffectiveDate:   doc.EffectiveDate,
	}
}

// overlapText returns the trailing portion of text carried into the next
// chunk, preferring to start on a sentence or paragraph boundary.
func overlapText(text string, overlap int) string {
	if len(text) <= overlap {
		return text
	}
	start := len(text) - overlap
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	tail := text[start:]

	if idx := strings.IndexAny(tail, ".!?"); idx > 0 && idx < len(tail)-10 {
		return strings.TrimLeft(tail[idx+1:], " \t\r\n")
	}
	if idx := strings.Index(tail, "\n\n"); idx > 0 {
		return tail[idx+2:]
	}
	return tail
}

// splitLargeText splits a single oversized page into chunks of roughly the
// target size with overlap between consecutive pieces.
func splitLargeText(text string, target, overlap int) []string {
	var parts []string
	cur := 0
	for cur < len(text) {
		chunkLength := target
		if remaining := len(text) - cur; chunkLength > remaining {
			chunkLength = remaining
		}
		if chunkLength < len(text)-cur {
			if bp := findBreakPoint(text, cur, cur+chunkLength); bp > cur {
				chunkLength = bp - cur
			}
		}

		end := cur + chunkLength
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}
		part := strings.TrimSpace(text[cur:end])
		if part != "" {
			parts = append(parts, part)
		}

		cur = end
		if cur < len(text) {
			next := cur - overlap
			if floor := cur - chunkLength + minAdvance; next < floor {
				next = floor
			}
			if next < 0 {
				next = 0
			}
			if next >= len(text) {
				// the minimum advance lands past the end; a tail shorter
				// than minAdvance is dropped
				break
			}
			for next > 0 && !utf8.RuneStart(text[next]) {
				next--
			}
			cur = next
		}
	}
	return parts
}

// findBreakPoint searches [start,end) backwards for a natural break, trying
// sentence terminators, then newlines, then any whitespace near the end.
func findBreakPoint(text string, start, end int) int {
	mid := start + (end-start)/2
	for i := end - 1; i >= mid; i-- {
		switch text[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	for i := end - 1; i >= mid; i-- {
		if text[i] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i >= start+3*(end-start)/4; i-- {
		if text[i] == ' ' {
			return i + 1
		}
	}
	return end
}

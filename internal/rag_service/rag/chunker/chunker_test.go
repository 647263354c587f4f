package chunker

import (
	"context"
	"strings"
	"testing"

	"taxcopilot/internal/rag_service/rag/schema"
)

func testDoc() schema.DocumentInfo {
	return schema.DocumentInfo{
		DocumentID:    "doc-1",
		DocumentTitle: "VAT Act 2024",
		Jurisdiction:  "DE",
		TaxType:       "VAT",
		Version:       "2024",
	}
}

func TestChunkMergesSmallPages(t *testing.T) {
	c := New(200, 40)
	pages := []schema.PageText{
		{PageNumber: 1, Text: "alpha"},
		{PageNumber: 2, Text: "beta"},
		{PageNumber: 3, Text: "gamma"},
	}

	chunks, err := c.Chunk(context.Background(), testDoc(), pages)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].ChunkText != "alpha\n\nbeta\n\ngamma" {
		t.Errorf("unexpected chunk text: %q", chunks[0].ChunkText)
	}
	if chunks[0].PageNumberStart != 1 || chunks[0].PageNumberEnd != 3 {
		t.Errorf("expected page range [1,3], got [%d,%d]", chunks[0].PageNumberStart, chunks[0].PageNumberEnd)
	}
	if chunks[0].ChunkID != "doc-1_chunk_0" {
		t.Errorf("unexpected chunk id: %s", chunks[0].ChunkID)
	}
	if chunks[0].Jurisdiction != "DE" || chunks[0].TaxType != "VAT" {
		t.Errorf("document metadata not carried onto chunk: %+v", chunks[0])
	}
}

func TestChunkSkipsEmptyPages(t *testing.T) {
	c := New(200, 40)
	pages := []schema.PageText{
		{PageNumber: 1, Text: "   \n  "},
		{PageNumber: 2, Text: "content"},
		{PageNumber: 3, Text: ""},
	}

	chunks, err := c.Chunk(context.Background(), testDoc(), pages)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].ChunkText != "content" {
		t.Errorf("unexpected chunk text: %q", chunks[0].ChunkText)
	}
	if chunks[0].PageNumberStart != 2 || chunks[0].PageNumberEnd != 2 {
		t.Errorf("expected page range [2,2], got [%d,%d]", chunks[0].PageNumberStart, chunks[0].PageNumberEnd)
	}
}

func TestChunkEmptyDocument(t *testing.T) {
	c := New(200, 40)

	chunks, err := c.Chunk(context.Background(), testDoc(), nil)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestChunkFinalizesAtSizeTarget(t *testing.T) {
	c := New(50, 10)
	page1 := strings.Repeat("a", 40)
	page2 := strings.Repeat("b", 40)
	pages := []schema.PageText{
		{PageNumber: 1, Text: page1},
		{PageNumber: 2, Text: page2},
	}

	chunks, err := c.Chunk(context.Background(), testDoc(), pages)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkText != page1 {
		t.Errorf("unexpected first chunk: %q", chunks[0].ChunkText)
	}
	if chunks[0].PageNumberStart != 1 || chunks[0].PageNumberEnd != 1 {
		t.Errorf("expected first chunk range [1,1], got [%d,%d]", chunks[0].PageNumberStart, chunks[0].PageNumberEnd)
	}
	// second chunk carries the overlap tail of the first
	if !strings.HasPrefix(chunks[1].ChunkText, strings.Repeat("a", 10)) {
		t.Errorf("second chunk missing overlap prefix: %q", chunks[1].ChunkText)
	}
	if !strings.HasSuffix(chunks[1].ChunkText, page2) {
		t.Errorf("second chunk missing page text: %q", chunks[1].ChunkText)
	}
	if chunks[1].PageNumberStart != 2 || chunks[1].PageNumberEnd != 2 {
		t.Errorf("expected second chunk range [2,2], got [%d,%d]", chunks[1].PageNumberStart, chunks[1].PageNumberEnd)
	}
}

func TestChunkSplitsOversizedPage(t *testing.T) {
	c := New(200, 40)
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		sb.WriteString("The taxpayer must retain records for ten years. ")
	}
	pages := []schema.PageText{{PageNumber: 7, Text: sb.String()}}

	chunks, err := c.Chunk(context.Background(), testDoc(), pages)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected oversized page to split, got %d chunks", len(chunks))
	}
	for i, ch := range chunks {
		if ch.PageNumberStart != 7 || ch.PageNumberEnd != 7 {
			t.Errorf("chunk %d: expected page range [7,7], got [%d,%d]", i, ch.PageNumberStart, ch.PageNumberEnd)
		}
		if len(ch.ChunkText) > 200 {
			t.Errorf("chunk %d exceeds size target: %d bytes", i, len(ch.ChunkText))
		}
		if ch.ChunkText == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestChunkTracksSectionHeading(t *testing.T) {
	c := New(200, 40)
	pages := []schema.PageText{
		{PageNumber: 1, Text: "Section 3.1: Depreciation of Business Assets\n\nAssets are depreciated over their useful life."},
		{PageNumber: 2, Text: "Further provisions apply to intangible assets."},
	}

	chunks, err := c.Chunk(context.Background(), testDoc(), pages)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].SectionHeading != "Section 3.1: Depreciation of Business Assets" {
		t.Errorf("unexpected heading: %q", chunks[0].SectionHeading)
	}
}

func TestChunkCanceledContext(t *testing.T) {
	c := New(200, 40)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Chunk(ctx, testDoc(), []schema.PageText{{PageNumber: 1, Text: "content"}})
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestDetectHeading(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		matches bool
	}{
		{"section", "Section 12.3: Input Tax Deduction", "Section 12.3: Input Tax Deduction", true},
		{"article", "Article 4. Scope of application", "Article 4. Scope of application", true},
		{"paragraph sign", "§ 15 Vorsteuerabzug und Berichtigung", "§ 15 Vorsteuerabzug und Berichtigung", true},
		{"numbered", "2.4 Taxable Income For Individuals", "2.4 Taxable Income For Individuals", true},
		{"body text", "The rate applies to all supplies of goods.", "", false},
		{"embedded", "intro line\nChapter 2: Registration Duties\nmore text", "Chapter 2: Registration Duties", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectHeading(tt.text)
			if ok != tt.matches {
				t.Fatalf("DetectHeading(%q) matched=%v, want %v", tt.text, ok, tt.matches)
			}
			if got != tt.want {
				t.Errorf("DetectHeading(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectHeadingTruncatesLongHeading(t *testing.T) {
	line := "Section 1.1: " + strings.Repeat("x", 120)
	got, ok := DetectHeading(line)
	if !ok {
		t.Fatal("expected heading match")
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated heading to end with ellipsis: %q", got)
	}
	if n := len([]rune(got)); n != 103 {
		t.Errorf("expected 103 runes, got %d", n)
	}
}

func TestOverlapText(t *testing.T) {
	if got := overlapText("short", 400); got != "short" {
		t.Errorf("short text should be returned whole, got %q", got)
	}

	text := strings.Repeat("a", 30) + ". " + strings.Repeat("b", 18)
	if got := overlapText(text, 25); got != strings.Repeat("b", 18) {
		t.Errorf("expected overlap to start after sentence boundary, got %q", got)
	}

	text = strings.Repeat("a", 30) + "\n\n" + strings.Repeat("b", 10)
	if got := overlapText(text, 20); got != strings.Repeat("b", 10) {
		t.Errorf("expected overlap to start after paragraph break, got %q", got)
	}
}

func TestSplitLargeTextDropsTailShorterThanMinAdvance(t *testing.T) {
	// 11 bytes with no break points against a target of 10: the split takes
	// one full chunk and the minimum advance skips the 1-byte tail
	parts := splitLargeText("abcdefghijk", 10, 2)
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %q", parts)
	}
	if parts[0] != "abcdefghij" {
		t.Errorf("unexpected part: %q", parts[0])
	}
}

func TestFindBreakPoint(t *testing.T) {
	s := "aaaaaa. bbb"
	if got := findBreakPoint(s, 0, len(s)); got != 7 {
		t.Errorf("expected break after sentence terminator at 7, got %d", got)
	}

	s = "aaaaaa\nbbbb"
	if got := findBreakPoint(s, 0, len(s)); got != 7 {
		t.Errorf("expected break after newline at 7, got %d", got)
	}

	s = strings.Repeat("x", 16)
	if got := findBreakPoint(s, 0, len(s)); got != len(s) {
		t.Errorf("expected no break point, got %d", got)
	}
}

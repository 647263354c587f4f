package llms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"taxcopilot/internal/rag_service/rag/schema"
)

type fakeChat struct {
	reply  string
	err    error
	system string
	prompt string
}

func (f *fakeChat) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.system = system
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeChat) Name() string { return "test-model" }

func sampleChunks() []schema.RetrievedChunk {
	return []schema.RetrievedChunk{
		{ChunkID: "doc-1_chunk_0", DocumentTitle: "VAT Act", ChunkText: "The standard rate is 19%.", PageNumber: 4, SectionHeading: "Section 12: Rates"},
		{ChunkID: "doc-1_chunk_1", DocumentTitle: "VAT Act", ChunkText: "Reduced rate applies to food.", PageNumber: 5},
	}
}

func TestGenerateEmptyContext(t *testing.T) {
	chat := &fakeChat{reply: "should not be called"}
	g := NewAnswerGenerator(chat)

	resp, err := g.Generate(context.Background(), "What is the rate?", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Answer != "Not found in provided documents." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if resp.Confidence != "low" {
		t.Errorf("expected low confidence, got %q", resp.Confidence)
	}
	if len(resp.Citations) != 0 {
		t.Errorf("expected no citations, got %d", len(resp.Citations))
	}
	if chat.prompt != "" {
		t.Error("model should not be called with empty context")
	}
}

func TestGenerateParsesJSONReply(t *testing.T) {
	chat := &fakeChat{reply: `Here you go:
{"answer": "The standard rate is 19%.", "citations": [{"documentTitle": "VAT Act", "pageNumber": 4, "sectionHeading": "Section 12: Rates", "chunkId": "doc-1_chunk_0"}], "confidence": "high"}`}
	g := NewAnswerGenerator(chat)

	resp, err := g.Generate(context.Background(), "What is the standard rate?", sampleChunks())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Answer != "The standard rate is 19%." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if resp.Confidence != "high" {
		t.Errorf("unexpected confidence: %q", resp.Confidence)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].ChunkID != "doc-1_chunk_0" {
		t.Errorf("unexpected citations: %+v", resp.Citations)
	}
}

func TestGenerateDropsUnknownCitations(t *testing.T) {
	chat := &fakeChat{reply: `{"answer": "ok", "citations": [{"chunkId": "doc-1_chunk_0"}, {"chunkId": "hallucinated"}], "confidence": "medium"}`}
	g := NewAnswerGenerator(chat)

	resp, err := g.Generate(context.Background(), "q", sampleChunks())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].ChunkID != "doc-1_chunk_0" {
		t.Errorf("expected unknown citation dropped, got %+v", resp.Citations)
	}
}

func TestGenerateFallsBackToRawText(t *testing.T) {
	chat := &fakeChat{reply: "The rate is 19% according to the act."}
	g := NewAnswerGenerator(chat)

	resp, err := g.Generate(context.Background(), "q", sampleChunks())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Answer != chat.reply {
		t.Errorf("expected raw reply as answer, got %q", resp.Answer)
	}
	if resp.Confidence != "low" {
		t.Errorf("expected low confidence, got %q", resp.Confidence)
	}
}

func TestGeneratePromptContainsContext(t *testing.T) {
	chat := &fakeChat{reply: `{"answer": "ok", "citations": [], "confidence": "high"}`}
	g := NewAnswerGenerator(chat)

	if _, err := g.Generate(context.Background(), "What is the rate?", sampleChunks()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, want := range []string{
		"--- Document: VAT Act | Page: 4 | Section: Section 12: Rates | ChunkId: doc-1_chunk_0 ---",
		"The standard rate is 19%.",
		"Section: N/A",
		"QUESTION: What is the rate?",
	} {
		if !strings.Contains(chat.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(chat.system, "STRICT RULES") {
		t.Error("system prompt not passed to model")
	}
}

func TestGeneratePropagatesModelError(t *testing.T) {
	chat := &fakeChat{err: errors.New("rate limited")}
	g := NewAnswerGenerator(chat)

	_, err := g.Generate(context.Background(), "q", sampleChunks())
	if err == nil {
		t.Fatal("expected error")
	}
}

package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"taxcopilot/internal/llm"
	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
	"taxcopilot/pkg/logger"
)

const systemPrompt = `You are a tax law expert assistant. Your task is to answer questions based ONLY on the provided document context.

STRICT RULES:
1. Answer ONLY based on the information in the provided context
2. If the answer is not found in the context, respond with: "Not found in provided documents."
3. Always cite your sources with document title, page number, and section heading
4. Be precise and accurate - do not speculate or add information not in the context
5. Assess your confidence level based on how directly the context answers the question

OUTPUT FORMAT:
You must respond with a valid JSON object in exactly this format:
{
  "answer": "Your detailed answer here",
  "citations": [
    {"documentTitle": "Title", "pageNumber": 1, "sectionHeading": "Section", "chunkId": "id"}
  ],
  "confidence": "high|medium|low"
}

CONFIDENCE LEVELS:
- high: The context directly and completely answers the question
- medium: The context partially answers the question or requires some interpretation
- low: The context only tangentially relates to the question`

// notFoundAnswer is returned without calling the model when retrieval yields
// no context.
const notFoundAnswer = "Not found in provided documents."

// AnswerGenerator produces grounded answers over a chat model, constraining
// the model to the retrieved chunks and a structured JSON reply.
type AnswerGenerator struct {
	chat llm.ChatModel
	log  *logger.Logger
}

// NewAnswerGenerator creates an AnswerGenerator over the chat model.
func NewAnswerGenerator(chat llm.ChatModel) *AnswerGenerator {
	return &AnswerGenerator{chat: chat, log: logger.New("answer-generator")}
}

// Generate answers the question using only the provided chunks. With no
// chunks it short-circuits to a not-found answer. Citations referencing
// chunks outside the provided context are dropped.
func (g *AnswerGenerator) Generate(ctx context.Context, question string, chunks []schema.RetrievedChunk) (*schema.AskResponse, error) {
	if len(chunks) == 0 {
		return &schema.AskResponse{
			Answer:     notFoundAnswer,
			Citations:  []schema.Citation{},
			Confidence: "low",
		}, nil
	}

	raw, err := g.chat.Complete(ctx, systemPrompt, buildUserPrompt(question, chunks))
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	resp := g.parseResponse(raw)
	resp.Citations = filterCitations(resp.Citations, chunks)
	return resp, nil
}

// Model returns the underlying chat model identifier.
func (g *AnswerGenerator) Model() string {
	return g.chat.Name()
}

func buildUserPrompt(question string, chunks []schema.RetrievedChunk) string {
	var sb strings.Builder
	sb.WriteString("DOCUMENT CONTEXT:\n")
	sb.WriteString("=================\n")

	for _, chunk := range chunks {
		heading := chunk.SectionHeading
		if heading == "" {
			heading = "N/A"
		}
		sb.WriteString(fmt.Sprintf("\n--- Document: %s | Page: %d | Section: %s | ChunkId: %s ---\n",
			chunk.DocumentTitle, chunk.PageNumber, heading, chunk.ChunkID))
		sb.WriteString(chunk.ChunkText)
		sb.WriteString("\n")
	}

	sb.WriteString("\nQUESTION: ")
	sb.WriteString(question)
	sb.WriteString("\n\nProvide your answer in the required JSON format.")
	return sb.String()
}

// parseResponse extracts the JSON object from the model reply. Replies that
// carry no parseable JSON fall back to the raw text with low confidence.
func (g *AnswerGenerator) parseResponse(raw string) *schema.AskResponse {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var resp schema.AskResponse
		if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err == nil {
			if resp.Confidence == "" {
				resp.Confidence = "low"
			}
			if resp.Citations == nil {
				resp.Citations = []schema.Citation{}
			}
			return &resp
		}
		g.log.Warn("failed to parse model reply as JSON, returning raw text")
	}

	return &schema.AskResponse{
		Answer:     raw,
		Citations:  []schema.Citation{},
		Confidence: "low",
	}
}

// filterCitations keeps only citations whose chunk id exists in the retrieved
// context.
func filterCitations(citations []schema.Citation, chunks []schema.RetrievedChunk) []schema.Citation {
	known := make(map[string]bool, len(chunks))
	for _, chunk := range chunks {
		known[chunk.ChunkID] = true
	}

	kept := make([]schema.Citation, 0, len(citations))
	for _, c := range citations {
		if known[c.ChunkID] {
			kept = append(kept, c)
		}
	}
	return kept
}

var _ interfaces.AnswerGenerator = (*AnswerGenerator)(nil)

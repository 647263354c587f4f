package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"taxcopilot/internal/models"
	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
	"taxcopilot/pkg/logger"
)

// PromptVersion identifies the answer-generation prompt recorded on every
// audit entry. Bump it whenever the system prompt changes.
const PromptVersion = "v1.0"

// QueryPipeline answers questions over the indexed corpus: embed the
// question, retrieve candidates, hand the best ones to the generator and
// record an audit entry for the attempt.
type QueryPipeline struct {
	log           *logger.Logger
	embedder      interfaces.EmbeddingModel
	index         interfaces.SearchIndex
	generator     interfaces.AnswerGenerator
	audits        interfaces.AuditStore
	topK          int
	contextChunks int
}

// NewQueryPipeline wires the query collaborators. contextChunks is capped at
// topK.
func NewQueryPipeline(
	embedder interfaces.EmbeddingModel,
	index interfaces.SearchIndex,
	generator interfaces.AnswerGenerator,
	audits interfaces.AuditStore,
	topK, contextChunks int,
) *QueryPipeline {
	if topK <= 0 {
		topK = 12
	}
	if contextChunks <= 0 || contextChunks > topK {
		contextChunks = topK
	}
	return &QueryPipeline{
		log:           logger.New("query-pipeline"),
		embedder:      embedder,
		index:         index,
		generator:     generator,
		audits:        audits,
		topK:          topK,
		contextChunks: contextChunks,
	}
}

// Ask answers the question, restricted to chunks matching the filters.
// Exactly one audit entry is written per attempt, whether the attempt
// succeeds or fails; a failing audit write is logged and never masks the
// primary outcome.
func (p *QueryPipeline) Ask(ctx context.Context, question string, filters *schema.QueryFilters, correlationID string) (resp *schema.AskResponse, err error) {
	start := time.Now()
	log := p.log.WithCorrelationID(correlationID)
	log.Info("processing question")

	var retrieved []schema.RetrievedChunk
	defer func() {
		p.writeAudit(ctx, question, filters, correlationID, retrieved, resp, err, time.Since(start))
	}()

	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	retrieved, err = p.index.Search(ctx, question, vector, filters, p.topK)
	if err != nil {
		return nil, err
	}
	log.WithPayload(map[string]interface{}{"retrieved": len(retrieved)}).Info("retrieval completed")

	contextChunks := retrieved
	if len(contextChunks) > p.contextChunks {
		contextChunks = contextChunks[:p.contextChunks]
	}

	resp, err = p.generator.Generate(ctx, question, contextChunks)
	if err != nil {
		return nil, err
	}

	log.WithPayload(map[string]interface{}{"elapsed_ms": time.Since(start).Milliseconds()}).Info("question answered")
	return resp, nil
}

// chunkSummary is the compact per-chunk record stored on audit entries.
type chunkSummary struct {
	ChunkID       string  `json:"chunkId"`
	Score         float64 `json:"score"`
	DocumentTitle string  `json:"documentTitle"`
	PageNumber    int     `json:"pageNumber"`
}

func (p *QueryPipeline) writeAudit(ctx context.Context, question string, filters *schema.QueryFilters, correlationID string, retrieved []schema.RetrievedChunk, resp *schema.AskResponse, primaryErr error, elapsed time.Duration) {
	entry := &models.AuditLog{
		AuditLogID:    uuid.New().String(),
		CorrelationID: correlationID,
		QueryText:     question,
		Model:         p.generator.Model(),
		PromptVersion: PromptVersion,
		LatencyMs:     elapsed.Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}

	if filters != nil {
		if data, err := json.Marshal(filters); err == nil {
			s := string(data)
			entry.FiltersJSON = &s
		}
	}
	if retrieved != nil {
		summaries := make([]chunkSummary, len(retrieved))
		for i, chunk := range retrieved {
			summaries[i] = chunkSummary{
				ChunkID:       chunk.ChunkID,
				Score:         chunk.Score,
				DocumentTitle: chunk.DocumentTitle,
				PageNumber:    chunk.PageNumber,
			}
		}
		if data, err := json.Marshal(summaries); err == nil {
			s := string(data)
			entry.RetrievedChunksJSON = &s
		}
	}
	if resp != nil {
		answer := resp.Answer
		entry.AnswerText = &answer
	}
	if primaryErr != nil {
		msg := primaryErr.Error()
		entry.ErrorMessage = &msg
	}

	// the audit entry must survive the caller's cancellation
	if err := p.audits.Create(context.WithoutCancel(ctx), entry); err != nil {
		p.log.WithCorrelationID(correlationID).WithError(err).Error("failed to persist audit entry")
	}
}

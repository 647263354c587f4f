package embedding

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// embedBatchSize is the number of texts sent per OpenAI embeddings request.
// Batching is a tuning detail of this client; callers only rely on the
// order-preserving texts-to-vectors contract.
const embedBatchSize = 16

// OpenAIModel is an embedding client for the OpenAI API.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel creates a new OpenAI embedding client.
func NewOpenAIModel(model, apiKey string) (*OpenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not configured")
	}
	cfg := openai.DefaultConfig(apiKey)
	return &OpenAIModel{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Embed generates an embedding vector for a single text.
func (m *OpenAIModel) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embedding vectors for a batch of texts, preserving
// input order across internal request batches.
func (m *OpenAIModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		req := openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(m.model),
		}
		resp, err := m.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings: %w", err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("expected %d embeddings, got %d", end-start, len(resp.Data))
		}
		for _, d := range resp.Data {
			embeddings = append(embeddings, d.Embedding)
		}
	}

	return embeddings, nil
}

var _ Embedding = (*OpenAIModel)(nil)

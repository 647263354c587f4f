package embedding

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleModel is an embedding client for the Google GenAI API.
type GoogleModel struct {
	model *genai.EmbeddingModel
}

// NewGoogleModel creates a new Google GenAI embedding client.
func NewGoogleModel(modelName, apiKey string) (*GoogleModel, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GoogleModel{model: client.EmbeddingModel(modelName)}, nil
}

// Embed generates an embedding vector for a single text.
func (m *GoogleModel) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := m.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

// EmbedBatch generates embedding vectors for a batch of texts via the GenAI
// batch API, preserving input order.
func (m *GoogleModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	batch := m.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := m.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, 0, len(res.Embeddings))
	for _, emb := range res.Embeddings {
		embeddings = append(embeddings, emb.Values)
	}
	return embeddings, nil
}

var _ Embedding = (*GoogleModel)(nil)

package embedding

import "context"

// Embedding is the interface every embedding provider client implements.
type Embedding interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding vector per input text, preserving
	// order: the i-th vector corresponds to the i-th text.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

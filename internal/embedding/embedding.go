package embedding

import (
	"fmt"

	"taxcopilot/internal/config"
)

// NewModel creates an embedding client for the configured provider.
func NewModel(cfg config.EmbeddingConfig) (Embedding, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIModel(cfg.Model, cfg.APIKey)
	case "ollama":
		return NewOllamaModel(cfg.Model, cfg.BaseURL)
	case "gemini":
		return NewGoogleModel(cfg.Model, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

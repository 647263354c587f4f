package llm

import (
	"context"
	"fmt"

	"taxcopilot/internal/config"
)

// ChatModel is the common interface for chat-completion providers.
type ChatModel interface {
	// Complete sends a system prompt and a user prompt and returns the raw
	// text of the model's reply.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Name returns the provider model identifier, used for audit records.
	Name() string
}

// NewClient is a factory that creates a ChatModel for the configured provider.
func NewClient(cfg config.LLMConfig) (ChatModel, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey)
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

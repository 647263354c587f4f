package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// Ollama is a chat-completion client for a local or remote Ollama server.
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates a new Ollama chat client. An empty baseURL defaults to the
// local Ollama endpoint.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 300 * time.Second}
	return &Ollama{client: ollama.NewClient(parsedURL, hc), model: model}, nil
}

// Complete sends the prompts as a non-streaming chat request and collects the
// reply text.
func (o *Ollama) Complete(ctx context.Context, system, prompt string) (string, error) {
	stream := false
	req := &ollama.ChatRequest{
		Model: o.model,
		Messages: []ollama.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Stream: &stream,
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat request failed: %w", err)
	}
	return sb.String(), nil
}

// Name returns the configured model identifier.
func (o *Ollama) Name() string {
	return o.model
}

var _ ChatModel = (*Ollama)(nil)

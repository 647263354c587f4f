package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAI is a chat-completion client for the OpenAI API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI chat client.
func NewOpenAI(model, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not configured")
	}
	cfg := openai.DefaultConfig(apiKey)
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Complete sends the prompts as a chat completion request. A low temperature
// keeps grounded answers deterministic.
func (o *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	temperature := float32(0.1)
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: &temperature,
		MaxTokens:   2000,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Name returns the configured model identifier.
func (o *OpenAI) Name() string {
	return o.model
}

var _ ChatModel = (*OpenAI)(nil)

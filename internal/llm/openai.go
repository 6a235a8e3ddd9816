package llm

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// OpenAIOptions configures an OpenAI completion client.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string // optional, for compatible endpoints
	Model       string
	MaxTokens   int
	Temperature float32
}

// NewOpenAIClient creates a chat completion client.
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// Complete sends the prompt pair and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeSynthesisEmpty, "chat completion request failed")
	}
	if len(resp.Choices) == 0 {
		return "", domainerrors.SynthesisEmpty("completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", domainerrors.SynthesisEmpty("completion returned empty content")
	}
	return content, nil
}

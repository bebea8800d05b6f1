package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ComplaintClassifier/internal/config"
	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/ports"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicClient implements ports.Categorizer on the Anthropic Messages API.
type AnthropicClient struct {
	client       anthropic.Client
	model        string
	systemPrompt string
}

var _ ports.Categorizer = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration. Extra request options
// (base URL, retries) are applied after the API key.
func NewAnthropicClient(cfg config.LLMConfig, opts ...option.RequestOption) *AnthropicClient {
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	all := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &AnthropicClient{
		client:       anthropic.NewClient(all...),
		model:        model,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Categorize asks Claude for the complaint category.
func (a *AnthropicClient) Categorize(ctx context.Context, text string) (domain.Category, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 16,
		System: []anthropic.TextBlockParam{
			{Text: safePrompt(a.systemPrompt)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return parseCategory(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}

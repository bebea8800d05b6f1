package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ComplaintClassifier/internal/config"
	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/ports"
)

// ChatCompletionsClient implements ports.Categorizer backed by OpenAI-compatible APIs
// (OpenAI, Gemini's OpenAI endpoint, local gateways).
type ChatCompletionsClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Categorizer = (*ChatCompletionsClient)(nil)

const (
	defaultChatEndpoint = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultChatModel    = "gemini-2.0-flash"
)

// NewChatCompletionsClient builds a client from configuration. Endpoint and
// model default to Gemini's OpenAI-compatible surface.
func NewChatCompletionsClient(cfg config.LLMConfig) *ChatCompletionsClient {
	endpoint, model := cfg.Endpoint, cfg.Model
	if endpoint == "" {
		endpoint = defaultChatEndpoint
	}
	if model == "" {
		model = defaultChatModel
	}
	return &ChatCompletionsClient{
		endpoint:     endpoint,
		model:        model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Categorize asks the model for the complaint category.
func (c *ChatCompletionsClient) Categorize(ctx context.Context, text string) (domain.Category, error) {
	if c == nil {
		return "", fmt.Errorf("chat completions client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chat completions client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: safePrompt(c.systemPrompt)},
			{Role: "user", Content: text},
		},
		"temperature": 0,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send categorization request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat completions error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completions returned no choices")
	}

	return parseCategory(parsed.Choices[0].Message.Content), nil
}

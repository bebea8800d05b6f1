package llm

import (
	"fmt"
	"strings"

	"ComplaintClassifier/internal/config"
	"ComplaintClassifier/internal/ports"
)

// NewCategorizer selects the provider named in configuration.
func NewCategorizer(cfg config.LLMConfig) (ports.Categorizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm api key is not configured")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai", "gemini":
		return NewChatCompletionsClient(cfg), nil
	case "anthropic":
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

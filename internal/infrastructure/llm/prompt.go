package llm

import (
	"fmt"
	"strings"

	"ComplaintClassifier/internal/domain"
)

func defaultSystemPrompt() string {
	names := make([]string, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		names = append(names, string(c))
	}
	return fmt.Sprintf(
		"You triage railway passenger complaints. Reply with exactly one category from this list and nothing else: %s.",
		strings.Join(names, ", "),
	)
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return defaultSystemPrompt()
	}
	return prompt
}

// parseCategory maps a model reply onto a known category; anything else is Other.
func parseCategory(reply string) domain.Category {
	reply = strings.TrimSpace(reply)
	reply = strings.Trim(reply, "\"'`.*")
	if c, ok := domain.ParseCategory(reply); ok {
		return c
	}

	lower := strings.ToLower(reply)
	for _, c := range domain.Categories() {
		if c == domain.CategoryOther {
			continue
		}
		if strings.Contains(lower, strings.ToLower(string(c))) {
			return c
		}
	}
	return domain.CategoryOther
}

package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends training reports to a Telegram chat via bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithAPIBase points the notifier at another Bot API host.
func (n *Notifier) WithAPIBase(base string) *Notifier {
	n.apiBase = strings.TrimSuffix(base, "/")
	return n
}

// PublishTrainingReport posts a Markdown summary of run to Telegram.
func (n *Notifier) PublishTrainingReport(ctx context.Context, run domain.TrainingRun, vocabulary int) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatReport(run, vocabulary))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// markdownEscaper escapes the entity markers of Telegram's legacy Markdown mode.
var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(value string) string {
	return markdownEscaper.Replace(value)
}

func formatReport(run domain.TrainingRun, vocabulary int) string {
	var b strings.Builder
	b.WriteString("*Department classifier retrained*\n")
	fmt.Fprintf(&b, "Accuracy: %.2f\n", run.Accuracy)
	fmt.Fprintf(&b, "Train/test: %d/%d\n", run.TrainSize, run.TestSize)
	fmt.Fprintf(&b, "Vocabulary: %d terms\n", vocabulary)
	if run.ArtifactPath != "" {
		fmt.Fprintf(&b, "Artifact: %s\n", escapeMarkdown(run.ArtifactPath))
	}
	if run.ID != "" {
		fmt.Fprintf(&b, "Run: %s\n", escapeMarkdown(run.ID))
	}
	return b.String()
}

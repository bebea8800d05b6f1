package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/ports"
)

// Client talks to a running classifier service.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ ports.ClassifierClient = (*Client)(nil)

// NewClient creates a reusable HTTP client; timeout defaults to 5 seconds.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

type classifyPayload struct {
	ComplaintText string  `json:"complaint_text"`
	Category      *string `json:"category"`
	Priority      *string `json:"priority"`
	TrainNumber   *string `json:"train_number"`
	Location      *string `json:"location"`
}

type classifyResponse struct {
	Department     string  `json:"department"`
	Confidence     float64 `json:"confidence"`
	GeminiCategory *string `json:"gemini_category"`
	Priority       *string `json:"priority"`
	TrainNumber    *string `json:"train_number"`
	Location       *string `json:"location"`
}

// Classify posts the narrative and its intake metadata to /classify.
func (c *Client) Classify(ctx context.Context, req domain.ClassificationRequest) (domain.ClassificationResult, error) {
	payload := classifyPayload{
		ComplaintText: req.ComplaintText,
		Category:      req.Category,
		Priority:      req.Priority,
		TrainNumber:   req.TrainNumber,
		Location:      req.Location,
	}

	var resp classifyResponse
	if err := c.do(ctx, http.MethodPost, "/classify", payload, &resp); err != nil {
		return domain.ClassificationResult{}, err
	}

	return domain.ClassificationResult{
		Department:  resp.Department,
		Confidence:  resp.Confidence,
		Category:    resp.GeminiCategory,
		Priority:    resp.Priority,
		TrainNumber: resp.TrainNumber,
		Location:    resp.Location,
	}, nil
}

// Health checks the service liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("service reports status %q", resp.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, v any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&failure)
		closeErr := resp.Body.Close()
		if failure.Detail != "" {
			return fmt.Errorf("unexpected status %s: %s", resp.Status, failure.Detail)
		}
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}

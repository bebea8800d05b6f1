package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/usecase"
)

const maxBodyBytes = 1 << 20

// Classifier is the use case behind the HTTP surface.
type Classifier interface {
	Classify(ctx context.Context, req domain.ClassificationRequest) (domain.ClassificationResult, error)
	Health() usecase.HealthStatus
}

// ClassifyRequest is the JSON body of POST /classify.
type ClassifyRequest struct {
	ComplaintText *string `json:"complaint_text"`
	Category      *string `json:"category"`
	Priority      *string `json:"priority"`
	TrainNumber   *string `json:"train_number"`
	Location      *string `json:"location"`
}

// ClassifyResponse is the JSON body of a successful classification.
// Category is labelled gemini_category since it comes from the external LLM step.
type ClassifyResponse struct {
	Department     string  `json:"department"`
	Confidence     float64 `json:"confidence"`
	GeminiCategory *string `json:"gemini_category"`
	Priority       *string `json:"priority"`
	TrainNumber    *string `json:"train_number"`
	Location       *string `json:"location"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a free-text failure detail.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func classifyHandler(svc Classifier, metrics *Metrics) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := decodeClassifyRequest(c.Request().Body)
		if err != nil {
			metrics.reject()
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}

		started := time.Now()
		res, err := svc.Classify(c.Request().Context(), req)
		if err != nil {
			metrics.observe("error", "", time.Since(started))
			var predErr *usecase.PredictionError
			if errors.As(err, &predErr) {
				return echo.NewHTTPError(http.StatusInternalServerError, predErr.Error()).SetInternal(err)
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
		}
		metrics.observe("ok", res.Department, time.Since(started))

		return c.JSON(http.StatusOK, ClassifyResponse{
			Department:     res.Department,
			Confidence:     res.Confidence,
			GeminiCategory: res.Category,
			Priority:       res.Priority,
			TrainNumber:    res.TrainNumber,
			Location:       res.Location,
		})
	}
}

func healthHandler(svc Classifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{Status: svc.Health().Status})
	}
}

// decodeClassifyRequest checks field types only; values are not inspected.
func decodeClassifyRequest(body io.Reader) (domain.ClassificationRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes+1))
	if err != nil {
		return domain.ClassificationRequest{}, fmt.Errorf("read body: %w", err)
	}
	if len(raw) > maxBodyBytes {
		return domain.ClassificationRequest{}, errors.New("request body too large")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.ClassificationRequest{}, errors.New("complaint_text: field required")
	}

	var in ClassifyRequest
	if err := json.Unmarshal(raw, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.ClassificationRequest{}, fmt.Errorf("%s: expected string, got %s", typeErr.Field, typeErr.Value)
		}
		return domain.ClassificationRequest{}, fmt.Errorf("invalid JSON body: %v", err)
	}
	if in.ComplaintText == nil {
		return domain.ClassificationRequest{}, errors.New("complaint_text: field required")
	}

	return domain.ClassificationRequest{
		ComplaintText: *in.ComplaintText,
		Category:      in.Category,
		Priority:      in.Priority,
		TrainNumber:   in.TrainNumber,
		Location:      in.Location,
	}, nil
}

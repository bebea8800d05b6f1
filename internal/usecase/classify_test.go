package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"ComplaintClassifier/internal/domain"
)

type stubModel struct {
	classes []string
	proba   []float64
	err     error
	panics  bool
	calls   []string
}

func (s *stubModel) Classes() []string { return s.classes }

func (s *stubModel) PredictProba(text string) ([]float64, error) {
	s.calls = append(s.calls, text)
	if s.panics {
		panic("index out of range")
	}
	return s.proba, s.err
}

func ptr(s string) *string { return &s }

func TestClassifyPicksArgmax(t *testing.T) {
	t.Parallel()

	model := &stubModel{classes: []string{"Catering", "HR", "Security"}, proba: []float64{0.2, 0.7, 0.1}}
	svc, err := NewClassifierService(model)
	if err != nil {
		t.Fatalf("NewClassifierService error: %v", err)
	}

	res, err := svc.Classify(context.Background(), domain.ClassificationRequest{ComplaintText: "rude attendant"})
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if res.Department != "HR" || math.Abs(res.Confidence-0.7) > 1e-12 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Category != nil || res.Priority != nil || res.TrainNumber != nil || res.Location != nil {
		t.Fatalf("absent optional fields must stay absent: %+v", res)
	}
}

func TestClassifyPassesOptionalFieldsThrough(t *testing.T) {
	t.Parallel()

	model := &stubModel{classes: []string{"Catering", "HR"}, proba: []float64{0.4, 0.6}}
	svc, _ := NewClassifierService(model)

	bare, err := svc.Classify(context.Background(), domain.ClassificationRequest{ComplaintText: "stale meal"})
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}

	req := domain.ClassificationRequest{
		ComplaintText: "stale meal",
		Category:      ptr("Safety"),
		Priority:      ptr("High"),
		TrainNumber:   ptr("12951"),
		Location:      ptr("Mumbai"),
	}
	full, err := svc.Classify(context.Background(), req)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}

	if full.Department != bare.Department || full.Confidence != bare.Confidence {
		t.Fatalf("optional fields changed the prediction: %+v vs %+v", full, bare)
	}
	if *full.Category != "Safety" || *full.Priority != "High" || *full.TrainNumber != "12951" || *full.Location != "Mumbai" {
		t.Fatalf("optional fields not echoed: %+v", full)
	}
	for _, text := range model.calls {
		if text != "stale meal" {
			t.Fatalf("model saw %q; only the narrative may reach it", text)
		}
	}
}

func TestClassifyWrapsModelFailures(t *testing.T) {
	t.Parallel()

	cases := map[string]*stubModel{
		"error":      {classes: []string{"A", "B"}, err: errors.New("vectorizer exploded")},
		"panic":      {classes: []string{"A", "B"}, panics: true},
		"short":      {classes: []string{"A", "B"}, proba: []float64{1}},
		"not finite": {classes: []string{"A", "B"}, proba: []float64{math.NaN(), 0.5}},
	}
	for name, model := range cases {
		svc, _ := NewClassifierService(model)
		_, err := svc.Classify(context.Background(), domain.ClassificationRequest{ComplaintText: "x"})
		var predErr *PredictionError
		if !errors.As(err, &predErr) {
			t.Fatalf("%s: expected PredictionError, got %v", name, err)
		}
		if predErr.Error() == "" {
			t.Fatalf("%s: detail must not be empty", name)
		}
	}

	svc, _ := NewClassifierService(cases["error"])
	_, err := svc.Classify(context.Background(), domain.ClassificationRequest{ComplaintText: "x"})
	if err.Error() != "vectorizer exploded" {
		t.Fatalf("detail must be the underlying message, got %q", err.Error())
	}
}

func TestNewClassifierServiceRejectsBadModel(t *testing.T) {
	t.Parallel()

	if _, err := NewClassifierService(nil); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, err := NewClassifierService(&stubModel{classes: []string{"only"}}); err == nil {
		t.Fatalf("expected error for single-class model")
	}
}

func TestHealthIgnoresModel(t *testing.T) {
	t.Parallel()

	model := &stubModel{classes: []string{"A", "B"}, panics: true}
	svc, _ := NewClassifierService(model)
	_, _ = svc.Classify(context.Background(), domain.ClassificationRequest{ComplaintText: "x"})

	if svc.Health().Status != "ok" {
		t.Fatalf("health must report ok")
	}
	if len(model.calls) != 1 {
		t.Fatalf("health must not call the model")
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/pipeline"
	"ComplaintClassifier/internal/ports"
)

// PredictionError wraps any failure raised while running the model for a request.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return e.Err.Error()
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// HealthStatus is the liveness payload.
type HealthStatus struct {
	Status string
}

// ClassifierService serves predictions from a model loaded once at startup.
// The model is never mutated, so concurrent calls need no locking.
type ClassifierService struct {
	model   ports.Model
	classes []string
}

// NewClassifierService validates the loaded model and returns a ready service.
func NewClassifierService(model ports.Model) (*ClassifierService, error) {
	if model == nil {
		return nil, errors.New("classifier service: model is nil")
	}
	classes := model.Classes()
	if len(classes) < 2 {
		return nil, fmt.Errorf("classifier service: model knows %d classes", len(classes))
	}
	return &ClassifierService{model: model, classes: classes}, nil
}

// Classes lists the departments the model can predict.
func (s *ClassifierService) Classes() []string {
	return s.classes
}

// Classify predicts the department for the narrative. Only ComplaintText reaches
// the model; the optional fields are copied into the result untouched.
func (s *ClassifierService) Classify(_ context.Context, req domain.ClassificationRequest) (res domain.ClassificationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.ClassificationResult{}
			err = &PredictionError{Err: fmt.Errorf("%v", r)}
		}
	}()

	proba, err := s.model.PredictProba(req.ComplaintText)
	if err != nil {
		return domain.ClassificationResult{}, &PredictionError{Err: err}
	}
	if len(proba) != len(s.classes) {
		return domain.ClassificationResult{}, &PredictionError{
			Err: fmt.Errorf("model returned %d probabilities for %d classes", len(proba), len(s.classes)),
		}
	}
	for _, p := range proba {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return domain.ClassificationResult{}, &PredictionError{Err: fmt.Errorf("model returned invalid probability %v", p)}
		}
	}

	best := pipeline.Argmax(proba)
	return domain.ClassificationResult{
		Department:  s.classes[best],
		Confidence:  proba[best],
		Category:    req.Category,
		Priority:    req.Priority,
		TrainNumber: req.TrainNumber,
		Location:    req.Location,
	}, nil
}

// Health reports liveness without touching the model.
func (s *ClassifierService) Health() HealthStatus {
	return HealthStatus{Status: "ok"}
}

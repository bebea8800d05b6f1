package domain

import (
	"strings"
	"time"
	"unicode"
)

// ClassificationRequest carries a narrative plus optional intake metadata.
// The optional fields are echoed back and never feed the prediction.
type ClassificationRequest struct {
	ComplaintText string
	Category      *string
	Priority      *string
	TrainNumber   *string
	Location      *string
}

// ClassificationResult is the predicted department with pass-through metadata.
type ClassificationResult struct {
	Department  string
	Confidence  float64
	Category    *string
	Priority    *string
	TrainNumber *string
	Location    *string
}

// TrainingRun summarizes one successful fit of the pipeline.
type TrainingRun struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	CorpusPath   string
	ArtifactPath string
	Seed         uint64
	TrainSize    int
	TestSize     int
	Accuracy     float64
	Classes      []string
}

func normalizeLabel(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			return -1
		}
		return unicode.ToLower(r)
	}, value)
}

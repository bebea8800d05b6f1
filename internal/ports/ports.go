package ports

import (
	"context"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/pipeline"
)

// CorpusReader loads the labeled training corpus.
type CorpusReader interface {
	ReadAll() ([]domain.ComplaintRecord, error)
}

// CorpusWriter persists a generated corpus.
type CorpusWriter interface {
	WriteAll(records []domain.ComplaintRecord) error
}

// Model is the read-only fitted pipeline used at request time.
type Model interface {
	Classes() []string
	PredictProba(text string) ([]float64, error)
}

// ModelStore loads and saves fitted pipelines.
type ModelStore interface {
	Load() (*pipeline.Pipeline, error)
	Save(p *pipeline.Pipeline) error
}

// RunRepository keeps a ledger of training runs.
type RunRepository interface {
	Record(ctx context.Context, run domain.TrainingRun) error
	Recent(ctx context.Context, limit int) ([]domain.TrainingRun, error)
}

// Notifier streams training reports to Telegram or other channels. Each
// implementation renders the run in its own message format.
type Notifier interface {
	PublishTrainingReport(ctx context.Context, run domain.TrainingRun, vocabulary int) error
}

// Categorizer assigns an intake category to a narrative (external LLM step).
type Categorizer interface {
	Categorize(ctx context.Context, text string) (domain.Category, error)
}

// ClassifierClient calls a running classifier service.
type ClassifierClient interface {
	Classify(ctx context.Context, req domain.ClassificationRequest) (domain.ClassificationResult, error)
	Health(ctx context.Context) error
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/pipeline"
	"ComplaintClassifier/internal/ports"
)

// TrainOptions tunes a training run.
type TrainOptions struct {
	Seed         uint64
	TestFraction float64
	Pipeline     pipeline.Options
	// CorpusPath and ArtifactPath label the run in the ledger.
	CorpusPath   string
	ArtifactPath string
}

// TrainerDeps wires the trainer's driven adapters.
type TrainerDeps struct {
	Corpus   ports.CorpusReader
	Store    ports.ModelStore
	Runs     ports.RunRepository
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// TrainReport is the outcome of a successful run.
type TrainReport struct {
	Run            domain.TrainingRun
	Fit            pipeline.FitStats
	VocabularySize int
}

// Trainer fits the pipeline offline and installs the artifact.
type Trainer struct {
	corpus   ports.CorpusReader
	store    ports.ModelStore
	runs     ports.RunRepository
	notifier ports.Notifier
	logger   *slog.Logger
	opts     TrainOptions
}

// NewTrainer constructs the training use case.
func NewTrainer(deps TrainerDeps, opts TrainOptions) *Trainer {
	if opts.TestFraction == 0 {
		opts.TestFraction = 0.2
	}
	return &Trainer{
		corpus:   deps.Corpus,
		store:    deps.Store,
		runs:     deps.Runs,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		opts:     opts,
	}
}

// Train reads the corpus, fits on the training partition, scores the holdout
// and saves the artifact. Nothing is written unless every step succeeds.
func (t *Trainer) Train(ctx context.Context) (TrainReport, error) {
	if t.corpus == nil || t.store == nil {
		return TrainReport{}, errors.New("trainer: corpus and store are required")
	}
	started := time.Now().UTC()

	records, err := t.corpus.ReadAll()
	if err != nil {
		return TrainReport{}, fmt.Errorf("read corpus: %w", err)
	}
	t.info("corpus loaded", "records", len(records))

	trainIdx, testIdx, err := pipeline.Split(len(records), t.opts.TestFraction, t.opts.Seed)
	if err != nil {
		return TrainReport{}, fmt.Errorf("split corpus: %w", err)
	}
	trainDocs, trainLabels := columns(records, trainIdx)
	testDocs, testLabels := columns(records, testIdx)

	model, stats, err := pipeline.Fit(trainDocs, trainLabels, t.opts.Pipeline)
	if err != nil {
		return TrainReport{}, fmt.Errorf("fit pipeline: %w", err)
	}
	if !stats.Converged {
		t.warn("optimizer stopped before convergence", "status", stats.Status, "iterations", stats.Iterations)
	}

	accuracy, err := model.Accuracy(testDocs, testLabels)
	if err != nil {
		return TrainReport{}, fmt.Errorf("evaluate pipeline: %w", err)
	}

	if err := t.store.Save(model); err != nil {
		return TrainReport{}, fmt.Errorf("save artifact: %w", err)
	}

	report := TrainReport{
		Run: domain.TrainingRun{
			ID:           uuid.NewString(),
			StartedAt:    started,
			FinishedAt:   time.Now().UTC(),
			CorpusPath:   t.opts.CorpusPath,
			ArtifactPath: t.opts.ArtifactPath,
			Seed:         t.opts.Seed,
			TrainSize:    len(trainIdx),
			TestSize:     len(testIdx),
			Accuracy:     accuracy,
			Classes:      model.Classes(),
		},
		Fit:            stats,
		VocabularySize: model.VocabularySize(),
	}
	t.info("pipeline trained",
		"run_id", report.Run.ID,
		"accuracy", accuracy,
		"train_size", report.Run.TrainSize,
		"test_size", report.Run.TestSize,
		"vocabulary", report.VocabularySize,
		"iterations", stats.Iterations,
	)

	if t.runs != nil {
		if err := t.runs.Record(ctx, report.Run); err != nil {
			t.warn("record training run", "error", err)
		}
	}
	if t.notifier != nil {
		if err := t.notifier.PublishTrainingReport(ctx, report.Run, report.VocabularySize); err != nil {
			t.warn("publish training report", "error", err)
		}
	}

	return report, nil
}

func columns(records []domain.ComplaintRecord, idx []int) (docs, labels []string) {
	docs = make([]string, len(idx))
	labels = make([]string, len(idx))
	for i, j := range idx {
		docs[i] = records[j].Text
		labels[i] = string(records[j].Department)
	}
	return docs, labels
}

func (t *Trainer) info(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Info(msg, args...)
	}
}

func (t *Trainer) warn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}

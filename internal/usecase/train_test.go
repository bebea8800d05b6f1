package usecase

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/infrastructure/artifact"
	"ComplaintClassifier/internal/infrastructure/corpus"
	"ComplaintClassifier/internal/infrastructure/synth"
	"ComplaintClassifier/internal/pipeline"
)

type memoryRuns struct {
	runs []domain.TrainingRun
}

func (m *memoryRuns) Record(_ context.Context, run domain.TrainingRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryRuns) Recent(_ context.Context, _ int) ([]domain.TrainingRun, error) {
	return m.runs, nil
}

type captureNotifier struct {
	runs       []domain.TrainingRun
	vocabulary int
	err        error
}

func (c *captureNotifier) PublishTrainingReport(_ context.Context, run domain.TrainingRun, vocabulary int) error {
	c.runs = append(c.runs, run)
	c.vocabulary = vocabulary
	return c.err
}

func writeSyntheticCorpus(t *testing.T, dir string, n int) string {
	t.Helper()
	path := filepath.Join(dir, "complaints.csv")
	syn := NewSynthesizer(synth.NewGenerator(2024), corpus.NewFile(path), nil)
	if err := syn.Run(n); err != nil {
		t.Fatalf("synthesize corpus: %v", err)
	}
	return path
}

func newTestTrainer(corpusPath, artifactPath string, deps TrainerDeps) *Trainer {
	deps.Corpus = corpus.NewFile(corpusPath)
	deps.Store = artifact.NewFileStore(artifactPath)
	return NewTrainer(deps, TrainOptions{
		Seed:         42,
		TestFraction: 0.2,
		Pipeline:     pipeline.DefaultOptions(),
		CorpusPath:   corpusPath,
		ArtifactPath: artifactPath,
	})
}

func TestTrainThenClassify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	corpusPath := writeSyntheticCorpus(t, dir, 1000)
	artifactPath := filepath.Join(dir, "department_classifier.json")

	runs := &memoryRuns{}
	notifier := &captureNotifier{}
	trainer := newTestTrainer(corpusPath, artifactPath, TrainerDeps{Runs: runs, Notifier: notifier})

	report, err := trainer.Train(context.Background())
	if err != nil {
		t.Fatalf("Train error: %v", err)
	}
	if report.Run.TrainSize != 800 || report.Run.TestSize != 200 {
		t.Fatalf("unexpected split %d/%d", report.Run.TrainSize, report.Run.TestSize)
	}
	if report.Run.Accuracy < 0.5 {
		t.Fatalf("holdout accuracy too low: %.2f", report.Run.Accuracy)
	}
	if len(runs.runs) != 1 || runs.runs[0].ID != report.Run.ID {
		t.Fatalf("training run not recorded: %+v", runs.runs)
	}
	if len(notifier.runs) != 1 || notifier.runs[0].ID != report.Run.ID {
		t.Fatalf("training report not published: %+v", notifier.runs)
	}
	if notifier.vocabulary != report.VocabularySize || notifier.runs[0].ArtifactPath != artifactPath {
		t.Fatalf("unexpected published report: vocabulary=%d run=%+v", notifier.vocabulary, notifier.runs[0])
	}

	model, err := artifact.NewFileStore(artifactPath).Load()
	if err != nil {
		t.Fatalf("load artifact: %v", err)
	}
	svc, err := NewClassifierService(model)
	if err != nil {
		t.Fatalf("NewClassifierService error: %v", err)
	}

	res, err := svc.Classify(context.Background(), domain.ClassificationRequest{ComplaintText: "dirty toilet, very unclean"})
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if res.Department != string(domain.DepartmentHousekeeping) {
		t.Fatalf("expected Housekeeping, got %s", res.Department)
	}
	baseline := 1 / float64(len(svc.Classes()))
	if res.Confidence <= baseline || res.Confidence > 1 {
		t.Fatalf("confidence %.3f not above baseline %.3f", res.Confidence, baseline)
	}
}

func TestTrainIsReproducible(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	corpusPath := writeSyntheticCorpus(t, dir, 400)

	first, err := newTestTrainer(corpusPath, filepath.Join(dir, "a.json"), TrainerDeps{}).Train(context.Background())
	if err != nil {
		t.Fatalf("first Train error: %v", err)
	}
	second, err := newTestTrainer(corpusPath, filepath.Join(dir, "b.json"), TrainerDeps{}).Train(context.Background())
	if err != nil {
		t.Fatalf("second Train error: %v", err)
	}

	if first.Run.Accuracy != second.Run.Accuracy {
		t.Fatalf("accuracy differs across identical runs: %f vs %f", first.Run.Accuracy, second.Run.Accuracy)
	}
	if math.Abs(first.Fit.Loss-second.Fit.Loss) > 1e-12 {
		t.Fatalf("loss differs across identical runs: %f vs %f", first.Fit.Loss, second.Fit.Loss)
	}
}

func TestTrainMalformedCorpusWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "complaints.csv")
	if err := os.WriteFile(corpusPath, []byte("complaint_text,category\nx,y\n"), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	artifactPath := filepath.Join(dir, "department_classifier.json")

	_, err := newTestTrainer(corpusPath, artifactPath, TrainerDeps{}).Train(context.Background())
	if !errors.Is(err, corpus.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, statErr := os.Stat(artifactPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("artifact must not exist after failed run, stat err=%v", statErr)
	}
}

func TestTrainMissingCorpus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := newTestTrainer(filepath.Join(dir, "none.csv"), filepath.Join(dir, "m.json"), TrainerDeps{}).Train(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNotifierFailureDoesNotFailRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	corpusPath := writeSyntheticCorpus(t, dir, 200)
	notifier := &captureNotifier{err: errors.New("telegram down")}

	if _, err := newTestTrainer(corpusPath, filepath.Join(dir, "m.json"), TrainerDeps{Notifier: notifier}).Train(context.Background()); err != nil {
		t.Fatalf("Train error: %v", err)
	}
	if len(notifier.runs) != 1 {
		t.Fatalf("expected one publish attempt, got %d", len(notifier.runs))
	}
}

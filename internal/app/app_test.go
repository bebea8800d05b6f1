package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ComplaintClassifier/internal/config"
	"ComplaintClassifier/internal/infrastructure/artifact"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	var cfg config.Config
	cfg.Model.ArtifactPath = filepath.Join(dir, "model.json")
	cfg.Corpus.Path = filepath.Join(dir, "complaints.csv")
	cfg.Training.Seed = 42
	cfg.Training.TestFraction = 0.2
	cfg.Synth.Records = 300
	cfg.Synth.Seed = 11
	return cfg
}

func TestNewServiceRequiresArtifact(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	_, err := NewService(cfg, quietLogger())
	if !errors.Is(err, artifact.ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}

	if err := os.WriteFile(cfg.Model.ArtifactPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	_, err = NewService(cfg, quietLogger())
	if !errors.Is(err, artifact.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestSynthesizeTrainServe(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Runs.DSN = filepath.Join(filepath.Dir(cfg.Corpus.Path), "runs.db")
	logger := quietLogger()

	if err := NewSynthesizer(cfg, logger).Run(cfg.Synth.Records); err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	trainer, err := NewTrainer(cfg, logger)
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	report, err := trainer.Train(context.Background())
	if closeErr := trainer.Close(); closeErr != nil {
		t.Fatalf("close trainer: %v", closeErr)
	}
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if report.Run.TrainSize != 240 || report.Run.TestSize != 60 {
		t.Fatalf("unexpected split %d/%d", report.Run.TrainSize, report.Run.TestSize)
	}

	runs, db, err := OpenRuns(cfg)
	if err != nil {
		t.Fatalf("open runs: %v", err)
	}
	defer db.Close()
	recent, err := runs.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != report.Run.ID {
		t.Fatalf("run not recorded: %+v", recent)
	}

	svc, err := NewService(cfg, logger)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(`{"complaint_text":"the coach toilet was dirty and unclean"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("classify returned %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"department":`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestOpenRunsDisabled(t *testing.T) {
	t.Parallel()

	if _, _, err := OpenRuns(testConfig(t)); err == nil {
		t.Fatalf("expected error when ledger is disabled")
	}
}

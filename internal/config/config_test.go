package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg := Load()
	if cfg.Model.ArtifactPath != "department_classifier.json" {
		t.Fatalf("unexpected artifact path: %s", cfg.Model.ArtifactPath)
	}
	if cfg.Training.Seed != 42 || cfg.Training.TestFraction != 0.2 || cfg.Training.MaxFeatures != 5000 || cfg.Training.MaxIter != 1000 {
		t.Fatalf("unexpected training defaults: %+v", cfg.Training)
	}
	if cfg.Synth.Records != 1000 {
		t.Fatalf("unexpected synth defaults: %+v", cfg.Synth)
	}
	if cfg.Runs.DSN != "" {
		t.Fatalf("run ledger must be disabled by default")
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9090"
  shutdownPeriod: 3s
model:
  artifactPath: /models/file.json
training:
  maxFeatures: 300
llm:
  provider: anthropic
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(modelPathEnv, "/models/env.json")
	t.Setenv(seedEnv, "7")

	cfg := Load()
	if cfg.Server.Addr != ":9090" || cfg.Server.ShutdownPeriod != 3*time.Second {
		t.Fatalf("server section not merged: %+v", cfg.Server)
	}
	if cfg.Model.ArtifactPath != "/models/env.json" {
		t.Fatalf("env must override file, got %s", cfg.Model.ArtifactPath)
	}
	if cfg.Training.MaxFeatures != 300 || cfg.Training.MaxIter != 1000 {
		t.Fatalf("training section not merged over defaults: %+v", cfg.Training)
	}
	if cfg.Training.Seed != 7 {
		t.Fatalf("seed override not applied: %d", cfg.Training.Seed)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Model != "" {
		t.Fatalf("llm section not merged: %+v", cfg.LLM)
	}
}

func TestLoadHonorsExplicitZeroSeeds(t *testing.T) {
	dir := t.TempDir()

	zero := filepath.Join(dir, "zero.yaml")
	if err := os.WriteFile(zero, []byte("training:\n  seed: 0\nsynth:\n  seed: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, zero)
	t.Setenv(seedEnv, "")

	cfg := Load()
	if cfg.Training.Seed != 0 || cfg.Synth.Seed != 0 {
		t.Fatalf("explicit zero seeds not applied: training=%d synth=%d", cfg.Training.Seed, cfg.Synth.Seed)
	}

	fixed := filepath.Join(dir, "fixed.yaml")
	if err := os.WriteFile(fixed, []byte("synth:\n  seed: 99\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, fixed)

	cfg = Load()
	if cfg.Training.Seed != 42 || cfg.Synth.Seed != 99 {
		t.Fatalf("unexpected seeds: training=%d synth=%d", cfg.Training.Seed, cfg.Synth.Seed)
	}
}

func TestLoadFallsBackOnBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Server.Addr != ":8000" {
		t.Fatalf("expected defaults after parse failure, got %s", cfg.Server.Addr)
	}
}

package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"ComplaintClassifier/internal/config"
	"ComplaintClassifier/internal/infrastructure/artifact"
	"ComplaintClassifier/internal/infrastructure/corpus"
	"ComplaintClassifier/internal/infrastructure/httpapi"
	"ComplaintClassifier/internal/infrastructure/storage"
	"ComplaintClassifier/internal/infrastructure/synth"
	"ComplaintClassifier/internal/infrastructure/telegram"
	"ComplaintClassifier/internal/logging"
	"ComplaintClassifier/internal/pipeline"
	"ComplaintClassifier/internal/ports"
	"ComplaintClassifier/internal/usecase"
)

// Service is the classifier HTTP service with its model loaded.
type Service struct {
	cfg    config.Config
	server *httpapi.Server
}

// NewService loads the artifact once and wires the HTTP layer around it.
// A missing or unreadable artifact is returned as an error and the service
// must not start.
func NewService(cfg config.Config, baseLogger *slog.Logger) (*Service, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	store := artifact.NewFileStore(cfg.Model.ArtifactPath)
	model, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	baseLogger.Info("model loaded",
		"path", store.Path(),
		"classes", len(model.Classes()),
		"vocabulary", model.VocabularySize(),
		"trained_at", model.TrainedAt(),
	)

	svc, err := usecase.NewClassifierService(model)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	server := httpapi.NewServer(svc, baseLogger.With("component", "http"),
		httpapi.WithGracefulPeriod(cfg.Server.ShutdownPeriod),
	)
	return &Service{cfg: cfg, server: server}, nil
}

// Handler exposes the routed HTTP handler.
func (s *Service) Handler() http.Handler {
	return s.server
}

// Run serves until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.server.Run(ctx, s.cfg.Server.Addr)
}

// Trainer bundles the training use case with the resources it holds open.
type Trainer struct {
	*usecase.Trainer
	db *sql.DB
}

// NewTrainer wires the corpus file, artifact store, and the optional run
// ledger and Telegram notifier.
func NewTrainer(cfg config.Config, baseLogger *slog.Logger) (*Trainer, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	deps := usecase.TrainerDeps{
		Corpus: corpus.NewFile(cfg.Corpus.Path),
		Store:  artifact.NewFileStore(cfg.Model.ArtifactPath),
		Logger: baseLogger.With("component", "trainer"),
	}

	var db *sql.DB
	if cfg.Runs.DSN != "" {
		var err error
		db, err = storage.OpenSQLite(cfg.Runs.DSN)
		if err != nil {
			return nil, fmt.Errorf("open run ledger: %w", err)
		}
		deps.Runs = storage.NewRunRepository(db)
	}

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		deps.Notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	opts := usecase.TrainOptions{
		Seed:         cfg.Training.Seed,
		TestFraction: cfg.Training.TestFraction,
		Pipeline:     pipelineOptions(cfg.Training),
		CorpusPath:   cfg.Corpus.Path,
		ArtifactPath: cfg.Model.ArtifactPath,
	}
	return &Trainer{Trainer: usecase.NewTrainer(deps, opts), db: db}, nil
}

// Close releases the run ledger, if one was opened.
func (t *Trainer) Close() error {
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}

func pipelineOptions(tc config.TrainingConfig) pipeline.Options {
	opts := pipeline.DefaultOptions()
	if tc.MaxFeatures > 0 {
		opts.MaxFeatures = tc.MaxFeatures
	}
	if tc.MaxIter > 0 {
		opts.LogReg.MaxIter = tc.MaxIter
	}
	if tc.C > 0 {
		opts.LogReg.C = tc.C
	}
	return opts
}

// NewSynthesizer wires the seeded generator to the configured corpus path.
func NewSynthesizer(cfg config.Config, baseLogger *slog.Logger) *usecase.Synthesizer {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	return usecase.NewSynthesizer(
		synth.NewGenerator(cfg.Synth.Seed),
		corpus.NewFile(cfg.Corpus.Path),
		baseLogger.With("component", "synth"),
	)
}

// OpenRuns opens the run ledger for reading. The caller closes the database.
func OpenRuns(cfg config.Config) (ports.RunRepository, *sql.DB, error) {
	if cfg.Runs.DSN == "" {
		return nil, nil, fmt.Errorf("run ledger is disabled: set runs.dsn or COMPLAINT_RUNS_DSN")
	}
	db, err := storage.OpenSQLite(cfg.Runs.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open run ledger: %w", err)
	}
	return storage.NewRunRepository(db), db, nil
}

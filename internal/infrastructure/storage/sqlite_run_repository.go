package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/ports"
)

const runsTable = "training_runs"

var runColumns = []string{
	"id", "started_at", "finished_at", "corpus_path", "artifact_path",
	"seed", "train_size", "test_size", "accuracy", "classes",
}

const schema = `
CREATE TABLE IF NOT EXISTS training_runs (
	id            TEXT PRIMARY KEY,
	started_at    DATETIME NOT NULL,
	finished_at   DATETIME NOT NULL,
	corpus_path   TEXT NOT NULL,
	artifact_path TEXT NOT NULL,
	seed          INTEGER NOT NULL,
	train_size    INTEGER NOT NULL,
	test_size     INTEGER NOT NULL,
	accuracy      REAL NOT NULL,
	classes       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_training_runs_started ON training_runs(started_at);
`

// RunRepository persists the training-run ledger in SQLite.
type RunRepository struct {
	db *sql.DB
}

var _ ports.RunRepository = (*RunRepository)(nil)

// OpenSQLite opens (or creates) the ledger database and applies the schema.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// NewRunRepository wires a sql.DB implementation.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts a finished training run.
func (r *RunRepository) Record(ctx context.Context, run domain.TrainingRun) error {
	if r.db == nil {
		return nil
	}

	query, args, err := sq.Insert(runsTable).
		Columns(runColumns...).
		Values(
			run.ID,
			run.StartedAt.UTC(),
			run.FinishedAt.UTC(),
			run.CorpusPath,
			run.ArtifactPath,
			int64(run.Seed),
			run.TrainSize,
			run.TestSize,
			run.Accuracy,
			strings.Join(run.Classes, ","),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]domain.TrainingRun, error) {
	if r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query, args, err := sq.Select(runColumns...).
		From(runsTable).
		OrderBy("started_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var runs []domain.TrainingRun
	for rows.Next() {
		var (
			run               domain.TrainingRun
			seed              int64
			classes           string
			started, finished time.Time
		)
		if err := rows.Scan(
			&run.ID, &started, &finished, &run.CorpusPath, &run.ArtifactPath,
			&seed, &run.TrainSize, &run.TestSize, &run.Accuracy, &classes,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Seed = uint64(seed)
		run.StartedAt = started
		run.FinishedAt = finished
		if classes != "" {
			run.Classes = strings.Split(classes, ",")
		}
		runs = append(runs, run)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return runs, nil
}

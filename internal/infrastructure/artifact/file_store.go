package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ComplaintClassifier/internal/pipeline"
	"ComplaintClassifier/internal/ports"
)

var (
	// ErrMissing means no artifact exists at the configured path.
	ErrMissing = errors.New("model artifact missing")
	// ErrCorrupt means the artifact exists but cannot be decoded into a pipeline.
	ErrCorrupt = errors.New("model artifact corrupt")
)

// FileStore keeps a single serialized pipeline on local disk.
type FileStore struct {
	path string
}

var _ ports.ModelStore = (*FileStore)(nil)

// NewFileStore binds the store to an artifact path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the artifact location.
func (s *FileStore) Path() string {
	return s.path
}

// Load decodes the artifact. Missing and corrupt artifacts are reported with
// ErrMissing and ErrCorrupt respectively.
func (s *FileStore) Load() (*pipeline.Pipeline, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var snap pipeline.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	p, err := pipeline.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return p, nil
}

// Save writes the artifact through a temp file and rename, so readers never
// observe a partially written model.
func (s *FileStore) Save(p *pipeline.Pipeline) error {
	if p == nil {
		return errors.New("save artifact: nil pipeline")
	}

	body, err := json.Marshal(p.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp artifact: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("install artifact: %w", err)
	}
	return nil
}

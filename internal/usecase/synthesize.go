package usecase

import (
	"fmt"
	"log/slog"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/ports"
)

// RecordSource produces complaint records, e.g. the synthetic generator.
type RecordSource interface {
	Generate(n int) ([]domain.ComplaintRecord, error)
}

// Synthesizer writes a bootstrap corpus.
type Synthesizer struct {
	source RecordSource
	sink   ports.CorpusWriter
	logger *slog.Logger
}

// NewSynthesizer wires a record source to a corpus sink.
func NewSynthesizer(source RecordSource, sink ports.CorpusWriter, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{source: source, sink: sink, logger: logger}
}

// Run generates n records and writes them out.
func (s *Synthesizer) Run(n int) error {
	records, err := s.source.Generate(n)
	if err != nil {
		return fmt.Errorf("generate records: %w", err)
	}
	if err := s.sink.WriteAll(records); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("corpus written", "records", len(records))
	}
	return nil
}

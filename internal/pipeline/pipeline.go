package pipeline

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// FormatVersion tags serialized pipelines.
const FormatVersion = "complaint-pipeline/v1"

// Options controls a full pipeline fit.
type Options struct {
	MaxFeatures int
	LogReg      LogRegOptions
}

// DefaultOptions returns the vectorizer and classifier settings used in production.
func DefaultOptions() Options {
	return Options{MaxFeatures: 5000, LogReg: DefaultLogRegOptions()}
}

// Pipeline composes the TF-IDF vectorizer and the logistic regression.
// It is read-only once built and safe for concurrent use.
type Pipeline struct {
	vectorizer *Vectorizer
	classifier *LogisticRegression
	trainedAt  time.Time
}

// Fit trains the vectorizer and the classifier on the same documents.
func Fit(docs, labels []string, opts Options) (*Pipeline, FitStats, error) {
	vec, err := FitVectorizer(docs, opts.MaxFeatures)
	if err != nil {
		return nil, FitStats{}, err
	}

	clf, stats, err := FitLogisticRegression(vec.TransformAll(docs), labels, vec.Dim(), opts.LogReg)
	if err != nil {
		return nil, stats, err
	}

	return &Pipeline{vectorizer: vec, classifier: clf, trainedAt: time.Now().UTC()}, stats, nil
}

// Classes lists the labels in the order used by PredictProba.
func (p *Pipeline) Classes() []string {
	return p.classifier.Classes()
}

// TrainedAt reports when the pipeline was fitted.
func (p *Pipeline) TrainedAt() time.Time {
	return p.trainedAt
}

// VocabularySize is the number of retained terms.
func (p *Pipeline) VocabularySize() int {
	return p.vectorizer.Dim()
}

// PredictProba returns the class distribution for a narrative.
func (p *Pipeline) PredictProba(text string) ([]float64, error) {
	if p == nil || p.vectorizer == nil || p.classifier == nil {
		return nil, errors.New("pipeline is not fitted")
	}
	return p.classifier.PredictProba(p.vectorizer.Transform(text)), nil
}

// Predict returns the most probable label for a narrative.
func (p *Pipeline) Predict(text string) (string, error) {
	proba, err := p.PredictProba(text)
	if err != nil {
		return "", err
	}
	return p.Classes()[Argmax(proba)], nil
}

// Accuracy is the share of documents whose predicted label matches.
func (p *Pipeline) Accuracy(docs, labels []string) (float64, error) {
	if len(docs) != len(labels) {
		return 0, fmt.Errorf("accuracy: %d documents but %d labels", len(docs), len(labels))
	}
	if len(docs) == 0 {
		return 0, errors.New("accuracy: no documents")
	}

	var hits int
	for i, doc := range docs {
		got, err := p.Predict(doc)
		if err != nil {
			return 0, err
		}
		if got == labels[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(docs)), nil
}

// Snapshot is the serialized form of a fitted pipeline.
type Snapshot struct {
	Format     string             `json:"format"`
	TrainedAt  time.Time          `json:"trained_at"`
	Vectorizer VectorizerSnapshot `json:"vectorizer"`
	Classifier ClassifierSnapshot `json:"classifier"`
}

// VectorizerSnapshot holds the vocabulary in index order with its IDF weights.
type VectorizerSnapshot struct {
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf"`
}

// ClassifierSnapshot holds per-class weights and intercepts.
type ClassifierSnapshot struct {
	Classes    []string    `json:"classes"`
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

// Snapshot exports the fitted state.
func (p *Pipeline) Snapshot() Snapshot {
	return Snapshot{
		Format:    FormatVersion,
		TrainedAt: p.trainedAt,
		Vectorizer: VectorizerSnapshot{
			Vocabulary: p.vectorizer.terms,
			IDF:        p.vectorizer.idf,
		},
		Classifier: ClassifierSnapshot{
			Classes:    p.classifier.classes,
			Weights:    p.classifier.weights,
			Intercepts: p.classifier.intercepts,
		},
	}
}

// FromSnapshot rebuilds a pipeline, rejecting inconsistent shapes.
func FromSnapshot(s Snapshot) (*Pipeline, error) {
	if s.Format != FormatVersion {
		return nil, fmt.Errorf("unsupported format %q", s.Format)
	}

	dim := len(s.Vectorizer.Vocabulary)
	if dim == 0 {
		return nil, errors.New("empty vocabulary")
	}
	if len(s.Vectorizer.IDF) != dim {
		return nil, fmt.Errorf("idf has %d entries for %d terms", len(s.Vectorizer.IDF), dim)
	}
	seen := make(map[string]bool, dim)
	for _, term := range s.Vectorizer.Vocabulary {
		if seen[term] {
			return nil, fmt.Errorf("duplicate vocabulary term %q", term)
		}
		seen[term] = true
	}
	for i, v := range s.Vectorizer.IDF {
		if !isFinite(v) || v <= 0 {
			return nil, fmt.Errorf("term %q has invalid idf %v", s.Vectorizer.Vocabulary[i], v)
		}
	}

	k := len(s.Classifier.Classes)
	if k < 2 {
		return nil, fmt.Errorf("need at least two classes, got %d", k)
	}
	if len(s.Classifier.Weights) != k || len(s.Classifier.Intercepts) != k {
		return nil, fmt.Errorf("classifier shape mismatch: %d classes, %d weight rows, %d intercepts",
			k, len(s.Classifier.Weights), len(s.Classifier.Intercepts))
	}
	labels := make(map[string]bool, k)
	for c, label := range s.Classifier.Classes {
		if labels[label] {
			return nil, fmt.Errorf("duplicate class %q", label)
		}
		labels[label] = true
		if !isFinite(s.Classifier.Intercepts[c]) {
			return nil, fmt.Errorf("class %q has a non-finite intercept", label)
		}
	}
	for c, row := range s.Classifier.Weights {
		if len(row) != dim {
			return nil, fmt.Errorf("class %q has %d weights for %d terms", s.Classifier.Classes[c], len(row), dim)
		}
		for _, w := range row {
			if !isFinite(w) {
				return nil, fmt.Errorf("class %q has non-finite weights", s.Classifier.Classes[c])
			}
		}
	}

	return &Pipeline{
		vectorizer: newVectorizer(s.Vectorizer.Vocabulary, s.Vectorizer.IDF),
		classifier: &LogisticRegression{
			classes:    s.Classifier.Classes,
			dim:        dim,
			weights:    s.Classifier.Weights,
			intercepts: s.Classifier.Intercepts,
		},
		trainedAt: s.TrainedAt,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

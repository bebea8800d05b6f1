package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LogRegOptions configures the multinomial logistic regression fit.
type LogRegOptions struct {
	// C is the inverse L2 regularization strength.
	C float64
	// MaxIter caps L-BFGS major iterations.
	MaxIter int
	// Tolerance is the gradient infinity-norm stopping threshold.
	Tolerance float64
}

// DefaultLogRegOptions matches the library defaults the classifier was tuned with.
func DefaultLogRegOptions() LogRegOptions {
	return LogRegOptions{C: 1.0, MaxIter: 1000, Tolerance: 1e-4}
}

// FitStats reports how the optimizer terminated.
type FitStats struct {
	Iterations int
	Loss       float64
	Status     string
	Converged  bool
}

// LogisticRegression is a fitted softmax classifier over sparse features.
type LogisticRegression struct {
	classes    []string
	dim        int
	weights    [][]float64
	intercepts []float64
}

// FitLogisticRegression minimizes the mean cross-entropy plus an L2 penalty on
// the weights (intercepts unpenalized). Classes are sorted ascending.
func FitLogisticRegression(x []SparseVector, labels []string, dim int, opts LogRegOptions) (*LogisticRegression, FitStats, error) {
	if len(x) != len(labels) {
		return nil, FitStats{}, fmt.Errorf("logreg: %d samples but %d labels", len(x), len(labels))
	}
	if len(x) == 0 {
		return nil, FitStats{}, errors.New("logreg: no samples")
	}
	if opts.C <= 0 {
		opts.C = 1.0
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 1000
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-4
	}

	classes := uniqueSorted(labels)
	if len(classes) < 2 {
		return nil, FitStats{}, fmt.Errorf("logreg: need at least two classes, got %d", len(classes))
	}
	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}
	y := make([]int, len(labels))
	for i, l := range labels {
		y[i] = classIdx[l]
	}

	k := len(classes)
	stride := dim + 1
	n := float64(len(x))
	penalty := 1 / (2 * opts.C * n)

	objective := func(grad, theta []float64) float64 {
		if grad != nil {
			for i := range grad {
				grad[i] = 0
			}
		}

		var loss float64
		scores := make([]float64, k)
		for i, vec := range x {
			for c := 0; c < k; c++ {
				row := theta[c*stride : (c+1)*stride]
				s := row[dim]
				for j, idx := range vec.Indices {
					s += row[idx] * vec.Values[j]
				}
				scores[c] = s
			}
			lse := floats.LogSumExp(scores)
			loss += lse - scores[y[i]]

			if grad == nil {
				continue
			}
			for c := 0; c < k; c++ {
				delta := math.Exp(scores[c] - lse)
				if c == y[i] {
					delta--
				}
				delta /= n
				row := grad[c*stride : (c+1)*stride]
				row[dim] += delta
				for j, idx := range vec.Indices {
					row[idx] += delta * vec.Values[j]
				}
			}
		}
		loss /= n

		for c := 0; c < k; c++ {
			row := theta[c*stride : c*stride+dim]
			for j, w := range row {
				loss += penalty * w * w
				if grad != nil {
					grad[c*stride+j] += 2 * penalty * w
				}
			}
		}
		return loss
	}

	problem := optimize.Problem{
		Func: func(theta []float64) float64 { return objective(nil, theta) },
		Grad: func(grad, theta []float64) { objective(grad, theta) },
	}
	settings := &optimize.Settings{
		MajorIterations:   opts.MaxIter,
		GradientThreshold: opts.Tolerance,
	}

	start := make([]float64, k*stride)
	result, err := optimize.Minimize(problem, start, settings, &optimize.LBFGS{})
	if result == nil {
		return nil, FitStats{}, fmt.Errorf("logreg: minimize: %w", err)
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return nil, FitStats{}, fmt.Errorf("logreg: optimizer diverged (status %s)", result.Status)
	}

	stats := FitStats{
		Iterations: result.Stats.MajorIterations,
		Loss:       result.F,
		Status:     result.Status.String(),
		Converged:  err == nil && result.Status == optimize.GradientThreshold,
	}

	model := &LogisticRegression{
		classes:    classes,
		dim:        dim,
		weights:    make([][]float64, k),
		intercepts: make([]float64, k),
	}
	for c := 0; c < k; c++ {
		row := result.X[c*stride : (c+1)*stride]
		model.weights[c] = append([]float64(nil), row[:dim]...)
		model.intercepts[c] = row[dim]
	}

	return model, stats, nil
}

// Classes returns the class labels in probability order.
func (m *LogisticRegression) Classes() []string {
	return m.classes
}

// PredictProba returns the softmax distribution over classes.
func (m *LogisticRegression) PredictProba(vec SparseVector) []float64 {
	scores := make([]float64, len(m.classes))
	for c := range m.classes {
		s := m.intercepts[c]
		w := m.weights[c]
		for j, idx := range vec.Indices {
			s += w[idx] * vec.Values[j]
		}
		scores[c] = s
	}

	lse := floats.LogSumExp(scores)
	for c := range scores {
		scores[c] = math.Exp(scores[c] - lse)
	}
	return scores
}

// Predict returns the most probable class; ties resolve to the first class.
func (m *LogisticRegression) Predict(vec SparseVector) string {
	return m.classes[Argmax(m.PredictProba(vec))]
}

// Argmax returns the index of the largest value, preferring the lowest index on ties.
func Argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

func uniqueSorted(values []string) []string {
	set := map[string]struct{}{}
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

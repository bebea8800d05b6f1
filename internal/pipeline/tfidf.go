package pipeline

import (
	"errors"
	"math"
	"sort"
)

// SparseVector holds the non-zero features of one document, ordered by index.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Vectorizer is a fitted TF-IDF transform with a bounded vocabulary.
type Vectorizer struct {
	terms []string
	index map[string]int
	idf   []float64
}

// FitVectorizer learns the vocabulary and inverse document frequencies.
// The vocabulary keeps the maxFeatures most frequent terms across the corpus
// (ties broken by term) and is indexed in term order.
func FitVectorizer(docs []string, maxFeatures int) (*Vectorizer, error) {
	if len(docs) == 0 {
		return nil, errors.New("vectorizer: no documents")
	}

	termFreq := map[string]int{}
	docFreq := map[string]int{}
	for _, doc := range docs {
		seen := map[string]bool{}
		for _, tok := range Analyze(doc) {
			termFreq[tok]++
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
	}
	if len(termFreq) == 0 {
		return nil, errors.New("vectorizer: empty vocabulary; documents contain only stop words")
	}

	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if termFreq[terms[i]] != termFreq[terms[j]] {
				return termFreq[terms[i]] > termFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return newVectorizer(terms, idf), nil
}

func newVectorizer(terms []string, idf []float64) *Vectorizer {
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return &Vectorizer{terms: terms, index: index, idf: idf}
}

// Dim is the vocabulary size.
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}

// Terms returns the vocabulary in index order.
func (v *Vectorizer) Terms() []string {
	return v.terms
}

// Transform maps a document to its L2-normalized TF-IDF vector.
// Out-of-vocabulary terms are ignored; a document with none yields an empty vector.
func (v *Vectorizer) Transform(doc string) SparseVector {
	counts := map[int]float64{}
	for _, tok := range Analyze(doc) {
		if idx, ok := v.index[tok]; ok {
			counts[idx]++
		}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := counts[idx] * v.idf[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}

	return vec
}

// TransformAll vectorizes a batch of documents.
func (v *Vectorizer) TransformAll(docs []string) []SparseVector {
	out := make([]SparseVector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}

// Package search ranks an in-memory corpus against a free-text query using a
// TF-IDF vector space that is refit on every call.
package search

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultTopK is used when the caller asks for zero or fewer results.
const DefaultTopK = 5

// ErrInvalidInput is returned when the corpus is empty.
var ErrInvalidInput = errors.New("invalid search input")

// tokenRe matches runs of two or more letters, digits or underscores.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Hit is a single ranked document.
type Hit struct {
	Index int     `json:"document_index"`
	Score float64 `json:"score"`
}

// vector is a sparse, L2-normalised term weight vector keyed by vocabulary id.
type vector map[int]float64

// model is a vocabulary and idf table fitted on one corpus.
type model struct {
	vocab map[string]int
	idf   []float64
}

// Search scores every document in corpus against query by cosine similarity
// and returns the topK best hits in descending score order.
func Search(query string, corpus []string, topK int) ([]Hit, error) {
	if len(corpus) == 0 {
		return nil, ErrInvalidInput
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	m := fit(corpus)
	q := m.transform(query)

	hits := make([]Hit, len(corpus))
	for i, doc := range corpus {
		hits[i] = Hit{Index: i, Score: cosine(q, m.transform(doc))}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// Tokenize lowercases text and splits it into index terms.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

func fit(corpus []string) *model {
	m := &model{vocab: make(map[string]int)}
	df := make(map[int]int)

	for _, doc := range corpus {
		seen := make(map[int]bool)
		for _, term := range Tokenize(doc) {
			id, ok := m.vocab[term]
			if !ok {
				id = len(m.vocab)
				m.vocab[term] = id
			}
			if !seen[id] {
				seen[id] = true
				df[id]++
			}
		}
	}

	// Smoothed idf, as if one extra document contained every term once.
	n := float64(len(corpus))
	m.idf = make([]float64, len(m.vocab))
	for id := range m.idf {
		m.idf[id] = math.Log((1+n)/(1+float64(df[id]))) + 1
	}
	return m
}

func (m *model) transform(text string) vector {
	v := make(vector)
	for _, term := range Tokenize(text) {
		if id, ok := m.vocab[term]; ok {
			v[id]++
		}
	}

	var norm float64
	for id, tf := range v {
		w := tf * m.idf[id]
		v[id] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for id := range v {
		v[id] /= norm
	}
	return v
}

// cosine assumes both vectors are already normalised.
func cosine(a, b vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var dot float64
	for id, w := range a {
		dot += w * b[id]
	}
	// Rounding can push identical vectors a hair past 1.
	return math.Max(0, math.Min(1, dot))
}

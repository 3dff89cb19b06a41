// Package bm25 implements the Okapi BM25 ranking function over a local
// per-query corpus of token sequences.
package bm25

import (
	"math"
)

// Params holds the BM25 free parameters.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams returns the standard Okapi parameters.
func DefaultParams() Params {
	return Params{K1: 1.5, B: 0.75}
}

// Scorer scores documents against queries using corpus statistics that are
// fitted once per candidate set. Statistics are local to the corpus passed
// to NewScorer: document frequency, idf, and avgdl are re-derived for every
// query's candidate set, never shared globally.
type Scorer struct {
	params Params
	freqs  []map[string]int
	idf    map[string]float64
	docLen []int
	avgdl  float64
}

// NewScorer fits BM25 statistics over the given corpus. Each corpus entry is
// one document's token sequence; order is preserved by Scores.
func NewScorer(corpus [][]string, params Params) *Scorer {
	s := &Scorer{
		params: params,
		freqs:  make([]map[string]int, len(corpus)),
		idf:    make(map[string]float64),
		docLen: make([]int, len(corpus)),
	}

	df := make(map[string]int)
	total := 0
	for i, doc := range corpus {
		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		s.freqs[i] = tf
		s.docLen[i] = len(doc)
		total += len(doc)
	}

	if len(corpus) > 0 {
		s.avgdl = float64(total) / float64(len(corpus))
	}

	// idf(t) = ln((N - df(t) + 0.5) / (df(t) + 0.5) + 1)
	n := float64(len(corpus))
	for term, freq := range df {
		s.idf[term] = math.Log((n-float64(freq)+0.5)/(float64(freq)+0.5) + 1)
	}

	return s
}

// N returns the number of documents in the fitted corpus.
func (s *Scorer) N() int {
	return len(s.freqs)
}

// IDF returns the inverse document frequency of a term, 0 for terms absent
// from the corpus.
func (s *Scorer) IDF(term string) float64 {
	return s.idf[term]
}

// AvgDocLen returns the mean document length of the fitted corpus.
func (s *Scorer) AvgDocLen() float64 {
	return s.avgdl
}

// Scores computes one BM25 score per corpus document for the given query
// token sequence, in corpus order.
func (s *Scorer) Scores(query []string) []float64 {
	scores := make([]float64, len(s.freqs))
	if len(s.freqs) == 0 {
		return scores
	}

	for i, tf := range s.freqs {
		scores[i] = s.scoreDoc(query, tf, s.docLen[i])
	}
	return scores
}

func (s *Scorer) scoreDoc(query []string, tf map[string]int, docLen int) float64 {
	var score float64
	for _, term := range query {
		freq := float64(tf[term])
		if freq == 0 {
			continue
		}

		lengthRatio := 0.0
		if s.avgdl > 0 {
			lengthRatio = float64(docLen) / s.avgdl
		}

		denom := freq + s.params.K1*(1-s.params.B+s.params.B*lengthRatio)
		score += s.idf[term] * (freq * (s.params.K1 + 1)) / denom
	}
	return score
}

package bm25

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestNewScorer_Statistics(t *testing.T) {
	corpus := [][]string{
		{"cat", "dog"},
		{"cat", "cat"},
		{"bird"},
	}

	s := NewScorer(corpus, DefaultParams())

	if s.N() != 3 {
		t.Errorf("N() = %d, want 3", s.N())
	}

	wantAvgdl := 5.0 / 3.0
	if math.Abs(s.AvgDocLen()-wantAvgdl) > tolerance {
		t.Errorf("AvgDocLen() = %v, want %v", s.AvgDocLen(), wantAvgdl)
	}

	// df(cat)=2: idf = ln((3-2+0.5)/(2+0.5) + 1)
	wantIDF := math.Log((3-2+0.5)/(2+0.5) + 1)
	if math.Abs(s.IDF("cat")-wantIDF) > tolerance {
		t.Errorf("IDF(cat) = %v, want %v", s.IDF("cat"), wantIDF)
	}

	// Term absent from corpus has zero idf
	if s.IDF("fish") != 0 {
		t.Errorf("IDF(fish) = %v, want 0", s.IDF("fish"))
	}
}

func TestScores_HandComputed(t *testing.T) {
	corpus := [][]string{
		{"cat", "dog"},
		{"cat", "cat"},
		{"bird"},
	}
	params := DefaultParams()
	s := NewScorer(corpus, params)

	got := s.Scores([]string{"cat"})
	if len(got) != 3 {
		t.Fatalf("Scores() returned %d scores, want 3", len(got))
	}

	idf := math.Log((3-2+0.5)/(2+0.5) + 1)
	avgdl := 5.0 / 3.0

	score := func(tf, dl float64) float64 {
		denom := tf + params.K1*(1-params.B+params.B*dl/avgdl)
		return idf * (tf * (params.K1 + 1)) / denom
	}

	want := []float64{
		score(1, 2), // doc 0: cat once, length 2
		score(2, 2), // doc 1: cat twice, length 2
		0,           // doc 2: no overlap
	}

	for i := range want {
		if math.Abs(got[i]-want[i]) > tolerance {
			t.Errorf("Scores()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScores_ZeroOverlap(t *testing.T) {
	corpus := [][]string{
		{"alpha", "beta"},
		{"gamma"},
		{"delta", "epsilon", "zeta"},
	}
	s := NewScorer(corpus, DefaultParams())

	scores := s.Scores([]string{"cat", "dog"})
	for i, score := range scores {
		if score != 0 {
			t.Errorf("Scores()[%d] = %v, want 0 for zero query overlap", i, score)
		}
	}
}

func TestScores_TermFrequencyMonotonicity(t *testing.T) {
	// Same length documents, increasing tf of the query term: the score
	// must be non-decreasing in tf.
	corpus := [][]string{
		{"cat", "pad", "pad", "pad"},
		{"cat", "cat", "pad", "pad"},
		{"cat", "cat", "cat", "pad"},
		{"cat", "cat", "cat", "cat"},
	}
	s := NewScorer(corpus, DefaultParams())

	scores := s.Scores([]string{"cat"})
	for i := 1; i < len(scores); i++ {
		if scores[i] < scores[i-1] {
			t.Errorf("score not monotone in tf: scores[%d]=%v < scores[%d]=%v",
				i, scores[i], i-1, scores[i-1])
		}
	}
}

func TestScores_RepeatedQueryTerm(t *testing.T) {
	corpus := [][]string{
		{"cat", "dog"},
	}
	s := NewScorer(corpus, DefaultParams())

	single := s.Scores([]string{"cat"})
	double := s.Scores([]string{"cat", "cat"})

	// Each occurrence of a query term contributes once
	if math.Abs(double[0]-2*single[0]) > tolerance {
		t.Errorf("repeated query term: got %v, want %v", double[0], 2*single[0])
	}
}

func TestScores_SingleDocumentCorpus(t *testing.T) {
	corpus := [][]string{
		{"only", "document"},
	}
	s := NewScorer(corpus, DefaultParams())

	scores := s.Scores([]string{"only"})
	if len(scores) != 1 {
		t.Fatalf("Scores() returned %d scores, want 1", len(scores))
	}

	if math.IsNaN(scores[0]) || math.IsInf(scores[0], 0) {
		t.Errorf("single document corpus produced degenerate score %v", scores[0])
	}

	// df = N = 1: idf = ln((1-1+0.5)/(1+0.5) + 1) = ln(4/3) > 0
	if scores[0] <= 0 {
		t.Errorf("score = %v, want > 0 for matching term", scores[0])
	}
}

func TestScores_EmptyCorpus(t *testing.T) {
	s := NewScorer(nil, DefaultParams())

	scores := s.Scores([]string{"cat"})
	if len(scores) != 0 {
		t.Errorf("Scores() on empty corpus returned %d scores, want 0", len(scores))
	}
}

func TestScores_EmptyDocuments(t *testing.T) {
	// All-empty documents: avgdl is 0 and must not divide by zero.
	corpus := [][]string{{}, {}}
	s := NewScorer(corpus, DefaultParams())

	scores := s.Scores([]string{"cat"})
	for i, score := range scores {
		if score != 0 {
			t.Errorf("Scores()[%d] = %v, want 0 for empty documents", i, score)
		}
		if math.IsNaN(score) {
			t.Errorf("Scores()[%d] is NaN", i)
		}
	}
}

func TestScores_EmptyQuery(t *testing.T) {
	corpus := [][]string{
		{"cat", "dog"},
	}
	s := NewScorer(corpus, DefaultParams())

	scores := s.Scores(nil)
	if scores[0] != 0 {
		t.Errorf("Scores(nil)[0] = %v, want 0", scores[0])
	}
}

func BenchmarkScores(b *testing.B) {
	corpus := make([][]string, 1000)
	for i := range corpus {
		corpus[i] = []string{"the", "quick", "brown", "fox", "jump", "over", "lazy", "dog"}
	}
	s := NewScorer(corpus, DefaultParams())
	query := []string{"quick", "fox", "dog"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Scores(query)
	}
}

package evaluation

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/guillametlucia/relevant-document-retrieval/internal/bm25"
	"github.com/guillametlucia/relevant-document-retrieval/internal/bus"
	"github.com/guillametlucia/relevant-document-retrieval/internal/dataset"
	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/errors"
)

func fixtureSets() []dataset.CandidateSet {
	return []dataset.CandidateSet{
		{
			// BM25 ranks the passages cat-heavy first: the relevant
			// passage lands at rank 2 of 3.
			QueryID: "q1",
			Query:   []string{"cat"},
			Rows: []dataset.Row{
				{QueryID: "q1", PassageID: "p1", PassageTokens: []string{"cat", "cat", "cat"}, Relevancy: 0, Seq: 0},
				{QueryID: "q1", PassageID: "p2", PassageTokens: []string{"cat", "dog"}, Relevancy: 1, Seq: 1},
				{QueryID: "q1", PassageID: "p3", PassageTokens: []string{"bird"}, Relevancy: 0, Seq: 2},
			},
		},
		{
			// Perfect ranking: the only relevant passage is the only match.
			QueryID: "q2",
			Query:   []string{"dog"},
			Rows: []dataset.Row{
				{QueryID: "q2", PassageID: "p4", PassageTokens: []string{"dog"}, Relevancy: 1, Seq: 3},
				{QueryID: "q2", PassageID: "p5", PassageTokens: []string{"fish"}, Relevancy: 0, Seq: 4},
			},
		},
		{
			// No relevant passages at all.
			QueryID: "q3",
			Query:   []string{"horse"},
			Rows: []dataset.Row{
				{QueryID: "q3", PassageID: "p6", PassageTokens: []string{"horse", "saddle"}, Relevancy: 0, Seq: 5},
			},
		},
		{
			// Empty candidate set, must be skipped.
			QueryID: "q4",
			Query:   []string{"empty"},
			Rows:    nil,
		},
	}
}

func TestEvaluatorRun(t *testing.T) {
	evaluator := New(bm25.DefaultParams(), 100, nil, nil)

	summary, err := evaluator.Run(context.Background(), "run-test", fixtureSets())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Queries != 3 {
		t.Errorf("Queries = %d, want 3", summary.Queries)
	}
	if summary.SkippedEmpty != 1 {
		t.Errorf("SkippedEmpty = %d, want 1", summary.SkippedEmpty)
	}
	if summary.ZeroRelevant != 1 {
		t.Errorf("ZeroRelevant = %d, want 1", summary.ZeroRelevant)
	}

	// q1: relevant at rank 2 of 3, precision 1/3, NDCG 1/log2(3).
	// q2: perfect ranking, precision 1/2, NDCG exactly 1.
	// q3: no relevant, precision 0, excluded from the NDCG mean.
	wantPrecision := (1.0/3.0 + 0.5 + 0.0) / 3.0
	wantNDCG := (1.0/math.Log2(3) + 1.0) / 2.0

	if math.Abs(summary.MeanPrecision-wantPrecision) > 1e-9 {
		t.Errorf("MeanPrecision = %v, want %v", summary.MeanPrecision, wantPrecision)
	}
	if math.Abs(summary.MeanNDCG-wantNDCG) > 1e-9 {
		t.Errorf("MeanNDCG = %v, want %v", summary.MeanNDCG, wantNDCG)
	}

	if len(summary.Results) != 3 {
		t.Fatalf("Results length = %d, want 3", len(summary.Results))
	}

	q2 := summary.Results[1]
	if q2.QueryID != "q2" {
		t.Fatalf("Results[1].QueryID = %s, want q2", q2.QueryID)
	}
	if q2.NDCG != 1.0 {
		t.Errorf("perfect ranking NDCG = %v, want exactly 1.0", q2.NDCG)
	}

	q3 := summary.Results[2]
	if q3.HasRelevant {
		t.Error("q3 should report no relevant passages")
	}
	if q3.Precision != 0 {
		t.Errorf("q3 precision = %v, want 0", q3.Precision)
	}
}

func TestEvaluatorRun_ThreeQueriesHandComputed(t *testing.T) {
	// Three queries with four candidates each, two relevant per query at
	// varying rank positions. Within each set the BM25 ordering follows
	// term frequency at comparable lengths, so the rank layout is fixed:
	// higher tf of the query term wins, zero overlap scores 0.
	sets := []dataset.CandidateSet{
		{
			// Relevant at ranks 1 and 2 (perfect ranking).
			QueryID: "q1",
			Query:   []string{"apple"},
			Rows: []dataset.Row{
				{PassageID: "p1", PassageTokens: []string{"apple", "apple", "apple"}, Relevancy: 1},
				{PassageID: "p2", PassageTokens: []string{"apple", "banana"}, Relevancy: 1},
				{PassageID: "p3", PassageTokens: []string{"banana", "cherry"}, Relevancy: 0},
				{PassageID: "p4", PassageTokens: []string{"cherry"}, Relevancy: 0},
			},
		},
		{
			// Relevant at ranks 2 and 4.
			QueryID: "q2",
			Query:   []string{"dog"},
			Rows: []dataset.Row{
				{PassageID: "p5", PassageTokens: []string{"dog", "dog", "dog"}, Relevancy: 0},
				{PassageID: "p6", PassageTokens: []string{"dog", "dog"}, Relevancy: 1},
				{PassageID: "p7", PassageTokens: []string{"dog", "fish"}, Relevancy: 0},
				{PassageID: "p8", PassageTokens: []string{"fish", "bird"}, Relevancy: 1},
			},
		},
		{
			// Relevant at ranks 1 and 3.
			QueryID: "q3",
			Query:   []string{"red"},
			Rows: []dataset.Row{
				{PassageID: "p9", PassageTokens: []string{"red", "red", "red"}, Relevancy: 1},
				{PassageID: "p10", PassageTokens: []string{"red", "red"}, Relevancy: 0},
				{PassageID: "p11", PassageTokens: []string{"red", "green"}, Relevancy: 1},
				{PassageID: "p12", PassageTokens: []string{"green"}, Relevancy: 0},
			},
		},
	}

	evaluator := New(bm25.DefaultParams(), 100, nil, nil)
	summary, err := evaluator.Run(context.Background(), "run-hand", sets)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Every query retrieves 4 candidates with 2 relevant: precision 1/2.
	if math.Abs(summary.MeanPrecision-0.5) > 1e-6 {
		t.Errorf("MeanPrecision = %v, want 0.5", summary.MeanPrecision)
	}

	idcg := 1.0 + 1.0/math.Log2(3)
	ndcgQ1 := 1.0
	ndcgQ2 := (1.0/math.Log2(3) + 1.0/math.Log2(5)) / idcg
	ndcgQ3 := (1.0 + 1.0/math.Log2(4)) / idcg
	wantNDCG := (ndcgQ1 + ndcgQ2 + ndcgQ3) / 3.0

	if math.Abs(summary.MeanNDCG-wantNDCG) > 1e-6 {
		t.Errorf("MeanNDCG = %v, want %v", summary.MeanNDCG, wantNDCG)
	}

	for i, want := range []float64{ndcgQ1, ndcgQ2, ndcgQ3} {
		if math.Abs(summary.Results[i].NDCG-want) > 1e-6 {
			t.Errorf("Results[%d].NDCG = %v, want %v", i, summary.Results[i].NDCG, want)
		}
	}
}

func TestEvaluatorRun_CutoffShorterThanSet(t *testing.T) {
	evaluator := New(bm25.DefaultParams(), 2, nil, nil)

	sets := []dataset.CandidateSet{
		{
			QueryID: "q1",
			Query:   []string{"cat"},
			Rows: []dataset.Row{
				{PassageID: "p1", PassageTokens: []string{"cat", "cat"}, Relevancy: 1},
				{PassageID: "p2", PassageTokens: []string{"cat"}, Relevancy: 0},
				{PassageID: "p3", PassageTokens: []string{"dog"}, Relevancy: 1},
			},
		},
	}

	summary, err := evaluator.Run(context.Background(), "run-cutoff", sets)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Ranking is p1, p2, p3. With cutoff 2 only p1 is relevant in window:
	// precision 1/2, DCG 1, IDCG min(2 relevant, cutoff 2) positions.
	res := summary.Results[0]
	if math.Abs(res.Precision-0.5) > 1e-9 {
		t.Errorf("Precision = %v, want 0.5", res.Precision)
	}

	wantNDCG := 1.0 / (1.0 + 1.0/math.Log2(3))
	if math.Abs(res.NDCG-wantNDCG) > 1e-9 {
		t.Errorf("NDCG = %v, want %v", res.NDCG, wantNDCG)
	}
}

func TestEvaluatorRun_TieBreakIsInputOrder(t *testing.T) {
	evaluator := New(bm25.DefaultParams(), 100, nil, nil)

	// Identical passages score identically. The relevant one listed first
	// must win the tie and take rank 1.
	sets := []dataset.CandidateSet{
		{
			QueryID: "q1",
			Query:   []string{"cat"},
			Rows: []dataset.Row{
				{PassageID: "p1", PassageTokens: []string{"cat"}, Relevancy: 1},
				{PassageID: "p2", PassageTokens: []string{"cat"}, Relevancy: 0},
			},
		},
	}

	summary, err := evaluator.Run(context.Background(), "run-ties", sets)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Results[0].NDCG != 1.0 {
		t.Errorf("NDCG = %v, want exactly 1.0 (relevant row wins tie)", summary.Results[0].NDCG)
	}
}

func TestEvaluatorRun_AllEmpty(t *testing.T) {
	evaluator := New(bm25.DefaultParams(), 100, nil, nil)

	sets := []dataset.CandidateSet{
		{QueryID: "q1", Query: []string{"a"}, Rows: nil},
		{QueryID: "q2", Query: []string{"b"}, Rows: nil},
	}

	_, err := evaluator.Run(context.Background(), "run-empty", sets)
	if err == nil {
		t.Fatal("Run should fail when every candidate set is empty")
	}
	if !errors.IsEmptyCandidate(err) {
		t.Errorf("error code = %v, want empty candidate set", err)
	}
}

func TestEvaluatorRun_PublishesEvents(t *testing.T) {
	memBus := bus.NewMemoryBus()

	var mu sync.Mutex
	counts := map[string]int{}
	record := func(topic string) bus.Handler {
		return func(ctx context.Context, event bus.Event) error {
			mu.Lock()
			counts[topic]++
			mu.Unlock()
			return nil
		}
	}

	ctx := context.Background()
	for _, topic := range []string{bus.TopicRunStarted, bus.TopicQueryEvaluated, bus.TopicRunCompleted} {
		if err := memBus.Subscribe(ctx, topic, record(topic)); err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
	}

	evaluator := New(bm25.DefaultParams(), 100, memBus, nil)
	if _, err := evaluator.Run(ctx, "run-events", fixtureSets()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Close drains in-flight handler goroutines.
	if err := memBus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if counts[bus.TopicRunStarted] != 1 {
		t.Errorf("run started events = %d, want 1", counts[bus.TopicRunStarted])
	}
	if counts[bus.TopicQueryEvaluated] != 3 {
		t.Errorf("query evaluated events = %d, want 3", counts[bus.TopicQueryEvaluated])
	}
	if counts[bus.TopicRunCompleted] != 1 {
		t.Errorf("run completed events = %d, want 1", counts[bus.TopicRunCompleted])
	}
}

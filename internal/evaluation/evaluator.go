// Package evaluation ranks each query's candidate passages with BM25 and
// scores the ranking with precision and NDCG cutoff metrics.
package evaluation

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/guillametlucia/relevant-document-retrieval/internal/bm25"
	"github.com/guillametlucia/relevant-document-retrieval/internal/bus"
	"github.com/guillametlucia/relevant-document-retrieval/internal/dataset"
	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/errors"
	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/hash"
	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/logger"
	"github.com/guillametlucia/relevant-document-retrieval/internal/rank"
)

const eventSource = "evaluator"

// Evaluator runs the per-query ranking loop. BM25 statistics are fitted
// against each query's own candidate passages, never across queries, so the
// order in which candidate sets are evaluated cannot change any score.
type Evaluator struct {
	params   bm25.Params
	cutoff   int
	eventBus bus.Bus
	log      *logger.Logger
	progress *rate.Limiter
	eventSeq int64
}

// New creates an evaluator. cutoff is the rank cutoff K for both metrics;
// eventBus may be nil when no run events are wanted.
func New(params bm25.Params, cutoff int, eventBus bus.Bus, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.Default()
	}
	return &Evaluator{
		params:   params,
		cutoff:   cutoff,
		eventBus: eventBus,
		log:      log,
		progress: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Run evaluates every candidate set and aggregates the per-query metrics.
// Mean precision averages over all evaluated queries; mean NDCG averages
// only over queries that have at least one relevant candidate, since NDCG
// is undefined without an ideal ranking. Candidate sets with no rows are
// skipped with a warning.
func (e *Evaluator) Run(ctx context.Context, runID string, sets []dataset.CandidateSet) (*RunSummary, error) {
	totalRows := 0
	for i := range sets {
		totalRows += len(sets[i].Rows)
	}

	e.publish(ctx, bus.TopicRunStarted, bus.RunStartedPayload{
		RunID:   runID,
		Rows:    totalRows,
		Queries: len(sets),
	})

	summary := &RunSummary{
		RunID:   runID,
		Results: make([]QueryResult, 0, len(sets)),
	}

	var precisionSum, ndcgSum float64
	ndcgQueries := 0

	for i := range sets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		set := &sets[i]
		if len(set.Rows) == 0 {
			e.log.WithQuery(set.QueryID).Warn("Skipping query with empty candidate set")
			summary.SkippedEmpty++
			continue
		}

		result := e.evaluateSet(set)
		summary.Queries++
		summary.Results = append(summary.Results, result)

		precisionSum += result.Precision
		if result.HasRelevant {
			ndcgSum += result.NDCG
			ndcgQueries++
		} else {
			summary.ZeroRelevant++
		}

		e.publish(ctx, bus.TopicQueryEvaluated, bus.QueryEvaluatedPayload{
			RunID:      runID,
			QueryID:    result.QueryID,
			Candidates: result.Candidates,
			Relevant:   result.Relevant,
			Precision:  result.Precision,
			NDCG:       result.NDCG,
		})

		if e.progress.Allow() {
			e.log.Info("Evaluating queries",
				"done", summary.Queries,
				"total", len(sets),
			)
		}
	}

	if summary.Queries == 0 {
		return nil, errors.New(errors.CodeEmptyCandidate, "no query has any candidate passages")
	}

	summary.MeanPrecision = precisionSum / float64(summary.Queries)
	if ndcgQueries > 0 {
		summary.MeanNDCG = ndcgSum / float64(ndcgQueries)
	}

	e.publish(ctx, bus.TopicRunCompleted, bus.RunCompletedPayload{
		RunID:         runID,
		Queries:       summary.Queries,
		SkippedEmpty:  summary.SkippedEmpty,
		MeanPrecision: summary.MeanPrecision,
		MeanNDCG:      summary.MeanNDCG,
	})

	e.log.Info("Evaluation run completed",
		"run_id", runID,
		"queries", summary.Queries,
		"skipped_empty", summary.SkippedEmpty,
		"zero_relevant", summary.ZeroRelevant,
		"mean_precision", summary.MeanPrecision,
		"mean_ndcg", summary.MeanNDCG,
	)

	return summary, nil
}

// evaluateSet fits BM25 against the set's passages, ranks them for the
// query, and computes the cutoff metrics over the ranked relevance labels.
func (e *Evaluator) evaluateSet(set *dataset.CandidateSet) QueryResult {
	corpus := make([][]string, len(set.Rows))
	for i := range set.Rows {
		corpus[i] = set.Rows[i].PassageTokens
	}

	scorer := bm25.NewScorer(corpus, e.params)
	scores := scorer.Scores(set.Query)
	ranks := rank.Ranks(scores)

	// Relevance labels rearranged into rank order: index 0 is rank 1.
	relByRank := make([]int, len(set.Rows))
	for i, r := range ranks {
		relByRank[r-1] = set.Rows[i].Relevancy
	}

	k := e.cutoff
	if k > len(relByRank) {
		k = len(relByRank)
	}

	ndcg, hasRelevant := NDCGAtK(relByRank, k)

	return QueryResult{
		QueryID:     set.QueryID,
		Candidates:  len(set.Rows),
		Relevant:    set.RelevantCount(),
		Precision:   PrecisionAtK(relByRank, k),
		NDCG:        ndcg,
		HasRelevant: hasRelevant,
	}
}

// publish emits a run event. Failures are logged and never abort the run.
func (e *Evaluator) publish(ctx context.Context, topic string, payload any) {
	if e.eventBus == nil {
		return
	}

	e.eventSeq++
	event := bus.Event{
		ID:        hash.EventID(topic, e.eventSeq),
		Type:      topic,
		Source:    eventSource,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}

	if err := e.eventBus.Publish(ctx, topic, event); err != nil {
		e.log.Warn("Failed to publish run event",
			"topic", topic,
			"error", err.Error(),
		)
	}
}

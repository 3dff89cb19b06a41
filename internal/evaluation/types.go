package evaluation

// QueryResult contains metrics for a single query's candidate set.
type QueryResult struct {
	QueryID     string  `json:"query_id"`
	Candidates  int     `json:"candidates"`
	Relevant    int     `json:"relevant"`
	Precision   float64 `json:"precision"`
	NDCG        float64 `json:"ndcg"`
	HasRelevant bool    `json:"has_relevant"`
}

// RunSummary aggregates metrics across all evaluated queries.
type RunSummary struct {
	RunID         string        `json:"run_id"`
	Queries       int           `json:"queries"`
	SkippedEmpty  int           `json:"skipped_empty"`
	ZeroRelevant  int           `json:"zero_relevant"`
	MeanPrecision float64       `json:"mean_precision"`
	MeanNDCG      float64       `json:"mean_ndcg"`
	Results       []QueryResult `json:"results,omitempty"`
}

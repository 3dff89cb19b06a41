package dataset

// GroupByQuery builds per-query candidate sets from judged rows. Queries
// appear in first-seen order and rows keep their original order inside
// each group, so every downstream step sees the same deterministic layout.
// The query token sequence is taken from the group's first row; all rows
// of one query carry the same query text by construction of the source join.
func GroupByQuery(rows []Row) []CandidateSet {
	index := make(map[string]int)
	var sets []CandidateSet

	for _, row := range rows {
		i, ok := index[row.QueryID]
		if !ok {
			i = len(sets)
			index[row.QueryID] = i
			sets = append(sets, CandidateSet{
				QueryID: row.QueryID,
				Query:   row.QueryTokens,
			})
		}
		sets[i].Rows = append(sets[i].Rows, row)
	}

	return sets
}

// Package dataset handles the flat-text tables the evaluation consumes:
// reading judged query/passage rows, deterministic subsampling, grouping
// rows into per-query candidate sets, and writing cleaned artifacts.
package dataset

// Row is one judged candidate row from the validation table: a passage
// paired with its owning query and a binary relevance judgment.
type Row struct {
	QueryID     string
	PassageID   string
	QueryText   string
	PassageText string
	Relevancy   int // binary: 0 or 1

	// Normalized token sequences, filled by the cleaning pass.
	QueryTokens   []string
	PassageTokens []string

	// Seq is the original row sequence number in the source table. It is
	// the explicit tie-break key for ranking, so results stay reproducible
	// regardless of how rows are carried around in memory.
	Seq int
}

// CandidateSet is the ordered collection of all rows belonging to one
// query. It forms the local corpus BM25 statistics are fitted against.
type CandidateSet struct {
	QueryID string
	Query   []string
	Rows    []Row
}

// RelevantCount returns the number of rows judged relevant.
func (cs *CandidateSet) RelevantCount() int {
	n := 0
	for _, row := range cs.Rows {
		if row.Relevancy == 1 {
			n++
		}
	}
	return n
}

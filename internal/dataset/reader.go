package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/errors"
)

// ReadValidation reads a tab-separated validation table of judged rows.
// The expected columns are qid, pid, queries, passage, relevancy; a header
// row using those names is skipped. Any malformed row is fatal: a row that
// cannot be parsed must never be silently scored.
func ReadValidation(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("opening validation data %s", path), err)
	}
	defer f.Close()

	rows, err := parseValidation(f)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func parseValidation(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows []Row
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.MalformedInputError(fmt.Sprintf("reading row %d: %v", line+1, err))
		}
		line++

		// Header row
		if line == 1 && len(record) > 0 && record[0] == "qid" {
			continue
		}

		if len(record) != 5 {
			return nil, errors.MalformedInputError(
				fmt.Sprintf("row %d has %d columns, want 5 (qid, pid, queries, passage, relevancy)", line, len(record)))
		}

		relevancy, err := parseRelevancy(record[4])
		if err != nil {
			return nil, errors.MalformedInputError(
				fmt.Sprintf("row %d has invalid relevancy %q", line, record[4])).
				WithDetail("qid", record[0]).
				WithDetail("pid", record[1])
		}

		if record[0] == "" || record[1] == "" {
			return nil, errors.MalformedInputError(
				fmt.Sprintf("row %d is missing qid or pid", line))
		}

		rows = append(rows, Row{
			QueryID:     record[0],
			PassageID:   record[1],
			QueryText:   record[2],
			PassageText: record[3],
			Relevancy:   relevancy,
			Seq:         len(rows),
		})
	}

	return rows, nil
}

// parseRelevancy accepts integer and float spellings of the binary label
// (the source table stores 0.0/1.0).
func parseRelevancy(s string) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	switch v {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, fmt.Errorf("relevancy %v is not binary", v)
}

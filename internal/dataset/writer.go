package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/errors"
)

// WriteTokensJSON writes normalized token sequences as a plain JSON array
// of arrays, one entry per input text.
func WriteTokensJSON(path string, sequences [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.IOError(fmt.Sprintf("creating output directory for %s", path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.IOError(fmt.Sprintf("creating %s", path), err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(sequences); err != nil {
		return errors.IOError(fmt.Sprintf("encoding token sequences to %s", path), err)
	}
	return nil
}

// ReadTokensJSON reads a token-sequence artifact written by WriteTokensJSON.
func ReadTokensJSON(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()

	var sequences [][]string
	if err := json.NewDecoder(f).Decode(&sequences); err != nil {
		return nil, errors.MalformedInputError(fmt.Sprintf("decoding token sequences from %s: %v", path, err))
	}
	return sequences, nil
}

// WriteCleanedRows writes cleaned rows as a comma-separated flat text table
// with the columns qid, pid, clean queries, clean passages, relevancy.
// Token sequences are space-joined.
func WriteCleanedRows(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.IOError(fmt.Sprintf("creating output directory for %s", path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.IOError(fmt.Sprintf("creating %s", path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"qid", "pid", "clean queries", "clean passages", "relevancy"}); err != nil {
		return errors.IOError(fmt.Sprintf("writing header to %s", path), err)
	}

	for _, row := range rows {
		record := []string{
			row.QueryID,
			row.PassageID,
			strings.Join(row.QueryTokens, " "),
			strings.Join(row.PassageTokens, " "),
			strconv.Itoa(row.Relevancy),
		}
		if err := w.Write(record); err != nil {
			return errors.IOError(fmt.Sprintf("writing row to %s", path), err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.IOError(fmt.Sprintf("flushing %s", path), err)
	}
	return nil
}

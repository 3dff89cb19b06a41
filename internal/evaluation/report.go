package evaluation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/errors"
)

// FormatReport renders the run summary in the two-line result format.
func FormatReport(summary *RunSummary) string {
	return "Mean Precision BM25: " + formatMetric(summary.MeanPrecision) + "\n" +
		"Mean NDCG BM25: " + formatMetric(summary.MeanNDCG) + "\n"
}

// WriteReport writes the summary to w.
func WriteReport(w io.Writer, summary *RunSummary) error {
	if _, err := io.WriteString(w, FormatReport(summary)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// SaveReport writes the summary to a results file, creating parent
// directories as needed.
func SaveReport(path string, summary *RunSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.IOError("failed to create results directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.IOError("failed to create results file", err)
	}
	defer f.Close()

	if err := WriteReport(f, summary); err != nil {
		return errors.IOError("failed to write results file", err)
	}

	return f.Sync()
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package evaluation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatReport(t *testing.T) {
	summary := &RunSummary{
		MeanPrecision: 0.4,
		MeanNDCG:      0.8154648767857288,
	}

	got := FormatReport(summary)
	want := "Mean Precision BM25: 0.4\nMean NDCG BM25: 0.8154648767857288\n"
	if got != want {
		t.Errorf("FormatReport = %q, want %q", got, want)
	}
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outputs", "bm25_results.txt")

	summary := &RunSummary{MeanPrecision: 0.25, MeanNDCG: 1}
	if err := SaveReport(path, summary); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Report has %d lines, want 2", len(lines))
	}
	if lines[0] != "Mean Precision BM25: 0.25" {
		t.Errorf("Line 1 = %q", lines[0])
	}
	if lines[1] != "Mean NDCG BM25: 1" {
		t.Errorf("Line 2 = %q", lines[1])
	}
}

package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pixbatch/models"
)

// ErrReportWrite wraps every failure to persist the report. It is the run's terminal error.
var ErrReportWrite = errors.New("failed to write report")

// Conclusions rendered under the timing table.
const (
	ConclusionImproved      = "Parallel improved performance: the concurrent pass finished faster than the sequential pass."
	ConclusionNoImprovement = "Parallel did not show improvement: results are similar or slower than the sequential pass."
)

// Improved reports whether the parallel pass was strictly faster. Ties are not an improvement.
func Improved(seq, par models.PassResult) bool {
	return seq.Milliseconds() > par.Milliseconds()
}

// Render builds the Markdown comparison of the two passes.
func Render(seq, par models.PassResult) string {
	var sb strings.Builder
	sb.WriteString("# Image optimisation results\n\n")
	sb.WriteString("| Version | Duration (ms) |\n")
	sb.WriteString("| :--- | :--- |\n")
	fmt.Fprintf(&sb, "| Sequential | **%d** |\n", seq.Milliseconds())
	fmt.Fprintf(&sb, "| Parallel | **%d** |\n", par.Milliseconds())
	sb.WriteString("\n## Conclusion\n")
	if Improved(seq, par) {
		sb.WriteString(ConclusionImproved)
	} else {
		sb.WriteString(ConclusionNoImprovement)
	}
	sb.WriteString("\n")
	return sb.String()
}

// Write replaces path with text atomically: a temp file in the same directory is
// synced and renamed over the target.
func Write(path, text string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReportWrite, err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrReportWrite, path, cause)
	}

	if _, err := tmp.WriteString(text); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrReportWrite, path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrReportWrite, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrReportWrite, path, err)
	}
	return nil
}

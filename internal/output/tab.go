// Package output writes contamination estimates as JSON and tab-delimited
// tables.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-contam/internal/contam"
)

// TabWriter writes the per-level likelihood table in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"contamination_level",
			"log_likelihood",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single grid result. Values use the shortest
// representation that parses back to the same float64.
func (tw *TabWriter) Write(r contam.ContamProbResult) error {
	values := []string{
		strconv.FormatFloat(r.ContaminationLevel, 'g', -1, 64),
		strconv.FormatFloat(r.LogLikelihood, 'g', -1, 64),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header followed by every result in order and flushes.
func (tw *TabWriter) WriteAll(results []contam.ContamProbResult) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range results {
		if err := tw.Write(r); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

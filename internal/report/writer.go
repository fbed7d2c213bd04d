package report

import (
	"io"

	"github.com/crimlab/coforest/internal/model"
)

// Writer renders a fitted model's run summary: the posterior estimates,
// convergence status, and sampler settings of one archived run.
//
// Design decision: An interface over the summary (not io.Writer over
// bytes) so the fit command can pick text, JSON, or Markdown per flag
// and send the same run to a terminal, a report file, or both.
type Writer interface {
	// Write renders the run summary to the configured destination and
	// returns the number of bytes written.
	Write(run *model.RunSummary) (int, error)
}

// MultiWriter fans one run summary out to several Writers, typically a
// terminal writer plus a file writer.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the run through every writer in order, stopping at the
// first error. Returns the total bytes written.
func (m *MultiWriter) Write(run *model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

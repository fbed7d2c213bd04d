package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/crimlab/coforest/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with aligned estimate
// columns and clear section formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-group diagnostics in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-group diagnostics.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(run *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeSettings(&sb, run)
	w.writeGroups(&sb, run)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      CO-OFFENDING ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Model:       %s\n", run.ModelName))
	sb.WriteString(fmt.Sprintf("Data:        %s\n", run.DataFile))
	sb.WriteString(fmt.Sprintf("Fitted:      %s\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	if run.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run ID:      %s\n", run.RunID))
	}
	sb.WriteString(fmt.Sprintf("Convergence: %s (worst R-hat %.3f, min ESS %.0f)\n",
		run.Status, run.WorstRHat, run.MinESS))
	sb.WriteString("\n")

	if run.Status == model.StatusPoor {
		sb.WriteString("!!! Chains did not converge. Do not interpret these estimates.\n\n")
	}
}

// writeSettings writes the sampler settings section.
func (w *SimpleWriter) writeSettings(sb *strings.Builder, run *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SAMPLER SETTINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Chains:     %d\n", run.Chains))
	sb.WriteString(fmt.Sprintf("  Iterations: %d (after %d warmup)\n", run.Iterations, run.Warmup))
	sb.WriteString(fmt.Sprintf("  Seed:       %d\n", run.Seed))
	sb.WriteString("\n")
}

// writeGroups writes the posterior estimates table.
func (w *SimpleWriter) writeGroups(sb *strings.Builder, run *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("POSTERIOR ESTIMATES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(run.Groups) == 0 {
		sb.WriteString("  No group estimates\n\n")
		return
	}

	width := labelWidth(run.Groups)
	sb.WriteString(fmt.Sprintf("  %-*s  %6s  %15s  %15s  %8s\n",
		width, "Group", "Mean", "80% interval", "95% interval", "Observed"))

	for _, g := range run.Groups {
		sb.WriteString(fmt.Sprintf("  %-*s  %6.3f  [%5.3f, %5.3f]  [%5.3f, %5.3f]  %8s\n",
			width, g.Label, g.Mean, g.Lo80, g.Hi80, g.Lo95, g.Hi95, formatObserved(g.Observed)))
		if w.verbose && g.RHat > 0 {
			sb.WriteString(fmt.Sprintf("  %-*s  R-hat %.3f, ESS %.0f\n", width, "", g.RHat, g.ESS))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by coforest\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// labelWidth returns the widest group label, for column alignment.
func labelWidth(groups []model.GroupSummary) int {
	width := len("Group")
	for _, g := range groups {
		if len(g.Label) > width {
			width = len(g.Label)
		}
	}
	return width
}

// formatObserved renders an observed proportion, with a dash for groups
// that have no offenses.
func formatObserved(p float64) string {
	if math.IsNaN(p) {
		return "-"
	}
	return fmt.Sprintf("%.3f", p)
}

package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/crimlab/coforest/internal/model"
)

// MarkdownWriter outputs run summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// plotFiles are image paths embedded at the end of the report.
	plotFiles []string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithPlotFiles embeds the given plot images at the end of the report.
func WithPlotFiles(files []string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.plotFiles = files
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(run *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeConvergence(md, run)
	w.writeGroups(md, run)
	w.writePlots(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.RunSummary) {
	md.H1("Co-offending Analysis Report")
	md.PlainText("")

	rows := [][]string{
		{"Model", "`" + run.ModelName + "`"},
		{"Data", "`" + run.DataFile + "`"},
		{"Fitted", run.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"Chains", strconv.Itoa(run.Chains)},
		{"Iterations", fmt.Sprintf("%d (after %d warmup)", run.Iterations, run.Warmup)},
		{"Seed", strconv.FormatUint(run.Seed, 10)},
	}
	if run.RunID != "" {
		rows = append(rows, []string{"Run ID", "`" + run.RunID + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeConvergence writes the convergence section with an alert matching
// the run status.
func (w *MarkdownWriter) writeConvergence(md *markdown.Markdown, run *model.RunSummary) {
	md.H2("Convergence")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Worst R-hat", "Min ESS"},
		Rows: [][]string{
			{run.Status.String(), fmt.Sprintf("%.3f", run.WorstRHat), fmt.Sprintf("%.0f", run.MinESS)},
		},
	})
	md.PlainText("")

	switch run.Status {
	case model.StatusPoor:
		md.Cautionf(
			"Chains did not converge (worst R-hat %.3f, min ESS %.0f). Do not interpret these estimates.",
			run.WorstRHat, run.MinESS,
		)
	case model.StatusAcceptable:
		md.Warningf(
			"Sampling is usable but imperfect (worst R-hat %.3f, min ESS %.0f). Consider more iterations.",
			run.WorstRHat, run.MinESS,
		)
	default:
		md.Tip("All chains mixed well. Estimates can be interpreted as-is.")
	}
	md.PlainText("")
}

// writeGroups writes the posterior estimates table.
func (w *MarkdownWriter) writeGroups(md *markdown.Markdown, run *model.RunSummary) {
	md.H2("Posterior Estimates")
	md.PlainText("")

	if len(run.Groups) == 0 {
		md.PlainText("No group estimates.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(run.Groups))
	for _, g := range run.Groups {
		rows = append(rows, []string{
			g.Label,
			fmt.Sprintf("%.3f", g.Mean),
			fmt.Sprintf("[%.3f, %.3f]", g.Lo80, g.Hi80),
			fmt.Sprintf("[%.3f, %.3f]", g.Lo95, g.Hi95),
			formatObserved(g.Observed),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Group", "Mean", "80% interval", "95% interval", "Observed"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePlots embeds the generated plot images.
func (w *MarkdownWriter) writePlots(md *markdown.Markdown) {
	if len(w.plotFiles) == 0 {
		return
	}

	md.H2("Figures")
	md.PlainText("")
	for _, f := range w.plotFiles {
		md.PlainTextf("![%s](%s)", f, f)
		md.PlainText("")
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crimlab/coforest/internal/config"
	"github.com/crimlab/coforest/internal/database"
	"github.com/crimlab/coforest/internal/report"
)

// NewRunsCmd creates the runs command.
// This command inspects the archived analysis runs stored in the database.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [run-id ...]",
		Short: "List, show, and compare archived analysis runs",
		Long: `Runs inspects the archive of completed model fits.

Without arguments it lists all archived runs. With one run ID it shows
the full posterior summary of that run; a model name shows the latest
run of that model. With --compare and two run IDs it prints the
posterior mean delta of every group the two runs share.

Examples:
  # List all archived runs
  coforest runs

  # Show a run's posterior summary
  coforest runs 6b1e9c7a-...

  # Show the latest run of a model
  coforest runs author_type

  # Compare two runs group by group
  coforest runs --compare 6b1e9c7a-... 41d2f0b3-...

  # Show a run as JSON
  coforest runs --json author_type`,
		Args: cobra.MaximumNArgs(2),
		RunE: runRunsCmd,
	}

	cmd.Flags().BoolP("compare", "C", false,
		"Compare two runs (requires exactly two run IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output run summary in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output run summary in Markdown format")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, args []string) error {
	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}

	// The archive must already exist; listing runs should never create an
	// empty database as a side effect.
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no run archive found (run 'coforest fit' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch {
	case compare:
		if len(args) != 2 {
			return errors.New("--compare requires exactly two run IDs")
		}
		return compareRuns(ctx, db, args[0], args[1])
	case len(args) == 1:
		return showRun(ctx, cmd, db, args[0])
	case len(args) == 0:
		return listRuns(ctx, db)
	default:
		return errors.New("two run IDs are only valid with --compare")
	}
}

// listRuns prints the archived run metadata as a table, newest first.
func listRuns(ctx context.Context, db *database.RunDB) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tCREATED\tMODEL\tSTATUS\tWORST R-HAT\tMIN ESS\tDATA")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3f\t%.0f\t%s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.ModelName,
			r.Status,
			r.WorstRHat,
			r.MinESS,
			r.DataFile,
		)
	}
	return w.Flush()
}

// showRun prints one archived run. The argument is a run ID, or a model
// name whose latest run is shown.
func showRun(ctx context.Context, cmd *cobra.Command, db *database.RunDB, ref string) error {
	run, err := db.GetRun(ctx, ref)
	if errors.Is(err, database.ErrRunNotFound) {
		run, err = db.GetLatestRun(ctx, ref)
	}
	if err != nil {
		return err
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	var w report.Writer
	switch {
	case jsonOut:
		w = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	case markdownOut:
		w = report.NewMarkdownWriter(os.Stdout)
	default:
		w = report.NewSimpleWriter(os.Stdout, report.WithVerbose(true))
	}

	_, err = w.Write(run)
	return err
}

// compareRuns prints the posterior mean delta of every group the two runs
// share, base first.
func compareRuns(ctx context.Context, db *database.RunDB, baseID, otherID string) error {
	base, err := db.GetRun(ctx, baseID)
	if err != nil {
		return err
	}
	other, err := db.GetRun(ctx, otherID)
	if err != nil {
		return err
	}

	fmt.Printf("Comparing runs:\n")
	fmt.Printf("  A: %s  (%s, %s)\n", base.RunID, base.ModelName, base.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("  B: %s  (%s, %s)\n\n", other.RunID, other.ModelName, other.CreatedAt.Format("2006-01-02 15:04"))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tMEAN A\tMEAN B\tDELTA\t95% A\t95% B")

	var shared int
	for _, g := range base.Groups {
		o := other.GroupByLabel(g.Label)
		if o == nil {
			continue
		}
		shared++
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%+.3f\t[%.3f, %.3f]\t[%.3f, %.3f]\n",
			g.Label, g.Mean, o.Mean, o.Mean-g.Mean,
			g.Lo95, g.Hi95, o.Lo95, o.Hi95)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if shared == 0 {
		fmt.Println("The runs share no groups; nothing to compare.")
		return nil
	}

	fmt.Printf("\n%d shared group(s); %d only in A, %d only in B.\n",
		shared, len(base.Groups)-shared, len(other.Groups)-shared)

	if delta := math.Abs(other.WorstRHat - base.WorstRHat); delta > 0 {
		fmt.Printf("Worst R-hat: %.3f (A) vs %.3f (B).\n", base.WorstRHat, other.WorstRHat)
	}
	return nil
}

// Package main provides the entry point for the coforest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for coforest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coforest",
		Short: "Bayesian meta-analysis of co-offending proportions",
		Long: `coforest fits hierarchical logistic-binomial models to per-study
co-offending counts and renders forest plots of the partially pooled
proportion estimates.

The analysis is driven by a spreadsheet of study counts and an optional
.coforest.yaml file describing model variants, priors, and exclusions.
Every completed fit is archived so runs can be listed and compared later.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewFitCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

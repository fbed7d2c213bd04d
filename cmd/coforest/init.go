package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crimlab/coforest/internal/config"
)

//go:embed templates/coforest.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new coforest analysis file",
		Long: `Init creates a new .coforest.yaml analysis file in the current directory.

The generated file includes:
- The four model variants of the published analysis
- Commented examples for exclusions and sampler controls
- Documentation for all available options

Examples:
  # Create .coforest.yaml in current directory
  coforest init

  # Create the analysis file at a specific path
  coforest init -o myanalysis.yaml

  # Force overwrite existing file
  coforest init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the analysis file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing analysis file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("analysis file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/coforest.yaml")
	if err != nil {
		return fmt.Errorf("failed to read analysis template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write analysis file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write analysis file: %w", err)
	}

	fmt.Printf("Created analysis file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure the analysis, such as:")
	fmt.Println("  - Which model variants to fit and their grouping terms")
	fmt.Println("  - Prior regimes and sampler controls")
	fmt.Println("  - DOIs and categories to exclude before preparation")

	return nil
}

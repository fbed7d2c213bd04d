package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Sampler defaults mirror the common defaults of MCMC regression interfaces
// (four chains, 2000 iterations of which half are warmup, 0.8 target
// acceptance) so that results are comparable with the original analysis.
const (
	// DefaultSheet is the spreadsheet sheet name holding the study counts.
	DefaultSheet = "Data"

	// DefaultChains is the number of independent MCMC chains. Four chains
	// are the minimum for a meaningful split R-hat.
	DefaultChains = 4

	// DefaultIterations is the number of post-warmup draws per chain.
	DefaultIterations = 2000

	// DefaultWarmup is the number of adaptation iterations discarded per
	// chain before draws are collected.
	DefaultWarmup = 1000

	// DefaultTargetAccept is the acceptance rate the proposal adaptation
	// aims for during warmup.
	DefaultTargetAccept = 0.8

	// DefaultMaxTreeDepth is accepted for compatibility with trajectory
	// samplers. The current random-walk kernel does not use it; a note is
	// logged when it is set to a non-default value.
	DefaultMaxTreeDepth = 10

	// DefaultSeed is the base random seed. Per-chain seeds are derived
	// from it with a fixed large stride so runs are reproducible while
	// chains never share a stream.
	DefaultSeed uint64 = 8675309

	// DefaultWorkers is the number of model variants fitted concurrently.
	DefaultWorkers = 2

	// DefaultPlotDir is the directory where plot images are written.
	DefaultPlotDir = "plots"

	// AppName is the application name used for XDG directory paths.
	AppName = "coforest"
)

// Config holds all configuration options for coforest.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity; the number of options is manageable. Sampler controls
// here are the CLI-level defaults, overridable per model in the analysis
// file.
type Config struct {
	// DataFile is the spreadsheet (xlsx) or CSV file of study counts.
	DataFile string

	// Sheet is the named sheet to read from an xlsx file.
	Sheet string

	// ConfigFilePath is the path to the analysis file. If empty, the tool
	// searches for .coforest.yaml in the current and home directories.
	ConfigFilePath string

	// Analysis holds the model variants and exclusions loaded from the
	// analysis file, or the built-in defaults when no file exists.
	Analysis *File

	// Models optionally restricts fitting to the named variants.
	Models []string

	// Chains, Iterations, Warmup, Seed, TargetAccept, and MaxTreeDepth are
	// the sampler controls applied to models that do not override them.
	Chains       int
	Iterations   int
	Warmup       int
	Seed         uint64
	TargetAccept float64
	MaxTreeDepth int

	// Workers is the number of model variants fitted concurrently.
	// Chain-level parallelism inside one fit is handled by the sampler.
	Workers int

	// PlotDir is the directory where plot images are written.
	PlotDir string

	// Traces enables writing per-parameter trace plots for manual
	// convergence inspection.
	Traces bool

	// JSONReport enables JSON report output instead of human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, the
	// report is written to this file instead of stdout.
	ReportFile string

	// SaveToDB indicates whether to archive run summaries to the database.
	SaveToDB bool

	// DBDir is the directory for the SQLite run archive. Defaults to the
	// XDG data directory.
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults; users override specific
// values after creation.
func NewConfig() *Config {
	return &Config{
		Sheet:        DefaultSheet,
		Chains:       DefaultChains,
		Iterations:   DefaultIterations,
		Warmup:       DefaultWarmup,
		Seed:         DefaultSeed,
		TargetAccept: DefaultTargetAccept,
		MaxTreeDepth: DefaultMaxTreeDepth,
		Workers:      DefaultWorkers,
		PlotDir:      DefaultPlotDir,
	}
}

// XDGDataDir returns the XDG data directory for coforest.
// On Linux: ~/.local/share/coforest
// On macOS: ~/Library/Application Support/coforest
// On Windows: %LOCALAPPDATA%\coforest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for coforest.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found; fixing one error often makes later
// ones irrelevant.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return ErrNoDataFile
	}
	if c.Chains <= 0 {
		return ErrInvalidChains
	}
	if c.Iterations <= 0 {
		return ErrInvalidIterations
	}
	if c.Warmup < 0 {
		return ErrInvalidWarmup
	}
	if c.TargetAccept <= 0 || c.TargetAccept >= 1 {
		return ErrInvalidTargetAccept
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

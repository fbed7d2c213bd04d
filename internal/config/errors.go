package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoDataFile is returned when no input spreadsheet is specified.
	ErrNoDataFile = errors.New("no data file specified: provide a spreadsheet (.xlsx) or CSV file")

	// ErrInvalidChains is returned when the chain count is not positive.
	ErrInvalidChains = errors.New("invalid chain count: must be positive")

	// ErrInvalidIterations is returned when the post-warmup iteration count
	// is not positive. Zero iterations would leave no posterior draws.
	ErrInvalidIterations = errors.New("invalid iteration count: must be positive")

	// ErrInvalidWarmup is returned when the warmup count is negative.
	// Use 0 to disable adaptation entirely.
	ErrInvalidWarmup = errors.New("invalid warmup count: must be non-negative")

	// ErrInvalidTargetAccept is returned when the target acceptance rate is
	// outside (0, 1).
	ErrInvalidTargetAccept = errors.New("invalid target acceptance: must be strictly between 0 and 1")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)

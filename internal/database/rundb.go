package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/crimlab/coforest/internal/model"
)

// ErrRunNotFound is returned when a requested run is not in the archive.
var ErrRunNotFound = errors.New("run not found")

// dbFileName is the archive file name inside the database directory.
const dbFileName = "coforest.db"

// RunDB provides SQLite-based storage for archived analysis runs.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single archive file for all models rather
// than one file per model. This keeps run comparison a plain SQL query
// and simplifies backup/restore operations.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY without a retry loop.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// Path returns the location of the archive file.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store one record per completed model fit
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		model_name TEXT NOT NULL,
		data_file TEXT NOT NULL,
		chains INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		warmup INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		status INTEGER NOT NULL,
		worst_rhat REAL NOT NULL,
		min_ess REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model_name);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

	-- Group summaries store the posterior estimates of each run
	CREATE TABLE IF NOT EXISTS group_summaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		factor TEXT NOT NULL,
		label TEXT NOT NULL,
		mean REAL NOT NULL,
		lo95 REAL NOT NULL,
		hi95 REAL NOT NULL,
		lo80 REAL NOT NULL,
		hi80 REAL NOT NULL,
		observed REAL,
		ess REAL NOT NULL,
		rhat REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_groups_run ON group_summaries(run_id);
	CREATE INDEX IF NOT EXISTS idx_groups_label ON group_summaries(label);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun archives a run summary, assigning it a fresh run ID. The given
// summary's RunID and CreatedAt fields are filled in on success.
func (rdb *RunDB) SaveRun(ctx context.Context, run *model.RunSummary) error {
	runID := uuid.New().String()
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, created_at, model_name, data_file, chains, iterations, warmup, seed, status, worst_rhat, min_ess)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		createdAt.Format(time.RFC3339Nano),
		run.ModelName,
		run.DataFile,
		run.Chains,
		run.Iterations,
		run.Warmup,
		int64(run.Seed),
		int(run.Status),
		run.WorstRHat,
		run.MinESS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, g := range run.Groups {
		// NaN observed proportions become NULL; REAL columns reject NaN.
		var observed sql.NullFloat64
		if !math.IsNaN(g.Observed) {
			observed = sql.NullFloat64{Float64: g.Observed, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO group_summaries (run_id, position, factor, label, mean, lo95, hi95, lo80, hi80, observed, ess, rhat)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			runID, i, g.Factor, g.Label, g.Mean, g.Lo95, g.Hi95, g.Lo80, g.Hi80, observed, g.ESS, g.RHat,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group summary %q: %w", g.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.RunID = runID
	run.CreatedAt = createdAt
	return nil
}

// GetRun retrieves an archived run with its group summaries.
// Returns ErrRunNotFound when no run has the given ID.
func (rdb *RunDB) GetRun(ctx context.Context, runID string) (*model.RunSummary, error) {
	var run model.RunSummary
	var createdAt string
	var status int
	var seed int64

	err := rdb.db.QueryRowContext(ctx, `
	SELECT run_id, created_at, model_name, data_file, chains, iterations, warmup, seed, status, worst_rhat, min_ess
	FROM runs
	WHERE run_id = ?
	`, runID).Scan(
		&run.RunID,
		&createdAt,
		&run.ModelName,
		&run.DataFile,
		&run.Chains,
		&run.Iterations,
		&run.Warmup,
		&seed,
		&status,
		&run.WorstRHat,
		&run.MinESS,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.CreatedAt = parseTimestamp(createdAt)
	run.Seed = uint64(seed)
	run.Status = model.Status(status)

	groups, err := rdb.groupSummaries(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.Groups = groups

	return &run, nil
}

// GetLatestRun retrieves the most recently archived run of a model.
// Returns ErrRunNotFound when the model has no archived runs.
func (rdb *RunDB) GetLatestRun(ctx context.Context, modelName string) (*model.RunSummary, error) {
	var runID string
	err := rdb.db.QueryRowContext(ctx, `
	SELECT run_id FROM runs
	WHERE model_name = ?
	ORDER BY created_at DESC
	LIMIT 1
	`, modelName).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: model %s", ErrRunNotFound, modelName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest run: %w", err)
	}

	return rdb.GetRun(ctx, runID)
}

// RunMetadata contains summary information about an archived run.
// This is used for listing run history without loading the group summaries.
type RunMetadata struct {
	// RunID is the unique identifier of the run.
	RunID string

	// CreatedAt is when the run was archived.
	CreatedAt time.Time

	// ModelName identifies the model variant.
	ModelName string

	// DataFile is the source spreadsheet path.
	DataFile string

	// Status is the convergence assessment of the fit.
	Status model.Status

	// WorstRHat and MinESS summarize the diagnostics behind Status.
	WorstRHat float64
	MinESS    float64
}

// ListRuns returns metadata of all archived runs, newest first.
func (rdb *RunDB) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT run_id, created_at, model_name, data_file, status, worst_rhat, min_ess
	FROM runs
	ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var createdAt string
		var status int

		if err := rows.Scan(&meta.RunID, &createdAt, &meta.ModelName, &meta.DataFile, &status, &meta.WorstRHat, &meta.MinESS); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.CreatedAt = parseTimestamp(createdAt)
		meta.Status = model.Status(status)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// groupSummaries loads the group summaries of one run in display order.
func (rdb *RunDB) groupSummaries(ctx context.Context, runID string) ([]model.GroupSummary, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT factor, label, mean, lo95, hi95, lo80, hi80, observed, ess, rhat
	FROM group_summaries
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group summaries: %w", err)
	}
	defer rows.Close()

	var groups []model.GroupSummary
	for rows.Next() {
		var g model.GroupSummary
		var observed sql.NullFloat64

		err := rows.Scan(&g.Factor, &g.Label, &g.Mean, &g.Lo95, &g.Hi95, &g.Lo80, &g.Hi80, &observed, &g.ESS, &g.RHat)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group summary: %w", err)
		}

		if observed.Valid {
			g.Observed = observed.Float64
		} else {
			g.Observed = math.NaN()
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Format used by SaveRun
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

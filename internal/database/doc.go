// Package database provides SQLite-based storage for the run archive.
//
// This package implements the RunDB, which stores:
//   - Run records: sampler settings, convergence status, and timing
//   - Group summaries: the posterior estimates of each archived run
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the archive is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Group summaries are stored in their own table rather than as a JSON
// blob so runs can be compared with plain SQL.
package database

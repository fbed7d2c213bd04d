// Package report renders run summaries in different output formats.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) so new output formats can be added
// without touching the core data structures. Writers implement the Writer
// interface, allowing them to be composed for multi-format output.
package report

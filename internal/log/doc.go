// Package log provides slog handler utilities for coforest.
//
// The main type is CompactHandler, an slog.Handler wrapper that keeps log
// output readable when attributes carry numeric analysis data: long
// float-slice attributes (posterior draw vectors) are truncated to a short
// preview, and float attributes are rounded to a few significant digits.
package log

package log

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// maxSliceElems is the number of leading elements shown for a float-slice
// attribute before truncation.
const maxSliceElems = 4

// floatFormat controls rounding of float attributes. Four significant
// digits are plenty for log inspection; full precision lives in reports
// and the run archive.
const floatFormat = 'g'

// CompactHandler wraps an slog.Handler to keep numeric attributes compact.
// It intercepts log records and rewrites attribute values before passing
// them to the underlying handler: []float64 values longer than a few
// elements become a "[v1 v2 ... (n values)]" preview, and float64 values
// are rounded.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites can log draw vectors directly without pre-formatting
type CompactHandler struct {
	// handler is the underlying slog handler that receives rewritten records.
	handler slog.Handler
}

// NewCompactHandler creates a new CompactHandler wrapping the given handler.
// If handler is nil, the returned CompactHandler uses slog.Default().Handler().
func NewCompactHandler(handler slog.Handler) *CompactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CompactHandler{handler: handler}
}

// Enabled reports whether the underlying handler handles records at the
// given level.
func (h *CompactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it to the underlying
// handler.
func (h *CompactHandler) Handle(ctx context.Context, record slog.Record) error {
	compact := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		compact.AddAttrs(compactAttr(attr))
		return true
	})
	return h.handler.Handle(ctx, compact)
}

// WithAttrs returns a new CompactHandler whose underlying handler has the
// given (rewritten) attributes.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		rewritten[i] = compactAttr(attr)
	}
	return &CompactHandler{handler: h.handler.WithAttrs(rewritten)}
}

// WithGroup returns a new CompactHandler with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	return &CompactHandler{handler: h.handler.WithGroup(name)}
}

// compactAttr rewrites a single attribute. Group attributes are rewritten
// recursively so nested numeric values stay compact.
func compactAttr(attr slog.Attr) slog.Attr {
	value := attr.Value.Resolve()

	switch value.Kind() {
	case slog.KindFloat64:
		return slog.String(attr.Key, formatFloat(value.Float64()))
	case slog.KindGroup:
		members := value.Group()
		rewritten := make([]any, 0, len(members))
		for _, m := range members {
			rewritten = append(rewritten, compactAttr(m))
		}
		return slog.Group(attr.Key, rewritten...)
	case slog.KindAny:
		if s, ok := value.Any().([]float64); ok {
			return slog.String(attr.Key, formatSlice(s))
		}
	}
	return attr
}

// formatFloat renders a float with limited precision.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, floatFormat, 4, 64)
}

// formatSlice renders a float slice, truncating long ones to a preview.
func formatSlice(s []float64) string {
	if len(s) <= maxSliceElems {
		parts := make([]string, len(s))
		for i, v := range s {
			parts[i] = formatFloat(v)
		}
		return "[" + strings.Join(parts, " ") + "]"
	}

	parts := make([]string, maxSliceElems)
	for i := 0; i < maxSliceElems; i++ {
		parts[i] = formatFloat(s[i])
	}
	return fmt.Sprintf("[%s ... (%d values)]", strings.Join(parts, " "), len(s))
}

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// newTestLogger returns a compact logger writing plain text to buf.
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		// Drop the timestamp so assertions are stable.
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(NewCompactHandler(inner))
}

// TestCompactHandler tests attribute rewriting.
func TestCompactHandler(t *testing.T) {
	t.Parallel()

	t.Run("long float slices are truncated", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newTestLogger(&buf)

		draws := make([]float64, 100)
		for i := range draws {
			draws[i] = float64(i)
		}
		logger.Info("sampled", "draws", draws)

		out := buf.String()
		if !strings.Contains(out, "(100 values)") {
			t.Errorf("expected truncation marker, got %q", out)
		}
		if !strings.Contains(out, "[0 1 2 3 ...") {
			t.Errorf("expected leading elements, got %q", out)
		}
	})

	t.Run("short float slices print in full", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newTestLogger(&buf)

		logger.Info("sampled", "draws", []float64{0.5, 0.25})

		out := buf.String()
		if !strings.Contains(out, "[0.5 0.25]") {
			t.Errorf("expected full slice, got %q", out)
		}
		if strings.Contains(out, "values)") {
			t.Errorf("expected no truncation marker, got %q", out)
		}
	})

	t.Run("floats are rounded", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newTestLogger(&buf)

		logger.Info("diagnostics", "rhat", 1.0123456789)

		out := buf.String()
		if !strings.Contains(out, "rhat=1.012") {
			t.Errorf("expected rounded value, got %q", out)
		}
		if strings.Contains(out, "1.0123456789") {
			t.Errorf("expected full precision suppressed, got %q", out)
		}
	})

	t.Run("groups are rewritten recursively", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newTestLogger(&buf)

		logger.Info("fit", slog.Group("chain", slog.Float64("acceptance", 0.123456789)))

		if !strings.Contains(buf.String(), "chain.acceptance=0.1235") {
			t.Errorf("expected nested value rounded, got %q", buf.String())
		}
	})

	t.Run("non-numeric attributes pass through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newTestLogger(&buf)

		logger.Info("fit", "model", "author_type", "chains", 4)

		out := buf.String()
		if !strings.Contains(out, "model=author_type") || !strings.Contains(out, "chains=4") {
			t.Errorf("expected attributes untouched, got %q", out)
		}
	})

	t.Run("with-attrs carries rewritten values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newTestLogger(&buf).With("scale", 0.123456789)

		logger.Info("adapting")

		if !strings.Contains(buf.String(), "scale=0.1235") {
			t.Errorf("expected pre-set attribute rounded, got %q", buf.String())
		}
	})

	t.Run("enabled delegates to the wrapped handler", func(t *testing.T) {
		t.Parallel()

		inner := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
		h := NewCompactHandler(inner)

		if h.Enabled(context.Background(), slog.LevelDebug) {
			t.Error("expected debug disabled")
		}
		if !h.Enabled(context.Background(), slog.LevelError) {
			t.Error("expected error enabled")
		}
	})
}

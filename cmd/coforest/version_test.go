package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestVersionCmd tests version command output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	cmd.Run(cmd, nil)

	out := buf.String()
	if !strings.Contains(out, "coforest version ") {
		t.Errorf("expected version line, got %q", out)
	}
	if !strings.Contains(out, "commit:") || !strings.Contains(out, "built:") {
		t.Errorf("expected commit and build date lines, got %q", out)
	}
}

// TestGetVersion tests version resolution fallbacks.
func TestGetVersion(t *testing.T) {
	t.Parallel()

	if v := getVersion(); v == "" {
		t.Error("expected a non-empty version string")
	}
	if c := getCommit(); c == "" {
		t.Error("expected a non-empty commit string")
	}
	if d := getDate(); d == "" {
		t.Error("expected a non-empty build date string")
	}
}

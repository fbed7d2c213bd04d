package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runInit executes the init command with the given arguments.
func runInit(t *testing.T, args ...string) error {
	t.Helper()

	cmd := NewInitCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

// TestInitCmd tests analysis file creation.
func TestInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates the analysis file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".coforest.yaml")
		if err := runInit(t, "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected analysis file: %v", err)
		}
		content := string(data)
		for _, want := range []string{"models:", "author_type", "sheet:", "All Youth", "10.2307/1143790"} {
			if !strings.Contains(content, want) {
				t.Errorf("template missing %q", want)
			}
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".coforest.yaml")
		if err := os.WriteFile(path, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		err := runInit(t, "-o", path)
		if err == nil {
			t.Fatal("expected error for existing file")
		}
		if !strings.Contains(err.Error(), "already exists") {
			t.Errorf("unexpected error message: %v", err)
		}
	})

	t.Run("force overwrites an existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".coforest.yaml")
		if err := os.WriteFile(path, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		if err := runInit(t, "-o", path, "-f"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected analysis file: %v", err)
		}
		if string(data) == "existing" {
			t.Error("expected the file to be replaced")
		}
	})

	t.Run("creates nested output directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "configs", "deep", "analysis.yaml")
		if err := runInit(t, "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected analysis file: %v", err)
		}
	})
}

package main

import "testing"

// TestNewRootCmd tests root command construction.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	if cmd.Use != "coforest" {
		t.Errorf("expected use coforest, got %q", cmd.Use)
	}
	if !cmd.SilenceUsage || !cmd.SilenceErrors {
		t.Error("expected usage and errors silenced")
	}

	if flag := cmd.PersistentFlags().Lookup("verbose"); flag == nil {
		t.Error("expected persistent verbose flag")
	}

	wantSubs := []string{"fit", "runs", "init", "version"}
	for _, want := range wantSubs {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q", want)
		}
	}
}

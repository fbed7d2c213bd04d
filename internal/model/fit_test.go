package model

import "testing"

// smallFit builds a fit with two chains of two draws.
func smallFit() *FitResult {
	return &FitResult{
		ModelName: "test",
		Params:    []string{"b_Intercept", "log_sd_author"},
		Chains: []ChainDraws{
			{Chain: 0, Values: [][]float64{{-0.5, 0.1}, {-0.6, 0.2}}},
			{Chain: 1, Values: [][]float64{{-0.4, 0.3}, {-0.7, 0.0}}},
		},
		Diagnostics: []ParamDiagnostic{
			{Name: "b_Intercept", RHat: 1.002, ESS: 850},
			{Name: "log_sd_author", RHat: 1.031, ESS: 320},
		},
	}
}

// TestParamIndex tests parameter lookup.
func TestParamIndex(t *testing.T) {
	t.Parallel()

	fit := smallFit()
	if got := fit.ParamIndex("log_sd_author"); got != 1 {
		t.Errorf("expected index 1, got %d", got)
	}
	if got := fit.ParamIndex("b_Slope"); got != -1 {
		t.Errorf("expected -1 for unknown parameter, got %d", got)
	}
}

// TestPooled tests cross-chain draw pooling.
func TestPooled(t *testing.T) {
	t.Parallel()

	fit := smallFit()

	pooled := fit.Pooled("b_Intercept")
	want := []float64{-0.5, -0.6, -0.4, -0.7}
	if len(pooled) != len(want) {
		t.Fatalf("expected %d draws, got %d", len(want), len(pooled))
	}
	for i, w := range want {
		if pooled[i] != w {
			t.Errorf("draw %d: expected %v, got %v", i, w, pooled[i])
		}
	}

	if fit.Pooled("nope") != nil {
		t.Error("expected nil for unknown parameter")
	}
}

// TestChainSeries tests per-chain series extraction.
func TestChainSeries(t *testing.T) {
	t.Parallel()

	fit := smallFit()

	series := fit.ChainSeries("log_sd_author")
	if len(series) != 2 {
		t.Fatalf("expected 2 chains, got %d", len(series))
	}
	if series[0][0] != 0.1 || series[0][1] != 0.2 {
		t.Errorf("unexpected chain 0 series: %v", series[0])
	}
	if series[1][0] != 0.3 || series[1][1] != 0.0 {
		t.Errorf("unexpected chain 1 series: %v", series[1])
	}

	if fit.ChainSeries("nope") != nil {
		t.Error("expected nil for unknown parameter")
	}
}

// TestDraws tests the total draw count.
func TestDraws(t *testing.T) {
	t.Parallel()

	if got := smallFit().Draws(); got != 4 {
		t.Errorf("expected 4 draws, got %d", got)
	}
}

// TestWorstRHatMinESS tests diagnostic aggregation.
func TestWorstRHatMinESS(t *testing.T) {
	t.Parallel()

	fit := smallFit()
	if got := fit.WorstRHat(); got != 1.031 {
		t.Errorf("expected worst R-hat 1.031, got %v", got)
	}
	if got := fit.MinESS(); got != 320 {
		t.Errorf("expected min ESS 320, got %v", got)
	}

	empty := &FitResult{}
	if got := empty.WorstRHat(); got != 0 {
		t.Errorf("expected 0 without diagnostics, got %v", got)
	}
	if got := empty.MinESS(); got != 0 {
		t.Errorf("expected 0 without diagnostics, got %v", got)
	}
}

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/crimlab/coforest/internal/config"
	"github.com/crimlab/coforest/internal/model"
)

// namedStep records the model name it ran for.
type namedStep struct {
	name string
	err  error
}

func (s *namedStep) Do(_ context.Context, report *model.AnalysisReport) error {
	if s.err != nil {
		return s.err
	}
	report.PerformedSteps = append(report.PerformedSteps, "ran:"+report.ModelName)
	return nil
}

func (s *namedStep) Name() string {
	return s.name
}

// TestProcessBatch tests concurrent multi-variant processing.
func TestProcessBatch(t *testing.T) {
	t.Parallel()

	variants := []config.ModelConfig{
		{Name: "first"},
		{Name: "second"},
		{Name: "third"},
	}

	t.Run("returns reports in variant order", func(t *testing.T) {
		t.Parallel()

		factory := func(cfg config.ModelConfig) *Pipeline {
			p := New(WithLogger(quietLogger()))
			p.AddStep(&namedStep{name: "work"})
			return p
		}

		bp := NewBatchProcessor(factory, WithBatchLogger(quietLogger()), WithConcurrency(2))
		reports, err := bp.ProcessBatch(context.Background(), "studies.xlsx", nil, variants)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(reports) != len(variants) {
			t.Fatalf("expected %d reports, got %d", len(variants), len(reports))
		}
		for i, v := range variants {
			if reports[i].ModelName != v.Name {
				t.Errorf("report %d: expected model %q, got %q", i, v.Name, reports[i].ModelName)
			}
		}
	})

	t.Run("a failing variant does not fail the batch", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		factory := func(cfg config.ModelConfig) *Pipeline {
			p := New(WithLogger(quietLogger()))
			if cfg.Name == "second" {
				p.AddStep(&namedStep{name: "work", err: boom})
			} else {
				p.AddStep(&namedStep{name: "work"})
			}
			return p
		}

		bp := NewBatchProcessor(factory, WithBatchLogger(quietLogger()))
		reports, err := bp.ProcessBatch(context.Background(), "studies.xlsx", nil, variants)
		if err != nil {
			t.Fatalf("expected the batch to continue, got %v", err)
		}

		if !errors.Is(reports[1].Error, boom) {
			t.Errorf("expected the failure recorded in the report, got %v", reports[1].Error)
		}
		if reports[0].Error != nil || reports[2].Error != nil {
			t.Error("expected the other variants to succeed")
		}
	})

	t.Run("cancelled context aborts the batch", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		factory := func(cfg config.ModelConfig) *Pipeline {
			p := New(WithLogger(quietLogger()))
			p.AddStep(&namedStep{name: "work"})
			return p
		}

		bp := NewBatchProcessor(factory, WithBatchLogger(quietLogger()))
		if _, err := bp.ProcessBatch(ctx, "studies.xlsx", nil, variants); err == nil {
			t.Fatal("expected error from cancelled context")
		}
	})

	t.Run("empty variant list yields no reports", func(t *testing.T) {
		t.Parallel()

		factory := func(cfg config.ModelConfig) *Pipeline {
			return New(WithLogger(quietLogger()))
		}

		bp := NewBatchProcessor(factory, WithBatchLogger(quietLogger()))
		reports, err := bp.ProcessBatch(context.Background(), "studies.xlsx", nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != 0 {
			t.Errorf("expected no reports, got %d", len(reports))
		}
	})
}

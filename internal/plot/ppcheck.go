package plot

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/crimlab/coforest/internal/posterior"
)

// ppSims caps the number of replicated datasets simulated per group. The
// predictive band stabilizes well below this, so more draws only cost time.
const ppSims = 500

// PPCheck renders a posterior predictive check: for each group, replicated
// co-offending counts are simulated from the posterior draws at the
// group's actual trial count, and the resulting proportion band is drawn
// against the raw observed proportion. Observed markers falling inside
// their band indicate the model reproduces the data it was fit to.
func PPCheck(path string, groups []posterior.GroupDraws, seed uint64) error {
	if len(groups) == 0 {
		return ErrNoGroups
	}

	src := rand.NewSource(seed)

	p := plot.New()
	p.Title.Text = "Posterior predictive check"
	p.X.Label.Text = "Proportion of co-offending"
	p.Y.Tick.Marker = plot.ConstantTicks(ppTicks(groups))
	p.Y.Min = -0.5
	p.Y.Max = float64(len(groups)) - 0.5
	p.X.Min, p.X.Max = 0, 1

	for i, g := range groups {
		y := rowY(i, len(groups))
		lo, hi, mean := predictiveBand(g, src)

		band, err := plotter.NewLine(plotter.XYs{{X: lo, Y: y}, {X: hi, Y: y}})
		if err != nil {
			return fmt.Errorf("group %q: %w", g.Label, err)
		}
		band.LineStyle.Width = vg.Points(3)
		band.LineStyle.Color = meanColor

		center, err := plotter.NewScatter(plotter.XYs{{X: mean, Y: y}})
		if err != nil {
			return fmt.Errorf("group %q: %w", g.Label, err)
		}
		center.GlyphStyle = draw.GlyphStyle{
			Color:  meanColor,
			Radius: vg.Points(2.5),
			Shape:  draw.CircleGlyph{},
		}

		p.Add(band, center)

		if !math.IsNaN(g.Observed) {
			observed, err := plotter.NewScatter(plotter.XYs{{X: g.Observed, Y: y}})
			if err != nil {
				return fmt.Errorf("group %q: %w", g.Label, err)
			}
			observed.GlyphStyle = draw.GlyphStyle{
				Color:  observedColor,
				Radius: vg.Points(3),
				Shape:  draw.CrossGlyph{},
			}
			p.Add(observed)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}

	height := vg.Points(float64(len(groups))*rowHeight + baseHeight)
	if err := p.Save(defaultWidth, height, path); err != nil {
		return fmt.Errorf("save predictive check: %w", err)
	}
	return nil
}

// predictiveBand simulates replicated proportions for one group and
// returns their central 95% band and mean. Each replication pairs one
// posterior draw of the group probability with a binomial count at the
// group's trial total, so the band carries both parameter and sampling
// uncertainty.
func predictiveBand(g posterior.GroupDraws, src rand.Source) (lo, hi, mean float64) {
	if g.Trials == 0 || len(g.Probs) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}

	sims := ppSims
	if len(g.Probs) < sims {
		sims = len(g.Probs)
	}
	stride := len(g.Probs) / sims

	props := make([]float64, 0, sims)
	for i := 0; i < sims; i++ {
		bin := distuv.Binomial{
			N:   float64(g.Trials),
			P:   g.Probs[i*stride],
			Src: src,
		}
		props = append(props, bin.Rand()/float64(g.Trials))
	}
	sort.Float64s(props)

	lo = stat.Quantile(0.025, stat.Empirical, props, nil)
	hi = stat.Quantile(0.975, stat.Empirical, props, nil)
	mean = stat.Mean(props, nil)
	return lo, hi, mean
}

// ppTicks builds the Y axis ticks for the predictive check rows.
func ppTicks(groups []posterior.GroupDraws) []plot.Tick {
	ticks := make([]plot.Tick, len(groups))
	for i, g := range groups {
		ticks[i] = plot.Tick{Value: rowY(i, len(groups)), Label: g.Label}
	}
	return ticks
}

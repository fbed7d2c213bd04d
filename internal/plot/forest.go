package plot

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/crimlab/coforest/internal/model"
)

// ErrNoGroups is returned when a forest plot is requested without any
// group summaries.
var ErrNoGroups = errors.New("no group summaries to plot")

// Row geometry and styling of the forest plot.
const (
	// rowHeight is the vertical space allotted per group row.
	rowHeight = 26

	// baseHeight covers the title and the X axis.
	baseHeight = 90

	// defaultWidth is the figure width.
	defaultWidth = 7 * vg.Inch
)

// Colors follow the usual forest-plot convention: muted intervals, a
// saturated point estimate, and a contrasting observed marker.
var (
	intervalColor = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	meanColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	observedColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	averageColor  = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	bandColor     = color.RGBA{R: 228, G: 228, B: 228, A: 255}
)

// Forest renders a forest plot of posterior group estimates to a PNG file.
// Rows appear top to bottom in the order given, so the grand-average row
// leads. Each row shows the 95% interval as a thin line, the 80% interval
// as a thick line, the posterior mean as a filled circle, and the raw
// observed proportion as a cross. A shaded band behind the rows spans the
// grand-average 95% interval, with a dashed vertical line at its mean.
type Forest struct {
	title  string
	xLabel string
	width  vg.Length
	labels bool
}

// ForestOption configures a forest plot.
type ForestOption func(*Forest)

// WithForestTitle sets the plot title.
func WithForestTitle(title string) ForestOption {
	return func(f *Forest) {
		f.title = title
	}
}

// WithForestWidth overrides the figure width.
func WithForestWidth(w vg.Length) ForestOption {
	return func(f *Forest) {
		if w > 0 {
			f.width = w
		}
	}
}

// WithoutIntervalLabels suppresses the "mean [lo, hi]" text next to each row.
func WithoutIntervalLabels() ForestOption {
	return func(f *Forest) {
		f.labels = false
	}
}

// NewForest creates a forest plot renderer.
func NewForest(opts ...ForestOption) *Forest {
	f := &Forest{
		xLabel: "Proportion of co-offending",
		width:  defaultWidth,
		labels: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Save renders the forest plot for the given groups and writes it to path.
// The parent directory is created if needed.
func (f *Forest) Save(path string, groups []model.GroupSummary) error {
	if len(groups) == 0 {
		return ErrNoGroups
	}

	p := plot.New()
	p.Title.Text = f.title
	p.X.Label.Text = f.xLabel
	p.Y.Tick.Marker = plot.ConstantTicks(rowTicks(groups))
	p.Y.Min = -0.5
	p.Y.Max = float64(len(groups)) - 0.5
	p.X.Min, p.X.Max = xRange(groups, f.labels)

	if err := f.addReference(p, groups); err != nil {
		return err
	}

	for i, g := range groups {
		y := rowY(i, len(groups))
		if err := f.addRow(p, g, y); err != nil {
			return fmt.Errorf("row %q: %w", g.Label, err)
		}
	}

	if f.labels {
		if err := f.addIntervalLabels(p, groups); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}

	height := vg.Points(float64(len(groups))*rowHeight + baseHeight)
	if err := p.Save(f.width, height, path); err != nil {
		return fmt.Errorf("save forest plot: %w", err)
	}
	return nil
}

// addRow draws the intervals and markers of a single group row.
func (f *Forest) addRow(p *plot.Plot, g model.GroupSummary, y float64) error {
	wide, err := plotter.NewLine(plotter.XYs{{X: g.Lo95, Y: y}, {X: g.Hi95, Y: y}})
	if err != nil {
		return err
	}
	wide.LineStyle.Width = vg.Points(1)
	wide.LineStyle.Color = intervalColor

	narrow, err := plotter.NewLine(plotter.XYs{{X: g.Lo80, Y: y}, {X: g.Hi80, Y: y}})
	if err != nil {
		return err
	}
	narrow.LineStyle.Width = vg.Points(3.5)
	narrow.LineStyle.Color = intervalColor

	mean, err := plotter.NewScatter(plotter.XYs{{X: g.Mean, Y: y}})
	if err != nil {
		return err
	}
	mean.GlyphStyle = draw.GlyphStyle{
		Color:  meanColor,
		Radius: vg.Points(3.5),
		Shape:  draw.CircleGlyph{},
	}

	p.Add(wide, narrow, mean)

	// Groups whose data rows had no offenses carry a NaN observed
	// proportion; they get no marker rather than a point at zero.
	if !math.IsNaN(g.Observed) {
		observed, err := plotter.NewScatter(plotter.XYs{{X: g.Observed, Y: y}})
		if err != nil {
			return err
		}
		observed.GlyphStyle = draw.GlyphStyle{
			Color:  observedColor,
			Radius: vg.Points(3),
			Shape:  draw.CrossGlyph{},
		}
		p.Add(observed)
	}

	return nil
}

// addReference shades the grand-average 95% interval across all rows and
// draws a dashed vertical line at its mean, so each group can be read
// against the pooled estimate and its uncertainty. Called before the rows
// so the band sits behind them.
func (f *Forest) addReference(p *plot.Plot, groups []model.GroupSummary) error {
	avg := groups[0]
	yMin, yMax := -0.5, float64(len(groups))-0.5

	band, err := plotter.NewPolygon(referenceBand(avg, yMin, yMax))
	if err != nil {
		return err
	}
	band.Color = bandColor
	band.LineStyle.Color = bandColor
	band.LineStyle.Width = 0

	line, err := plotter.NewLine(plotter.XYs{
		{X: avg.Mean, Y: yMin},
		{X: avg.Mean, Y: yMax},
	})
	if err != nil {
		return err
	}
	line.LineStyle.Color = averageColor
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(band, line)
	return nil
}

// referenceBand is the rectangle spanning the grand-average 95% interval
// over the full row range.
func referenceBand(avg model.GroupSummary, yMin, yMax float64) plotter.XYs {
	return plotter.XYs{
		{X: avg.Lo95, Y: yMin},
		{X: avg.Hi95, Y: yMin},
		{X: avg.Hi95, Y: yMax},
		{X: avg.Lo95, Y: yMax},
	}
}

// addIntervalLabels writes "mean [lo95, hi95]" to the right of each row.
func (f *Forest) addIntervalLabels(p *plot.Plot, groups []model.GroupSummary) error {
	xys := make(plotter.XYs, len(groups))
	texts := make([]string, len(groups))
	for i, g := range groups {
		xys[i] = plotter.XY{X: g.Hi95 + 0.02, Y: rowY(i, len(groups))}
		texts[i] = fmt.Sprintf("%.2f [%.2f, %.2f]", g.Mean, g.Lo95, g.Hi95)
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return err
	}
	p.Add(labels)
	return nil
}

// rowY maps a display index to a Y coordinate: the first group sits at the
// top of the plot.
func rowY(i, n int) float64 {
	return float64(n - 1 - i)
}

// rowTicks builds the Y axis ticks, one labeled tick per group row.
func rowTicks(groups []model.GroupSummary) []plot.Tick {
	ticks := make([]plot.Tick, len(groups))
	for i, g := range groups {
		ticks[i] = plot.Tick{Value: rowY(i, len(groups)), Label: g.Label}
	}
	return ticks
}

// xRange bounds the X axis: proportions live in [0, 1], but the axis is
// widened when interval labels need room past the widest interval.
func xRange(groups []model.GroupSummary, labels bool) (min, max float64) {
	min, max = 0, 1
	if !labels {
		return min, max
	}

	var widest float64
	for _, g := range groups {
		if g.Hi95 > widest {
			widest = g.Hi95
		}
	}
	// Rough room for the label text to the right of the interval.
	if widest+0.3 > max {
		max = widest + 0.3
	}
	return min, max
}

package plot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/crimlab/coforest/internal/model"
)

// ErrUnknownParam is returned when a trace is requested for a parameter
// the fit does not have.
var ErrUnknownParam = errors.New("unknown parameter")

// TraceParams returns the parameters worth tracing for a fit: the
// intercept and the group scales. Individual group effects are skipped;
// with dozens of levels their traces add files without adding insight.
func TraceParams(fit *model.FitResult) []string {
	params := make([]string, 0, len(fit.Params))
	for _, p := range fit.Params {
		if p == "b_Intercept" || strings.HasPrefix(p, "log_sd_") {
			params = append(params, p)
		}
	}
	return params
}

// Trace renders the per-chain trace of one parameter to a PNG file. Chains
// are overlaid in distinct colors; well-mixed chains are indistinguishable.
func Trace(path string, fit *model.FitResult, param string) error {
	series := fit.ChainSeries(param)
	if series == nil {
		return fmt.Errorf("%w: %s", ErrUnknownParam, param)
	}

	p := plot.New()
	p.Title.Text = param
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Value"

	args := make([]interface{}, 0, 2*len(series))
	for chain, s := range series {
		xys := make(plotter.XYs, len(s))
		for i, v := range s {
			xys[i] = plotter.XY{X: float64(i), Y: v}
		}
		args = append(args, fmt.Sprintf("chain %d", chain), xys)
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return fmt.Errorf("trace %s: %w", param, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	if err := p.Save(6*vg.Inch, 3*vg.Inch, path); err != nil {
		return fmt.Errorf("save trace plot: %w", err)
	}
	return nil
}

// TraceFileName maps a parameter name to a filesystem-safe PNG name.
func TraceFileName(modelName, param string) string {
	r := strings.NewReplacer("[", "_", "]", "", " ", "_", "/", "_")
	return fmt.Sprintf("trace_%s_%s.png", modelName, r.Replace(param))
}

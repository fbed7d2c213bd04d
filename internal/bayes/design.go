package bayes

import (
	"fmt"

	"github.com/crimlab/coforest/internal/model"
)

// factorDesign maps one grouping factor onto a prepared dataset: its
// ordered levels and, per observation, the level index.
type factorDesign struct {
	factor model.Factor
	levels []string
	index  []int
}

// design is the fixed data side of a model fit: observation counts plus
// the level structure of each grouping factor. The parameter vector layout
// is derived from it and shared by the log-posterior, the sampler, and the
// extraction stage:
//
//	[ b_Intercept,
//	  log_sd_<f1>, r_<f1>[L1] ... r_<f1>[Ln],
//	  log_sd_<f2>, r_<f2>[L1] ... ]
type design struct {
	offenses   []float64
	cooffenses []float64
	factors    []factorDesign
}

// buildDesign indexes the dataset's groups against the model's terms.
func buildDesign(ds *model.Dataset, terms []model.Factor) (*design, error) {
	if len(ds.Groups) == 0 {
		return nil, fmt.Errorf("dataset %q has no groups", ds.Name)
	}
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}

	d := &design{
		offenses:   make([]float64, len(ds.Groups)),
		cooffenses: make([]float64, len(ds.Groups)),
	}
	for i, g := range ds.Groups {
		d.offenses[i] = float64(g.Offenses)
		d.cooffenses[i] = float64(g.Cooffenses)
	}

	for _, f := range terms {
		levels := ds.Levels(f)
		position := make(map[string]int, len(levels))
		for i, l := range levels {
			position[l] = i
		}

		index := make([]int, len(ds.Groups))
		for i, g := range ds.Groups {
			index[i] = position[g.Label(f)]
		}

		d.factors = append(d.factors, factorDesign{factor: f, levels: levels, index: index})
	}

	return d, nil
}

// dim returns the length of the parameter vector.
func (d *design) dim() int {
	n := 1 // intercept
	for _, f := range d.factors {
		n += 1 + len(f.levels) // log scale + one effect per level
	}
	return n
}

// paramNames returns the parameter names in vector order. Group effect
// names carry their level label so draws can be re-joined to observed
// proportions downstream.
func (d *design) paramNames() []string {
	names := make([]string, 0, d.dim())
	names = append(names, "b_Intercept")
	for _, f := range d.factors {
		names = append(names, fmt.Sprintf("log_sd_%s", f.factor))
		for _, l := range f.levels {
			names = append(names, fmt.Sprintf("r_%s[%s]", f.factor, l))
		}
	}
	return names
}

// scaleIndex returns the parameter index of factor k's log scale.
func (d *design) scaleIndex(k int) int {
	idx := 1
	for i := 0; i < k; i++ {
		idx += 1 + len(d.factors[i].levels)
	}
	return idx
}

// effectIndex returns the parameter index of factor k's first group effect.
func (d *design) effectIndex(k int) int {
	return d.scaleIndex(k) + 1
}

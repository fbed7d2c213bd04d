package model

import "math"

// Factor identifies a grouping factor used for partial pooling.
type Factor string

// Grouping factors supported by the hierarchical models.
const (
	// FactorAuthor groups observations by study author label.
	FactorAuthor Factor = "author"

	// FactorType groups observations by crime type category.
	FactorType Factor = "type"
)

// Group is one row of a prepared dataset: summed counts for a unique
// (study, author, type) combination.
type Group struct {
	// StudyN is the study number, zero for synthetic aggregate rows.
	StudyN int `json:"study_n,omitempty"`

	// Author is the study citation label.
	Author string `json:"author"`

	// Type is the crime type category.
	Type CrimeType `json:"type"`

	// Offenses is the summed trial count for this group.
	Offenses int `json:"offenses"`

	// Cooffenses is the summed success count for this group.
	Cooffenses int `json:"cooffenses"`
}

// Proportion returns the observed co-offending proportion for the group,
// or NaN when the group has no offenses.
func (g Group) Proportion() float64 {
	if g.Offenses == 0 {
		return math.NaN()
	}
	return float64(g.Cooffenses) / float64(g.Offenses)
}

// Label returns the group's display label for the given factor.
func (g Group) Label(f Factor) string {
	if f == FactorType {
		return string(g.Type)
	}
	return g.Author
}

// Dataset is a prepared table of grouped counts, the unit of data passed
// to model fitting. Groups keep a deterministic order so that parameter
// indices, labels, and plot rows line up across runs.
type Dataset struct {
	// Name identifies the preparation variant ("by_study" or "by_type").
	Name string `json:"name"`

	// Groups are the prepared rows in stable order.
	Groups []Group `json:"groups"`
}

// Levels returns the unique labels of the given factor in first-seen order.
func (d *Dataset) Levels(f Factor) []string {
	seen := make(map[string]bool, len(d.Groups))
	levels := make([]string, 0, len(d.Groups))
	for _, g := range d.Groups {
		label := g.Label(f)
		if !seen[label] {
			seen[label] = true
			levels = append(levels, label)
		}
	}
	return levels
}

// ObservedProportion returns the pooled observed proportion for one level
// of a factor: summed co-offenses over summed offenses across all groups
// carrying that label. Returns NaN when the level has no offenses.
func (d *Dataset) ObservedProportion(f Factor, label string) float64 {
	var offenses, cooffenses int
	for _, g := range d.Groups {
		if g.Label(f) == label {
			offenses += g.Offenses
			cooffenses += g.Cooffenses
		}
	}
	if offenses == 0 {
		return math.NaN()
	}
	return float64(cooffenses) / float64(offenses)
}

// TotalOffenses returns the summed trial count across all groups.
func (d *Dataset) TotalOffenses() int {
	var n int
	for _, g := range d.Groups {
		n += g.Offenses
	}
	return n
}

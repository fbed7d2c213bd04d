package config

// File is the analysis file (.coforest.yaml): the spreadsheet layout,
// record exclusions, and the model variants to fit.
type File struct {
	// Sheet overrides the spreadsheet sheet name.
	Sheet string `yaml:"sheet,omitempty"`

	// Exclude lists records removed before preparation.
	Exclude Exclusions `yaml:"exclude,omitempty"`

	// Defaults supplies sampler controls and priors applied to every model
	// that does not override them.
	Defaults ModelConfig `yaml:"defaults,omitempty"`

	// Models are the variants to fit, in order.
	Models []ModelConfig `yaml:"models,omitempty"`
}

// Record exclusions of the published analysis. DuplicateDOI identifies
// the record that republishes another study's counts under a second
// publication; SentinelCategory is the aggregate category some studies
// report alongside per-type rows. Retaining either would double-count
// offenses.
const (
	DuplicateDOI     = "10.2307/1143790"
	SentinelCategory = "All Youth"
)

// Exclusions identifies study records dropped before preparation.
type Exclusions struct {
	// DOIs are publication identifiers of known duplicate records.
	DOIs []string `yaml:"dois,omitempty"`

	// Categories are sentinel aggregate categories (e.g. "All Youth") that
	// would double-count offenses if retained.
	Categories []string `yaml:"categories,omitempty"`
}

// DefaultExclusions returns the built-in record exclusions: the known
// duplicate record and the sentinel aggregate category.
func DefaultExclusions() Exclusions {
	return Exclusions{
		DOIs:       []string{DuplicateDOI},
		Categories: []string{SentinelCategory},
	}
}

// DefaultFile returns the analysis file applied when no .coforest.yaml
// exists: the built-in exclusions, and (through ResolvedModels) the
// built-in model variants. A file the user writes replaces these
// wholesale, so an explicit empty exclude section really means "exclude
// nothing".
func DefaultFile() *File {
	return &File{Exclude: DefaultExclusions()}
}

// ModelConfig describes one model variant: which prepared dataset it fits,
// which grouping factors get random intercepts, the prior regime, and any
// sampler control overrides. Zero values mean "inherit" (from Defaults,
// then from the CLI-level Config).
type ModelConfig struct {
	// Name identifies the variant in reports, plots, and the run archive.
	Name string `yaml:"name"`

	// Dataset selects the preparation variant: "by_study" or "by_type".
	Dataset string `yaml:"dataset,omitempty"`

	// Terms are the grouping factors receiving random intercepts:
	// "author", "type", or both.
	Terms []string `yaml:"terms,omitempty"`

	// Priors selects the prior regime: "weak" (default) or "diffuse".
	Priors string `yaml:"priors,omitempty"`

	// Sampler control overrides.
	Chains       int     `yaml:"chains,omitempty"`
	Iterations   int     `yaml:"iterations,omitempty"`
	Warmup       int     `yaml:"warmup,omitempty"`
	Seed         uint64  `yaml:"seed,omitempty"`
	TargetAccept float64 `yaml:"target_accept,omitempty"`
	MaxTreeDepth int     `yaml:"max_tree_depth,omitempty"`
}

// merged returns m with zero-valued fields filled from the defaults.
func (m ModelConfig) merged(d ModelConfig) ModelConfig {
	if m.Dataset == "" {
		m.Dataset = d.Dataset
	}
	if len(m.Terms) == 0 {
		m.Terms = d.Terms
	}
	if m.Priors == "" {
		m.Priors = d.Priors
	}
	if m.Chains == 0 {
		m.Chains = d.Chains
	}
	if m.Iterations == 0 {
		m.Iterations = d.Iterations
	}
	if m.Warmup == 0 {
		m.Warmup = d.Warmup
	}
	if m.Seed == 0 {
		m.Seed = d.Seed
	}
	if m.TargetAccept == 0 {
		m.TargetAccept = d.TargetAccept
	}
	if m.MaxTreeDepth == 0 {
		m.MaxTreeDepth = d.MaxTreeDepth
	}
	return m
}

// ResolvedModels returns the model variants with file defaults and then
// CLI-level sampler controls merged in. When the file declares no models,
// the built-in DefaultModels are used.
func (f *File) ResolvedModels(c *Config) []ModelConfig {
	models := f.Models
	if len(models) == 0 {
		models = DefaultModels()
	}

	cli := ModelConfig{
		Dataset:      "by_study",
		Priors:       "weak",
		Chains:       c.Chains,
		Iterations:   c.Iterations,
		Warmup:       c.Warmup,
		Seed:         c.Seed,
		TargetAccept: c.TargetAccept,
		MaxTreeDepth: c.MaxTreeDepth,
	}

	resolved := make([]ModelConfig, 0, len(models))
	for _, m := range models {
		resolved = append(resolved, m.merged(f.Defaults).merged(cli))
	}
	return resolved
}

// DefaultModels returns the four model variants of the published analysis:
// the combined author+type model, a type-only aggregate, the crime-type
// breakdown over the restricted dataset, and the combined model refit
// under effectively non-informative priors as a sensitivity check.
func DefaultModels() []ModelConfig {
	return []ModelConfig{
		{
			Name:    "author_type",
			Dataset: "by_study",
			Terms:   []string{"author", "type"},
			Priors:  "weak",
		},
		{
			Name:    "type_only",
			Dataset: "by_study",
			Terms:   []string{"type"},
			Priors:  "weak",
		},
		{
			Name:    "crime_type",
			Dataset: "by_type",
			Terms:   []string{"type"},
			Priors:  "weak",
		},
		{
			Name:    "author_type_diffuse",
			Dataset: "by_study",
			Terms:   []string{"author", "type"},
			Priors:  "diffuse",
		},
	}
}

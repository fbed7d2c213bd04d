package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crimlab/coforest/internal/model"
)

// Dataset variant names accepted in model configuration.
const (
	// VariantByStudy is the per-study table: one group per unique
	// (study, author, type) combination.
	VariantByStudy = "by_study"

	// VariantByType is the crime-type breakdown: one group per retained
	// type plus an aggregate Total group.
	VariantByType = "by_type"
)

// PrepareOptions control which records are excluded before grouping.
type PrepareOptions struct {
	// ExcludeDOIs removes records whose DOI matches (duplicate studies).
	ExcludeDOIs []string

	// ExcludeCategories removes records whose Type matches a sentinel
	// aggregate category (e.g. "All Youth") that would double-count
	// offenses already present as per-type rows.
	ExcludeCategories []string
}

// Prepare builds the named dataset variant from raw study records.
func Prepare(variant string, records []model.StudyRecord, opts PrepareOptions) (*model.Dataset, error) {
	switch variant {
	case VariantByStudy:
		return ByStudy(records, opts)
	case VariantByType:
		return ByType(records, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, variant)
	}
}

// ByStudy prepares the per-study table: exclusions applied, then grouped
// by (study, author, type) with counts summed. Groups are ordered by study
// number, then author, then type so parameter indices are reproducible.
func ByStudy(records []model.StudyRecord, opts PrepareOptions) (*model.Dataset, error) {
	type key struct {
		studyN int
		author string
		typ    model.CrimeType
	}

	sums := make(map[key]*model.Group)
	order := make([]key, 0, len(records))

	for _, r := range filter(records, opts) {
		k := key{studyN: r.StudyN, author: r.Author, typ: r.Type}
		g, ok := sums[k]
		if !ok {
			g = &model.Group{StudyN: r.StudyN, Author: r.Author, Type: r.Type}
			sums[k] = g
			order = append(order, k)
		}
		g.Offenses += r.Offenses
		g.Cooffenses += r.Cooffenses
	}

	if len(order) == 0 {
		return nil, ErrNoRecords
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.studyN != b.studyN {
			return a.studyN < b.studyN
		}
		if a.author != b.author {
			return a.author < b.author
		}
		return a.typ < b.typ
	})

	groups := make([]model.Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, *sums[k])
	}

	return &model.Dataset{Name: VariantByStudy, Groups: groups}, nil
}

// ByType prepares the crime-type breakdown: only the Violent, Property,
// and Other categories are retained, counts are aggregated per type, and a
// Total pseudo-group summing the three is appended. The "All" combined
// category is excluded here because it overlaps the per-type rows.
func ByType(records []model.StudyRecord, opts PrepareOptions) (*model.Dataset, error) {
	sums := make(map[model.CrimeType]*model.Group, len(model.BreakdownTypes))
	for _, t := range model.BreakdownTypes {
		sums[t] = &model.Group{Author: string(t), Type: t}
	}

	var matched bool
	for _, r := range filter(records, opts) {
		g, ok := sums[r.Type]
		if !ok {
			continue
		}
		matched = true
		g.Offenses += r.Offenses
		g.Cooffenses += r.Cooffenses
	}
	if !matched {
		return nil, ErrNoRecords
	}

	groups := make([]model.Group, 0, len(model.BreakdownTypes)+1)
	total := model.Group{Author: string(model.CrimeTotal), Type: model.CrimeTotal}
	for _, t := range model.BreakdownTypes {
		g := *sums[t]
		groups = append(groups, g)
		total.Offenses += g.Offenses
		total.Cooffenses += g.Cooffenses
	}
	groups = append(groups, total)

	return &model.Dataset{Name: VariantByType, Groups: groups}, nil
}

// filter drops excluded DOIs and sentinel categories.
func filter(records []model.StudyRecord, opts PrepareOptions) []model.StudyRecord {
	kept := make([]model.StudyRecord, 0, len(records))
	for _, r := range records {
		if matchAny(r.DOI, opts.ExcludeDOIs) || matchAny(string(r.Type), opts.ExcludeCategories) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// matchAny reports whether value case-insensitively equals any candidate.
func matchAny(value string, candidates []string) bool {
	for _, c := range candidates {
		if strings.EqualFold(value, c) {
			return true
		}
	}
	return false
}

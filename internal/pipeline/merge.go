package pipeline

import (
	"sort"
	"strings"

	"github.com/srcmeta/srcmeta/internal/extraction"
)

// FastFailThreshold is the confidence a result must clear for the fast-fail
// strategy to adopt it without inspecting later tiers.
const FastFailThreshold = 0.8

// Merge combines backend results under the given strategy. Callers must pass
// only non-error results, in tier priority order; an all-errored collection
// goes through MostDeclarations instead.
//
// Degenerate cases: empty input yields an empty merged result; a single input
// is returned unchanged with no strategy metadata attached.
func Merge(results []*extraction.Result, strategy extraction.Strategy) *extraction.MergedResult {
	switch len(results) {
	case 0:
		return &extraction.MergedResult{
			Result: extraction.Result{
				Declarations: []extraction.Declaration{},
				Imports:      []string{},
				Quality:      extraction.QualityUnknown,
			},
			Strategy: strategy,
		}
	case 1:
		return &extraction.MergedResult{Result: *results[0]}
	}

	switch strategy {
	case extraction.StrategyFeatureUnion:
		return mergeFeatureUnion(results)
	case extraction.StrategyBestOfBreed:
		return mergeBestOfBreed(results)
	case extraction.StrategyFastFail:
		return mergeFastFail(results)
	default:
		return mergeConfidenceWeighted(results)
	}
}

// MostDeclarations returns the result with the greatest declaration count,
// preferring earlier results on ties. It is the degraded answer when every
// collected result carries an error and merging would be meaningless.
func MostDeclarations(results []*extraction.Result) *extraction.Result {
	var best *extraction.Result
	for _, r := range results {
		if best == nil || len(r.Declarations) > len(best.Declarations) {
			best = r
		}
	}
	return best
}

// mergeConfidenceWeighted adopts the highest-confidence result as base and
// appends unseen declarations from the rest in descending confidence order.
func mergeConfidenceWeighted(results []*extraction.Result) *extraction.MergedResult {
	order := make([]*extraction.Result, len(results))
	copy(order, results)
	// Stable keeps tier priority as the tie-break.
	sort.SliceStable(order, func(i, j int) bool {
		return ConfidenceOf(order[i]) > ConfidenceOf(order[j])
	})

	base := order[0].Clone()
	seen := identitySet(base.Declarations)
	for _, r := range order[1:] {
		for _, d := range r.Declarations {
			id := d.Identity()
			if seen[id] {
				continue
			}
			seen[id] = true
			base.Declarations = append(base.Declarations, d)
		}
		base.Imports = append(base.Imports, r.Imports...)
		base.SecurityFindings = append(base.SecurityFindings, r.SecurityFindings...)
	}

	finalizeMerged(base, order)
	return &extraction.MergedResult{Result: *base, Strategy: extraction.StrategyConfidenceWeighted}
}

// mergeFeatureUnion ignores confidence entirely: the result with the most
// declarations is the base, and everything unique from every input is kept.
func mergeFeatureUnion(results []*extraction.Result) *extraction.MergedResult {
	base := MostDeclarations(results).Clone()
	seen := identitySet(base.Declarations)
	for _, r := range results {
		for _, d := range r.Declarations {
			id := d.Identity()
			if seen[id] {
				continue
			}
			seen[id] = true
			base.Declarations = append(base.Declarations, d)
		}
		base.Imports = append(base.Imports, r.Imports...)
		base.SecurityFindings = append(base.SecurityFindings, r.SecurityFindings...)
	}

	finalizeMerged(base, results)
	return &extraction.MergedResult{Result: *base, Strategy: extraction.StrategyFeatureUnion}
}

// mergeBestOfBreed keeps, for each identity signature, the most complete
// declaration across all inputs, ranked by docstring presence, then signature
// presence, then modifier count, then child count.
func mergeBestOfBreed(results []*extraction.Result) *extraction.MergedResult {
	winners := make(map[extraction.Identity]extraction.Declaration)
	var order []extraction.Identity

	for _, r := range results {
		for _, d := range r.Declarations {
			id := d.Identity()
			current, exists := winners[id]
			if !exists {
				winners[id] = d
				order = append(order, id)
				continue
			}
			if moreComplete(d, current) {
				winners[id] = d
			}
		}
	}

	base := results[0].Clone()
	base.Declarations = make([]extraction.Declaration, 0, len(order))
	for _, id := range order {
		base.Declarations = append(base.Declarations, winners[id])
	}
	for _, r := range results[1:] {
		base.Imports = append(base.Imports, r.Imports...)
		base.SecurityFindings = append(base.SecurityFindings, r.SecurityFindings...)
	}

	finalizeMerged(base, results)
	return &extraction.MergedResult{Result: *base, Strategy: extraction.StrategyBestOfBreed}
}

// mergeFastFail returns a single original result, never a composite: the
// first input (in tier priority order) clearing the confidence threshold, or
// failing that, the single highest-confidence input. The two branches are
// deliberately separate code paths; the fallback must not drift into
// confidence-weighted merging.
func mergeFastFail(results []*extraction.Result) *extraction.MergedResult {
	for _, r := range results {
		if ConfidenceOf(r) >= FastFailThreshold {
			return &extraction.MergedResult{Result: *r, Strategy: extraction.StrategyFastFail}
		}
	}

	best := results[0]
	bestScore := ConfidenceOf(best)
	for _, r := range results[1:] {
		if score := ConfidenceOf(r); score > bestScore {
			best = r
			bestScore = score
		}
	}
	return &extraction.MergedResult{Result: *best, Strategy: extraction.StrategyFastFail}
}

// moreComplete reports whether a beats b in the completeness order:
// has-docstring, then has-signature, then modifier count, then child count.
// The first differing criterion dominates.
func moreComplete(a, b extraction.Declaration) bool {
	if (a.Docstring != "") != (b.Docstring != "") {
		return a.Docstring != ""
	}
	if (a.Signature != "") != (b.Signature != "") {
		return a.Signature != ""
	}
	if len(a.Modifiers) != len(b.Modifiers) {
		return len(a.Modifiers) > len(b.Modifiers)
	}
	return len(a.Children) > len(b.Children)
}

// finalizeMerged applies the strategy-independent invariants: imports sorted
// and unique, missed-features intersected across every contributor, security
// findings deduplicated, backend id concatenated from contributors in merge
// order.
func finalizeMerged(base *extraction.Result, contributors []*extraction.Result) {
	base.Imports = extraction.NormalizeImports(base.Imports)
	base.SecurityFindings = Dedupe(base.SecurityFindings)
	base.MissedFeatures = intersectMissed(contributors)
	base.Confidence = nil

	ids := make([]string, 0, len(contributors))
	for _, r := range contributors {
		ids = append(ids, r.Backend)
	}
	base.Backend = strings.Join(ids, "+")
}

// intersectMissed keeps a feature only if every contributing result reports
// missing it: one backend covering a feature means the merged result has it.
func intersectMissed(results []*extraction.Result) []string {
	if len(results) == 0 {
		return []string{}
	}
	counts := make(map[string]int)
	var order []string
	for _, r := range results {
		for _, f := range Dedupe(r.MissedFeatures) {
			if counts[f] == 0 {
				order = append(order, f)
			}
			counts[f]++
		}
	}
	out := []string{}
	for _, f := range order {
		if counts[f] == len(results) {
			out = append(out, f)
		}
	}
	return out
}

// identitySet indexes declarations by identity signature.
func identitySet(decls []extraction.Declaration) map[extraction.Identity]bool {
	set := make(map[extraction.Identity]bool, len(decls))
	for _, d := range decls {
		set[d.Identity()] = true
	}
	return set
}

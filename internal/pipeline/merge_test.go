package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcmeta/srcmeta/internal/extraction"
)

// Test Plan for merging:
// - Degenerate cases: empty input, single input
// - Confidence-weighted: richest result is base, unique declarations appended,
//   imports unioned
// - Feature union: superset property over all inputs
// - Best-of-breed: docstring outranks signature per identity
// - Fast-fail: first result clearing 0.8 wins; fallback picks the single
//   highest-confidence original
// - All-errored fallback returns the result with the most declarations
// - Composite backend id, import normalization, missed-feature intersection

func decl(name string, kind extraction.Kind, start, end int) extraction.Declaration {
	return extraction.Declaration{Name: name, Kind: kind, StartLine: start, EndLine: end}
}

func TestMerge_EmptyInput(t *testing.T) {
	t.Parallel()

	merged := Merge(nil, extraction.StrategyConfidenceWeighted)
	require.NotNil(t, merged)
	assert.Empty(t, merged.Declarations)
	assert.NotNil(t, merged.Declarations)
	assert.NotNil(t, merged.Imports)
}

func TestMerge_SingleInputUnchanged(t *testing.T) {
	t.Parallel()

	r := extraction.Full("goast", []extraction.Declaration{decl("main", extraction.KindFunction, 1, 10)}, []string{"fmt"})
	merged := Merge([]*extraction.Result{r}, extraction.StrategyFeatureUnion)

	assert.Equal(t, *r, merged.Result)
	assert.Empty(t, merged.Strategy, "single result passes through without strategy metadata")
}

func TestMerge_ConfidenceWeighted_Scenario(t *testing.T) {
	t.Parallel()

	// A: full quality, five documented declarations.
	aDecls := make([]extraction.Declaration, 5)
	for i := range aDecls {
		aDecls[i] = decl(fmt.Sprintf("fn%d", i), extraction.KindFunction, i*10+1, i*10+5)
		aDecls[i].Docstring = "documented"
		aDecls[i].Signature = fmt.Sprintf("func fn%d()", i)
	}
	a := extraction.Full("treesitter-python", aDecls, []string{"os"})

	// B: partial quality, one declaration shared with A plus one unique.
	shared := aDecls[0]
	shared.Docstring = ""
	b := extraction.Full("pattern-python", []extraction.Declaration{
		shared,
		decl("extra", extraction.KindFunction, 90, 95),
	}, []string{"sys"})
	b.Quality = extraction.QualityPartial

	merged := Merge([]*extraction.Result{a, b}, extraction.StrategyConfidenceWeighted)

	require.Len(t, merged.Declarations, 6)
	// A is the base, so its version of the shared declaration survives.
	assert.Equal(t, "documented", merged.Declarations[0].Docstring)
	assert.Equal(t, []string{"os", "sys"}, merged.Imports)
	assert.Equal(t, extraction.StrategyConfidenceWeighted, merged.Strategy)
}

func TestMerge_ConfidenceWeighted_TieBreakKeepsPriorityOrder(t *testing.T) {
	t.Parallel()

	conf := 0.5
	first := extraction.Full("one", []extraction.Declaration{decl("a", extraction.KindFunction, 1, 2)}, nil)
	first.Confidence = &conf
	second := extraction.Full("two", []extraction.Declaration{decl("b", extraction.KindFunction, 3, 4)}, nil)
	conf2 := 0.5
	second.Confidence = &conf2

	merged := Merge([]*extraction.Result{first, second}, extraction.StrategyConfidenceWeighted)
	assert.Equal(t, "one+two", merged.Backend)
	assert.Equal(t, "a", merged.Declarations[0].Name)
}

func TestMerge_FeatureUnion_Superset(t *testing.T) {
	t.Parallel()

	r1 := extraction.Full("one", []extraction.Declaration{
		decl("a", extraction.KindFunction, 1, 2),
		decl("b", extraction.KindFunction, 3, 4),
	}, []string{"os"})
	r2 := extraction.Full("two", []extraction.Declaration{
		decl("b", extraction.KindFunction, 3, 4),
		decl("c", extraction.KindClass, 5, 9),
		decl("d", extraction.KindConstant, 11, 11),
	}, []string{"os", "json"})

	merged := Merge([]*extraction.Result{r1, r2}, extraction.StrategyFeatureUnion)

	// max(|D_i|) <= |merged| <= sum(|D_i|)
	assert.GreaterOrEqual(t, len(merged.Declarations), 3)
	assert.LessOrEqual(t, len(merged.Declarations), 5)
	assert.Len(t, merged.Declarations, 4)

	names := make(map[string]bool)
	for _, d := range merged.Declarations {
		names[d.Name] = true
	}
	for _, want := range []string{"a", "b", "c", "d"} {
		assert.True(t, names[want], "missing declaration %s", want)
	}
	assert.Equal(t, []string{"json", "os"}, merged.Imports)
}

func TestMerge_BestOfBreed_DocstringOutranksSignature(t *testing.T) {
	t.Parallel()

	withSig := decl("foo", extraction.KindFunction, 10, 20)
	withSig.Signature = "def foo()"
	r1 := extraction.Full("one", []extraction.Declaration{withSig}, nil)

	withDoc := decl("foo", extraction.KindFunction, 10, 20)
	withDoc.Docstring = "does foo things"
	r2 := extraction.Full("two", []extraction.Declaration{withDoc}, nil)

	merged := Merge([]*extraction.Result{r1, r2}, extraction.StrategyBestOfBreed)

	require.Len(t, merged.Declarations, 1)
	assert.Equal(t, "does foo things", merged.Declarations[0].Docstring)
	assert.Empty(t, merged.Declarations[0].Signature)
}

func TestMerge_BestOfBreed_CompletenessOrder(t *testing.T) {
	t.Parallel()

	// Both have docstrings; modifier count decides after the signature tie.
	a := decl("bar", extraction.KindMethod, 5, 8)
	a.Docstring = "doc"
	a.Signature = "sig"
	a.Modifiers = []string{"public"}

	b := a
	b.Modifiers = []string{"public", "static"}

	merged := Merge([]*extraction.Result{
		extraction.Full("one", []extraction.Declaration{a}, nil),
		extraction.Full("two", []extraction.Declaration{b}, nil),
	}, extraction.StrategyBestOfBreed)

	require.Len(t, merged.Declarations, 1)
	assert.Len(t, merged.Declarations[0].Modifiers, 2)
}

func TestMerge_FastFail_ThresholdScenario(t *testing.T) {
	t.Parallel()

	scores := []float64{0.55, 0.92, 0.70}
	results := make([]*extraction.Result, len(scores))
	for i, s := range scores {
		s := s
		results[i] = extraction.Full(fmt.Sprintf("backend%d", i), []extraction.Declaration{
			decl(fmt.Sprintf("d%d", i), extraction.KindFunction, 1, 2),
		}, nil)
		results[i].Confidence = &s
	}

	merged := Merge(results, extraction.StrategyFastFail)

	assert.Equal(t, "backend1", merged.Backend)
	assert.Equal(t, extraction.StrategyFastFail, merged.Strategy)
	// Fast-fail returns an original, never a composite.
	assert.False(t, strings.Contains(merged.Backend, "+"))
	assert.Len(t, merged.Declarations, 1)
}

func TestMerge_FastFail_FallbackPicksHighest(t *testing.T) {
	t.Parallel()

	scores := []float64{0.55, 0.40, 0.70}
	results := make([]*extraction.Result, len(scores))
	for i, s := range scores {
		s := s
		results[i] = extraction.Full(fmt.Sprintf("backend%d", i), nil, nil)
		results[i].Confidence = &s
	}

	merged := Merge(results, extraction.StrategyFastFail)
	assert.Equal(t, "backend2", merged.Backend)
}

func TestMostDeclarations_AllErrored(t *testing.T) {
	t.Parallel()

	small := extraction.Failed("one", "timeout")
	medium := extraction.Failed("two", "timeout")
	medium.Declarations = []extraction.Declaration{decl("a", extraction.KindFunction, 1, 2)}
	large := extraction.Failed("three", "timeout")
	large.Declarations = []extraction.Declaration{
		decl("a", extraction.KindFunction, 1, 2),
		decl("b", extraction.KindFunction, 3, 4),
	}

	best := MostDeclarations([]*extraction.Result{small, large, medium})
	assert.Equal(t, "three", best.Backend)
	assert.Equal(t, extraction.QualityFailed, best.Quality)
}

func TestMerge_MissedFeaturesIntersected(t *testing.T) {
	t.Parallel()

	r1 := extraction.Full("one", []extraction.Declaration{decl("a", extraction.KindFunction, 1, 2)}, nil)
	r1.MissedFeatures = []string{"nested_declarations", "block_extents"}
	r2 := extraction.Full("two", []extraction.Declaration{decl("b", extraction.KindFunction, 3, 4)}, nil)
	r2.MissedFeatures = []string{"block_extents", "imports"}

	merged := Merge([]*extraction.Result{r1, r2}, extraction.StrategyFeatureUnion)

	// Only block_extents is missed by every contributor.
	assert.Equal(t, []string{"block_extents"}, merged.MissedFeatures)
}

func TestMerge_ConfidenceFieldCleared(t *testing.T) {
	t.Parallel()

	c1, c2 := 0.9, 0.6
	r1 := extraction.Full("one", []extraction.Declaration{decl("a", extraction.KindFunction, 1, 2)}, nil)
	r1.Confidence = &c1
	r2 := extraction.Full("two", []extraction.Declaration{decl("b", extraction.KindFunction, 3, 4)}, nil)
	r2.Confidence = &c2

	merged := Merge([]*extraction.Result{r1, r2}, extraction.StrategyConfidenceWeighted)
	assert.Nil(t, merged.Confidence, "merged results carry no single backend confidence")
}

func TestMerge_InputsNotMutated(t *testing.T) {
	t.Parallel()

	r1 := extraction.Full("one", []extraction.Declaration{decl("a", extraction.KindFunction, 1, 2)}, []string{"os"})
	r2 := extraction.Full("two", []extraction.Declaration{decl("b", extraction.KindFunction, 3, 4)}, []string{"sys"})

	Merge([]*extraction.Result{r1, r2}, extraction.StrategyConfidenceWeighted)

	assert.Len(t, r1.Declarations, 1)
	assert.Equal(t, []string{"os"}, r1.Imports)
	assert.Equal(t, "one", r1.Backend)
	assert.Len(t, r2.Declarations, 1)
}

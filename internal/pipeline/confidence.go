package pipeline

import (
	"math"

	"github.com/srcmeta/srcmeta/internal/extraction"
)

// ErroredConfidence is the fixed score for any result carrying an error,
// regardless of what else it contains.
const ErroredConfidence = 0.3

// Scoring constants. Declaration count contributes sub-linearly so a backend
// cannot buy confidence by flooding the result with noise.
const (
	declWeight       = 0.05
	declCap          = 0.25
	completenessCap  = 0.15
	importWeight     = 0.01
	importCap        = 0.05
	missedWeight     = 0.05
	missedPenaltyCap = 0.15
)

// qualityBase is the per-quality starting score.
var qualityBase = map[extraction.Quality]float64{
	extraction.QualityFull:    0.5,
	extraction.QualityPartial: 0.35,
	extraction.QualityBasic:   0.25,
	extraction.QualityUnknown: 0.1,
}

// CalculateConfidence scores one extraction result in [0, 1]. It is pure and
// deterministic: repeated calls on an unchanged result yield the same float.
func CalculateConfidence(r *extraction.Result) float64 {
	if r.Error != "" {
		return ErroredConfidence
	}

	score, ok := qualityBase[r.Quality]
	if !ok {
		score = qualityBase[extraction.QualityUnknown]
	}

	score += math.Min(declCap, math.Sqrt(float64(len(r.Declarations)))*declWeight)
	score += completenessRatio(r.Declarations) * completenessCap
	score += math.Min(importCap, float64(len(r.Imports))*importWeight)
	score -= math.Min(missedPenaltyCap, float64(len(r.MissedFeatures))*missedWeight)

	return math.Max(0, math.Min(1, score))
}

// ConfidenceOf returns the backend-reported confidence when present,
// otherwise the lazy estimate.
func ConfidenceOf(r *extraction.Result) float64 {
	if r.Confidence != nil {
		return *r.Confidence
	}
	return CalculateConfidence(r)
}

// completenessRatio is the fraction of declarations carrying a docstring,
// signature, or modifier.
func completenessRatio(decls []extraction.Declaration) float64 {
	if len(decls) == 0 {
		return 0
	}
	complete := 0
	for _, d := range decls {
		if d.Docstring != "" || d.Signature != "" || len(d.Modifiers) > 0 {
			complete++
		}
	}
	return float64(complete) / float64(len(decls))
}

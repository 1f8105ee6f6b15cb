package extraction

import (
	"sort"
	"strings"
)

// Kind classifies a declaration. The vocabulary is closed: backends map their
// language-specific node types onto these values.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindTrait     Kind = "trait"
	KindType      Kind = "type"
	KindConstant  Kind = "constant"
	KindVariable  Kind = "variable"
	KindProperty  Kind = "property"
	KindModule    Kind = "module"
)

// Quality grades how much of a file a backend managed to extract.
type Quality string

const (
	QualityFull    Quality = "full"
	QualityPartial Quality = "partial"
	QualityBasic   Quality = "basic"
	QualityFailed  Quality = "failed"
	QualityUnknown Quality = "unknown"
)

// Declaration is a structural code entity extracted from a source file.
// Invariant: StartLine <= EndLine.
type Declaration struct {
	Name      string        `json:"name"`
	Kind      Kind          `json:"kind"`
	StartLine int           `json:"start_line"`
	EndLine   int           `json:"end_line"`
	Docstring string        `json:"docstring,omitempty"`
	Signature string        `json:"signature,omitempty"`
	Modifiers []string      `json:"modifiers,omitempty"`
	Children  []Declaration `json:"children,omitempty"`
}

// Identity is the tuple that defines "the same declaration" across backends,
// regardless of which backend produced it or how rich its metadata is.
type Identity struct {
	Kind      Kind
	Name      string
	StartLine int
	EndLine   int
}

// Identity returns the declaration's identity signature.
func (d Declaration) Identity() Identity {
	return Identity{Kind: d.Kind, Name: d.Name, StartLine: d.StartLine, EndLine: d.EndLine}
}

// Result is the output of one backend attempt on one file.
type Result struct {
	Declarations []Declaration `json:"declarations"`
	Imports      []string      `json:"imports"`
	Error        string        `json:"error,omitempty"`
	Quality      Quality       `json:"quality"`
	Backend      string        `json:"backend"`
	Tier         string        `json:"tier,omitempty"`
	// Confidence is backend-reported when non-nil. When nil the pipeline
	// estimates it lazily and the estimate is never written back here.
	Confidence       *float64 `json:"confidence,omitempty"`
	MissedFeatures   []string `json:"missed_features,omitempty"`
	SecurityFindings []string `json:"security_findings,omitempty"`
	// Preflight marks results produced by input validation failures so they
	// are never confused with in-backend parse errors.
	Preflight bool `json:"preflight,omitempty"`
}

// Strategy selects the algorithm used to combine multiple backend results.
type Strategy string

const (
	StrategyConfidenceWeighted Strategy = "confidence_weighted"
	StrategyFeatureUnion       Strategy = "feature_union"
	StrategyBestOfBreed        Strategy = "best_of_breed"
	StrategyFastFail           Strategy = "fast_fail"
)

// ValidStrategy reports whether s names one of the four merge strategies.
func ValidStrategy(s Strategy) bool {
	switch s {
	case StrategyConfidenceWeighted, StrategyFeatureUnion, StrategyBestOfBreed, StrategyFastFail:
		return true
	}
	return false
}

// MergedResult is a Result tagged with the strategy that produced it. When a
// single backend result passes through unmerged, Strategy is empty and the
// result is otherwise untouched.
type MergedResult struct {
	Result
	Strategy Strategy `json:"strategy,omitempty"`
}

// Full builds a full-success result: every feature the backend understands was
// extracted without error.
func Full(backend string, decls []Declaration, imports []string) *Result {
	return &Result{
		Declarations: nonNilDecls(decls),
		Imports:      nonNilStrings(imports),
		Quality:      QualityFull,
		Backend:      backend,
	}
}

// Partial builds a partial-success result: extraction hit an error but some
// declarations or imports were salvaged.
func Partial(backend, errMsg string, decls []Declaration, imports, missed []string) *Result {
	return &Result{
		Declarations:   nonNilDecls(decls),
		Imports:        nonNilStrings(imports),
		Error:          errMsg,
		Quality:        QualityPartial,
		Backend:        backend,
		MissedFeatures: nonNilStrings(missed),
	}
}

// Failed builds a hard-failure result with empty declaration and import lists.
func Failed(backend, errMsg string) *Result {
	return &Result{
		Declarations: []Declaration{},
		Imports:      []string{},
		Error:        errMsg,
		Quality:      QualityFailed,
		Backend:      backend,
	}
}

// PreflightRejected builds the result shape for input rejected before any
// backend ran (oversized content, over-long line, suspect language tag).
func PreflightRejected(reason string) *Result {
	r := Failed("preflight", reason)
	r.Preflight = true
	return r
}

// Clone returns a deep copy. Merge strategies mutate their base result, so the
// base must never alias an input's slices.
func (r *Result) Clone() *Result {
	out := *r
	out.Declarations = append([]Declaration(nil), r.Declarations...)
	out.Imports = append([]string(nil), r.Imports...)
	out.MissedFeatures = append([]string(nil), r.MissedFeatures...)
	out.SecurityFindings = append([]string(nil), r.SecurityFindings...)
	if r.Confidence != nil {
		c := *r.Confidence
		out.Confidence = &c
	}
	return &out
}

// NormalizeImports trims, deduplicates, and sorts an import list.
// Import identity is trimmed string equality; the final list is always sorted
// and unique regardless of merge strategy.
func NormalizeImports(imports []string) []string {
	seen := make(map[string]bool, len(imports))
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		imp = strings.TrimSpace(imp)
		if imp == "" || seen[imp] {
			continue
		}
		seen[imp] = true
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

func nonNilDecls(d []Declaration) []Declaration {
	if d == nil {
		return []Declaration{}
	}
	return d
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

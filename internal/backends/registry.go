package backends

import (
	"regexp"

	"github.com/srcmeta/srcmeta/internal/cache"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// resolveKey identifies one (language, tier) pair in the resolution cache.
type resolveKey struct {
	language lang.Language
	tier     Tier
}

// Resolver maps (language, tier) pairs to backend instances through a closed,
// compile-time factory table. There is no dynamic lookup: an unknown or
// malformed language tag resolves to nothing rather than to an error.
type Resolver struct {
	factories map[lang.Language]map[Tier]func() Backend
	resolved  *cache.Bounded[resolveKey, Backend]
}

// NewResolver builds a resolver over the full registry. The pattern cache is
// shared by all regex-based backends; the resolution cache keeps constructed
// backend instances so grammars load once per process.
func NewResolver(patterns *cache.Bounded[string, *regexp.Regexp]) (*Resolver, error) {
	resolved, err := cache.NewBounded[resolveKey, Backend](64)
	if err != nil {
		return nil, err
	}
	r := &Resolver{
		factories: make(map[lang.Language]map[Tier]func() Backend),
		resolved:  resolved,
	}
	for _, l := range lang.All() {
		l := l
		tiers := map[Tier]func() Backend{
			TierEnhancedPattern: func() Backend { return newPatternBackend(l, patterns) },
			TierStandardPattern: func() Backend { return newBasicBackend(l) },
		}
		if structural, ok := structuralFactories[l]; ok {
			tiers[TierStructural] = structural
		}
		r.factories[l] = tiers
	}
	return r, nil
}

// structuralFactories is the closed table of grammar-based backends.
var structuralFactories = map[lang.Language]func() Backend{
	lang.Go:         func() Backend { return newGoBackend() },
	lang.Python:     func() Backend { return newTreeSitterBackend(pythonGrammar()) },
	lang.TypeScript: func() Backend { return newTreeSitterBackend(typescriptGrammar(lang.TypeScript)) },
	lang.JavaScript: func() Backend { return newTreeSitterBackend(typescriptGrammar(lang.JavaScript)) },
	lang.Rust:       func() Backend { return newTreeSitterBackend(rustGrammar()) },
	lang.C:          func() Backend { return newTreeSitterBackend(cGrammar(lang.C)) },
	lang.Cpp:        func() Backend { return newTreeSitterBackend(cGrammar(lang.Cpp)) },
	lang.Java:       func() Backend { return newTreeSitterBackend(javaGrammar()) },
	lang.PHP:        func() Backend { return newTreeSitterBackend(phpGrammar()) },
	lang.Ruby:       func() Backend { return newTreeSitterBackend(rubyGrammar()) },
}

// Resolve returns the backend for (tag, tier), or nil when the tag is invalid,
// the language is unsupported, or no backend exists for the pair. It never
// returns an error: a resolution miss is a skippable condition, not a fault.
func (r *Resolver) Resolve(tag string, tier Tier) Backend {
	if !lang.Valid(tag) {
		return nil
	}
	language := lang.Language(tag)
	factory, ok := r.factories[language][tier]
	if !ok {
		return nil
	}
	key := resolveKey{language: language, tier: tier}
	if b, ok := r.resolved.Get(key); ok {
		return b
	}
	b := factory()
	if v, ok := b.(Validator); ok && !v.Validate() {
		return nil
	}
	r.resolved.Set(key, b)
	return b
}

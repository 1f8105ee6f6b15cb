package backends

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// rubyGrammar maps Ruby syntax onto the declaration model. Require calls are
// not import nodes in the grammar, so the pattern tiers pick those up.
func rubyGrammar() grammar {
	return grammar{
		lang:     lang.Ruby,
		language: sitter.NewLanguage(ruby.Language()),
		decls: map[string]declSpec{
			"class":            {kind: extraction.KindClass, container: true},
			"module":           {kind: extraction.KindModule, container: true},
			"method":           {kind: extraction.KindMethod},
			"singleton_method": {kind: extraction.KindMethod},
		},
		imports:  map[string]bool{},
		comments: map[string]bool{"comment": true},
	}
}

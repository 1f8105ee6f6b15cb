package backends

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// cGrammar maps C syntax onto the declaration model. C++ headers parse
// acceptably with the C grammar for the constructs this backend extracts;
// anything beyond them is the pattern tiers' job.
func cGrammar(l lang.Language) grammar {
	return grammar{
		lang:     l,
		language: sitter.NewLanguage(c.Language()),
		decls: map[string]declSpec{
			"function_definition": {kind: extraction.KindFunction},
			"struct_specifier":    {kind: extraction.KindStruct},
			"enum_specifier":      {kind: extraction.KindEnum},
			"type_definition":     {kind: extraction.KindType},
		},
		imports:  map[string]bool{"preproc_include": true},
		comments: map[string]bool{"comment": true},
		modifiers: map[string]bool{
			"storage_class_specifier": true,
			"type_qualifier":          true,
		},
	}
}

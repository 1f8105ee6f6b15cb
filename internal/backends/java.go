package backends

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// javaGrammar maps Java syntax onto the declaration model.
func javaGrammar() grammar {
	return grammar{
		lang:     lang.Java,
		language: sitter.NewLanguage(java.Language()),
		decls: map[string]declSpec{
			"class_declaration":       {kind: extraction.KindClass, container: true},
			"interface_declaration":   {kind: extraction.KindInterface, container: true},
			"enum_declaration":        {kind: extraction.KindEnum},
			"record_declaration":      {kind: extraction.KindClass, container: true},
			"method_declaration":      {kind: extraction.KindMethod},
			"constructor_declaration": {kind: extraction.KindMethod},
		},
		imports:  map[string]bool{"import_declaration": true},
		comments: map[string]bool{"line_comment": true, "block_comment": true},
		modifiers: map[string]bool{
			"modifiers": true,
		},
	}
}

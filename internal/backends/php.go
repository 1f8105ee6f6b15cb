package backends

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// phpGrammar maps PHP syntax onto the declaration model.
func phpGrammar() grammar {
	return grammar{
		lang:     lang.PHP,
		language: sitter.NewLanguage(php.LanguagePHP()),
		decls: map[string]declSpec{
			"class_declaration":     {kind: extraction.KindClass, container: true},
			"interface_declaration": {kind: extraction.KindInterface, container: true},
			"trait_declaration":     {kind: extraction.KindTrait, container: true},
			"enum_declaration":      {kind: extraction.KindEnum},
			"function_definition":   {kind: extraction.KindFunction},
			"method_declaration":    {kind: extraction.KindMethod},
		},
		imports: map[string]bool{
			"namespace_use_declaration": true,
			"require_expression":        true,
			"include_expression":        true,
		},
		comments: map[string]bool{"comment": true},
		modifiers: map[string]bool{
			"visibility_modifier": true,
			"static_modifier":     true,
			"abstract_modifier":   true,
			"final_modifier":      true,
		},
	}
}

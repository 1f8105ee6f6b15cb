package backends

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// typescriptGrammar maps TypeScript syntax onto the declaration model.
// JavaScript is parsed with the same grammar; TypeScript-only constructs
// simply never appear in the tree.
func typescriptGrammar(l lang.Language) grammar {
	return grammar{
		lang:     l,
		language: sitter.NewLanguage(typescript.LanguageTypescript()),
		decls: map[string]declSpec{
			"class_declaration":              {kind: extraction.KindClass, container: true},
			"abstract_class_declaration":     {kind: extraction.KindClass, container: true},
			"function_declaration":           {kind: extraction.KindFunction},
			"generator_function_declaration": {kind: extraction.KindFunction},
			"method_definition":              {kind: extraction.KindMethod},
			"interface_declaration":          {kind: extraction.KindInterface},
			"enum_declaration":               {kind: extraction.KindEnum},
			"type_alias_declaration":         {kind: extraction.KindType},
		},
		imports:  map[string]bool{"import_statement": true},
		comments: map[string]bool{"comment": true},
		modifiers: map[string]bool{
			"export":                 true,
			"async":                  true,
			"static":                 true,
			"abstract":               true,
			"readonly":               true,
			"accessibility_modifier": true,
		},
	}
}

package backends

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// rustGrammar maps Rust syntax onto the declaration model. Impl and trait
// blocks are containers; their functions surface as methods.
func rustGrammar() grammar {
	return grammar{
		lang:     lang.Rust,
		language: sitter.NewLanguage(rust.Language()),
		decls: map[string]declSpec{
			"struct_item":   {kind: extraction.KindStruct},
			"enum_item":     {kind: extraction.KindEnum},
			"trait_item":    {kind: extraction.KindTrait, container: true},
			"impl_item":     {kind: extraction.KindClass, container: true},
			"function_item": {kind: extraction.KindFunction},
			"type_item":     {kind: extraction.KindType},
			"mod_item":      {kind: extraction.KindModule, container: true},
			"const_item":    {kind: extraction.KindConstant},
			"static_item":   {kind: extraction.KindVariable},
		},
		imports: map[string]bool{
			"use_declaration":          true,
			"extern_crate_declaration": true,
		},
		comments: map[string]bool{
			"line_comment":  true,
			"block_comment": true,
		},
		modifiers: map[string]bool{
			"visibility_modifier": true,
			"function_modifiers":  true,
		},
	}
}

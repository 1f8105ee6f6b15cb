package backends

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// pythonGrammar maps Python syntax onto the declaration model.
func pythonGrammar() grammar {
	return grammar{
		lang:     lang.Python,
		language: sitter.NewLanguage(python.Language()),
		decls: map[string]declSpec{
			"class_definition":    {kind: extraction.KindClass, container: true},
			"function_definition": {kind: extraction.KindFunction},
		},
		imports: map[string]bool{
			"import_statement":      true,
			"import_from_statement": true,
		},
		comments:  map[string]bool{"comment": true},
		modifiers: map[string]bool{"async": true},
		docstring: pythonDocstring,
	}
}

// pythonDocstring returns the docstring literal opening a def or class body.
func pythonDocstring(n *sitter.Node, source []byte) string {
	body := n.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Kind() != "string" {
		return ""
	}
	doc := extractNodeText(str, source)
	doc = strings.Trim(doc, "\"'")
	return strings.TrimSpace(doc)
}

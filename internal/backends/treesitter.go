package backends

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// declSpec describes how one tree-sitter node kind maps onto the declaration
// vocabulary. Container nodes (classes, traits, impl blocks) have their nested
// declarations collected as children instead of top-level entries.
type declSpec struct {
	kind      extraction.Kind
	container bool
}

// grammar is the per-language table driving the shared structural backend.
type grammar struct {
	lang      lang.Language
	language  *sitter.Language
	decls     map[string]declSpec
	imports   map[string]bool
	comments  map[string]bool
	modifiers map[string]bool
	// docstring optionally overrides comment-sibling docstring lookup, for
	// languages where documentation lives inside the declaration (Python).
	docstring func(n *sitter.Node, source []byte) string
}

// treeSitterBackend is the structural tier: one grammar, full-fidelity
// extraction with nesting, docstrings, signatures, and modifiers.
type treeSitterBackend struct {
	g grammar
}

func newTreeSitterBackend(g grammar) *treeSitterBackend {
	return &treeSitterBackend{g: g}
}

func (b *treeSitterBackend) Name() string {
	return "treesitter-" + string(b.g.lang)
}

func (b *treeSitterBackend) Capabilities() []string {
	return []string{"declarations", "imports", "docstrings", "signatures", "modifiers", "nesting"}
}

func (b *treeSitterBackend) Validate() bool {
	return b.g.language != nil && len(b.g.decls) > 0
}

// Extract parses content with tree-sitter and maps the syntax tree onto the
// declaration model using the backend's grammar table.
func (b *treeSitterBackend) Extract(ctx context.Context, content []byte, path string) (*extraction.Result, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(b.g.language)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s file: %s", b.g.lang, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	lines := strings.Split(string(content), "\n")

	result := extraction.Full(b.Name(), b.collectDeclarations(root, content, lines), b.collectImports(root, content))
	if root.HasError() {
		// The grammar recovered around syntax errors; everything extracted is
		// trustworthy but parts of the file were skipped.
		result.Quality = extraction.QualityPartial
		result.Error = fmt.Sprintf("syntax errors in %s", path)
		result.MissedFeatures = []string{"error_regions"}
	}
	return result, nil
}

// collectImports gathers the first line of every import-like node.
func (b *treeSitterBackend) collectImports(root *sitter.Node, source []byte) []string {
	var imports []string
	walkTree(root, func(n *sitter.Node) bool {
		if b.g.imports[n.Kind()] {
			imports = append(imports, firstLine(extractNodeText(n, source)))
			return false
		}
		return true
	})
	return extraction.NormalizeImports(imports)
}

// collectDeclarations walks the tree collecting top-level declarations.
// Nested declarations inside container nodes become children.
func (b *treeSitterBackend) collectDeclarations(root *sitter.Node, source []byte, lines []string) []extraction.Declaration {
	var decls []extraction.Declaration
	walkTree(root, func(n *sitter.Node) bool {
		spec, ok := b.g.decls[n.Kind()]
		if !ok {
			return true
		}
		decl := b.buildDeclaration(n, source, lines, spec)
		if decl.Name == "" {
			return true
		}
		decls = append(decls, decl)
		return false
	})
	return decls
}

func (b *treeSitterBackend) buildDeclaration(n *sitter.Node, source []byte, lines []string, spec declSpec) extraction.Declaration {
	decl := extraction.Declaration{
		Name:      nodeName(n, source),
		Kind:      spec.kind,
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
		Signature: declarationSignature(lines, int(n.StartPosition().Row)),
		Modifiers: b.collectModifiers(n, source),
		Docstring: b.declarationDocstring(n, source),
	}
	if spec.container {
		decl.Children = b.collectChildren(n, source, lines)
	}
	return decl
}

// collectChildren gathers declarations nested one container deep.
func (b *treeSitterBackend) collectChildren(container *sitter.Node, source []byte, lines []string) []extraction.Declaration {
	body := container.ChildByFieldName("body")
	if body == nil {
		body = container
	}
	var children []extraction.Declaration
	walkTree(body, func(n *sitter.Node) bool {
		if n.Id() == container.Id() || n.Id() == body.Id() {
			return true
		}
		spec, ok := b.g.decls[n.Kind()]
		if !ok {
			return true
		}
		child := b.buildDeclaration(n, source, lines, declSpec{kind: spec.kind})
		if child.Kind == extraction.KindFunction {
			child.Kind = extraction.KindMethod
		}
		if child.Name != "" {
			children = append(children, child)
		}
		return false
	})
	return children
}

// collectModifiers gathers modifier tokens attached directly to the node.
func (b *treeSitterBackend) collectModifiers(n *sitter.Node, source []byte) []string {
	if len(b.g.modifiers) == 0 {
		return nil
	}
	var mods []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		if b.g.modifiers[child.Kind()] {
			mods = append(mods, strings.TrimSpace(extractNodeText(child, source)))
		}
	}
	return mods
}

// declarationDocstring finds documentation for a declaration: either via the
// grammar's language-specific hook or from the immediately preceding comment.
func (b *treeSitterBackend) declarationDocstring(n *sitter.Node, source []byte) string {
	if b.g.docstring != nil {
		if doc := b.g.docstring(n, source); doc != "" {
			return doc
		}
	}
	prev := n.PrevNamedSibling()
	if prev == nil || !b.g.comments[prev.Kind()] {
		return ""
	}
	// Only adjacent comments document the declaration.
	if int(n.StartPosition().Row)-int(prev.EndPosition().Row) > 1 {
		return ""
	}
	return cleanComment(extractNodeText(prev, source))
}

// nodeName extracts a declaration's name, descending through declarator
// wrappers for C-family grammars.
func nodeName(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return extractNodeText(name, source)
	}
	// Rust impl blocks carry the implemented type instead of a name.
	if typ := n.ChildByFieldName("type"); typ != nil && n.Kind() == "impl_item" {
		return extractNodeText(typ, source)
	}
	decl := n.ChildByFieldName("declarator")
	for decl != nil {
		if next := decl.ChildByFieldName("declarator"); next != nil {
			decl = next
			continue
		}
		return extractNodeText(decl, source)
	}
	return ""
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each
// node. Returning false stops descent below that node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// declarationSignature renders the declaration's first line without the
// trailing block opener.
func declarationSignature(lines []string, row int) string {
	if row < 0 || row >= len(lines) {
		return ""
	}
	sig := strings.TrimSpace(lines[row])
	sig = strings.TrimSuffix(sig, "{")
	sig = strings.TrimSuffix(sig, ":")
	return strings.TrimSpace(sig)
}

// firstLine returns text up to the first newline.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

// cleanComment strips comment markers from a raw comment block.
func cleanComment(raw string) string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimPrefix(line, "///")
		line = strings.TrimPrefix(line, "//!")
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimPrefix(line, "#")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

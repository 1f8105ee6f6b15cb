package backends

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/srcmeta/srcmeta/internal/extraction"
)

// goBackend is the structural tier for Go, built on go/ast instead of a
// tree-sitter grammar.
type goBackend struct{}

func newGoBackend() *goBackend {
	return &goBackend{}
}

func (b *goBackend) Name() string {
	return "goast"
}

func (b *goBackend) Capabilities() []string {
	return []string{"declarations", "imports", "docstrings", "signatures", "nesting"}
}

// Extract parses Go source with go/ast.
func (b *goBackend) Extract(ctx context.Context, content []byte, path string) (*extraction.Result, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		if file == nil {
			return nil, err
		}
		// Partial AST: keep whatever parsed.
		result := extraction.Partial(b.Name(), err.Error(), b.declarations(fset, file, content), b.imports(file), []string{"error_regions"})
		return result, nil
	}

	return extraction.Full(b.Name(), b.declarations(fset, file, content), b.imports(file)), nil
}

func (b *goBackend) imports(file *ast.File) []string {
	imports := make([]string, 0, len(file.Imports))
	for _, imp := range file.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, `"`))
	}
	return extraction.NormalizeImports(imports)
}

func (b *goBackend) declarations(fset *token.FileSet, file *ast.File, content []byte) []extraction.Declaration {
	lines := strings.Split(string(content), "\n")
	var decls []extraction.Declaration

	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			decls = append(decls, b.funcDeclaration(fset, decl, lines))
		case *ast.GenDecl:
			decls = append(decls, b.genDeclarations(fset, decl, lines)...)
		}
	}
	return decls
}

func (b *goBackend) funcDeclaration(fset *token.FileSet, decl *ast.FuncDecl, lines []string) extraction.Declaration {
	startLine := fset.Position(decl.Pos()).Line
	endLine := fset.Position(decl.End()).Line

	kind := extraction.KindFunction
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		kind = extraction.KindMethod
	}

	out := extraction.Declaration{
		Name:      decl.Name.Name,
		Kind:      kind,
		StartLine: startLine,
		EndLine:   endLine,
		Signature: declarationSignature(lines, startLine-1),
		Docstring: docText(decl.Doc),
	}
	if decl.Name.IsExported() {
		out.Modifiers = []string{"exported"}
	}
	return out
}

func (b *goBackend) genDeclarations(fset *token.FileSet, decl *ast.GenDecl, lines []string) []extraction.Declaration {
	var out []extraction.Declaration
	for _, spec := range decl.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			out = append(out, b.typeDeclaration(fset, decl, s, lines))
		case *ast.ValueSpec:
			out = append(out, b.valueDeclarations(fset, decl, s, lines)...)
		}
	}
	return out
}

func (b *goBackend) typeDeclaration(fset *token.FileSet, decl *ast.GenDecl, spec *ast.TypeSpec, lines []string) extraction.Declaration {
	startLine := fset.Position(spec.Pos()).Line
	endLine := fset.Position(spec.End()).Line

	kind := extraction.KindType
	var children []extraction.Declaration
	switch t := spec.Type.(type) {
	case *ast.StructType:
		kind = extraction.KindStruct
	case *ast.InterfaceType:
		kind = extraction.KindInterface
		children = b.interfaceMethods(fset, t, lines)
	}

	doc := docText(spec.Doc)
	if doc == "" {
		doc = docText(decl.Doc)
	}

	out := extraction.Declaration{
		Name:      spec.Name.Name,
		Kind:      kind,
		StartLine: startLine,
		EndLine:   endLine,
		Signature: declarationSignature(lines, startLine-1),
		Docstring: doc,
		Children:  children,
	}
	if spec.Name.IsExported() {
		out.Modifiers = []string{"exported"}
	}
	return out
}

// interfaceMethods lists an interface's method set as child declarations.
func (b *goBackend) interfaceMethods(fset *token.FileSet, iface *ast.InterfaceType, lines []string) []extraction.Declaration {
	var out []extraction.Declaration
	for _, field := range iface.Methods.List {
		if len(field.Names) == 0 {
			continue // embedded interface
		}
		startLine := fset.Position(field.Pos()).Line
		out = append(out, extraction.Declaration{
			Name:      field.Names[0].Name,
			Kind:      extraction.KindMethod,
			StartLine: startLine,
			EndLine:   fset.Position(field.End()).Line,
			Signature: declarationSignature(lines, startLine-1),
			Docstring: docText(field.Doc),
		})
	}
	return out
}

func (b *goBackend) valueDeclarations(fset *token.FileSet, decl *ast.GenDecl, spec *ast.ValueSpec, lines []string) []extraction.Declaration {
	kind := extraction.KindVariable
	if decl.Tok == token.CONST {
		kind = extraction.KindConstant
	}

	var out []extraction.Declaration
	startLine := fset.Position(spec.Pos()).Line
	endLine := fset.Position(spec.End()).Line
	for _, name := range spec.Names {
		if name.Name == "_" {
			continue
		}
		d := extraction.Declaration{
			Name:      name.Name,
			Kind:      kind,
			StartLine: startLine,
			EndLine:   endLine,
			Signature: declarationSignature(lines, startLine-1),
			Docstring: docText(spec.Doc),
		}
		if name.IsExported() {
			d.Modifiers = []string{"exported"}
		}
		out = append(out, d)
	}
	return out
}

func docText(group *ast.CommentGroup) string {
	if group == nil {
		return ""
	}
	return strings.TrimSpace(group.Text())
}

package backends

import (
	"context"
	"regexp"
	"strings"

	"github.com/srcmeta/srcmeta/internal/cache"
	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// patternRule matches one declaration form. The first capture group is the
// declaration name.
type patternRule struct {
	kind extraction.Kind
	expr string
}

// patternTables holds the enhanced-tier rules per language.
var patternTables = map[lang.Language][]patternRule{
	lang.Go: {
		{extraction.KindFunction, `^func\s+(\w+)\s*\(`},
		{extraction.KindMethod, `^func\s+\([^)]+\)\s+(\w+)\s*\(`},
		{extraction.KindStruct, `^type\s+(\w+)\s+struct\b`},
		{extraction.KindInterface, `^type\s+(\w+)\s+interface\b`},
		{extraction.KindType, `^type\s+(\w+)\s+`},
		{extraction.KindConstant, `^const\s+(\w+)`},
		{extraction.KindVariable, `^var\s+(\w+)`},
	},
	lang.Python: {
		{extraction.KindClass, `^\s*class\s+(\w+)`},
		{extraction.KindFunction, `^\s*(?:async\s+)?def\s+(\w+)\s*\(`},
		{extraction.KindConstant, `^([A-Z][A-Z0-9_]*)\s*=`},
	},
	lang.TypeScript: {
		{extraction.KindClass, `^\s*(?:export\s+)?(?:abstract\s+)?class\s+(\w+)`},
		{extraction.KindInterface, `^\s*(?:export\s+)?interface\s+(\w+)`},
		{extraction.KindEnum, `^\s*(?:export\s+)?(?:const\s+)?enum\s+(\w+)`},
		{extraction.KindType, `^\s*(?:export\s+)?type\s+(\w+)\s*=`},
		{extraction.KindFunction, `^\s*(?:export\s+)?(?:async\s+)?function\s*\*?\s*(\w+)\s*\(`},
		{extraction.KindVariable, `^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)`},
	},
	lang.JavaScript: {
		{extraction.KindClass, `^\s*(?:export\s+)?class\s+(\w+)`},
		{extraction.KindFunction, `^\s*(?:export\s+)?(?:async\s+)?function\s*\*?\s*(\w+)\s*\(`},
		{extraction.KindVariable, `^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)`},
	},
	lang.Rust: {
		{extraction.KindFunction, `^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+(\w+)`},
		{extraction.KindStruct, `^\s*(?:pub(?:\([^)]*\))?\s+)?struct\s+(\w+)`},
		{extraction.KindEnum, `^\s*(?:pub(?:\([^)]*\))?\s+)?enum\s+(\w+)`},
		{extraction.KindTrait, `^\s*(?:pub(?:\([^)]*\))?\s+)?trait\s+(\w+)`},
		{extraction.KindType, `^\s*(?:pub(?:\([^)]*\))?\s+)?type\s+(\w+)`},
		{extraction.KindConstant, `^\s*(?:pub(?:\([^)]*\))?\s+)?const\s+(\w+)`},
	},
	lang.C: {
		{extraction.KindFunction, `^[A-Za-z_][\w\s\*]*?\b(\w+)\s*\([^;]*\)\s*\{?\s*$`},
		{extraction.KindStruct, `^\s*(?:typedef\s+)?struct\s+(\w+)`},
		{extraction.KindEnum, `^\s*(?:typedef\s+)?enum\s+(\w+)`},
	},
	lang.Cpp: {
		{extraction.KindClass, `^\s*class\s+(\w+)`},
		{extraction.KindStruct, `^\s*(?:typedef\s+)?struct\s+(\w+)`},
		{extraction.KindEnum, `^\s*enum\s+(?:class\s+)?(\w+)`},
		{extraction.KindFunction, `^[A-Za-z_][\w\s\*:<>,&]*?\b(\w+)\s*\([^;]*\)\s*\{?\s*$`},
	},
	lang.Java: {
		{extraction.KindClass, `^\s*(?:public\s+|private\s+|protected\s+)?(?:abstract\s+|final\s+|static\s+)*class\s+(\w+)`},
		{extraction.KindInterface, `^\s*(?:public\s+)?interface\s+(\w+)`},
		{extraction.KindEnum, `^\s*(?:public\s+)?enum\s+(\w+)`},
		{extraction.KindMethod, `^\s*(?:public|private|protected)\s+(?:static\s+|final\s+|abstract\s+)*[\w<>\[\],\s]+\s+(\w+)\s*\(`},
	},
	lang.PHP: {
		{extraction.KindClass, `^\s*(?:abstract\s+|final\s+)?class\s+(\w+)`},
		{extraction.KindInterface, `^\s*interface\s+(\w+)`},
		{extraction.KindTrait, `^\s*trait\s+(\w+)`},
		{extraction.KindFunction, `^\s*(?:public\s+|private\s+|protected\s+|static\s+)*function\s+(\w+)\s*\(`},
	},
	lang.Ruby: {
		{extraction.KindClass, `^\s*class\s+([A-Z]\w*)`},
		{extraction.KindModule, `^\s*module\s+([A-Z]\w*)`},
		{extraction.KindMethod, `^\s*def\s+(?:self\.)?([\w?!=\[\]]+)`},
	},
}

// importPatterns matches import lines per language.
var importPatterns = map[lang.Language]string{
	lang.Go:         `^\s*(?:import\s+)?(?:\w+\s+)?"([^"]+)"`,
	lang.Python:     `^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`,
	lang.TypeScript: `^\s*import\s+.*?from\s+['"]([^'"]+)['"]`,
	lang.JavaScript: `^\s*(?:import\s+.*?from\s+['"]([^'"]+)['"]|(?:const|let|var)\s+\w+\s*=\s*require\(['"]([^'"]+)['"]\))`,
	lang.Rust:       `^\s*use\s+([\w:]+)`,
	lang.C:          `^\s*#include\s+[<"]([^>"]+)[>"]`,
	lang.Cpp:        `^\s*#include\s+[<"]([^>"]+)[>"]`,
	lang.Java:       `^\s*import\s+(?:static\s+)?([\w.]+(?:\.\*)?);`,
	lang.PHP:        `^\s*use\s+([\w\\]+)`,
	lang.Ruby:       `^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`,
}

// modifierWords are leading tokens recorded as declaration modifiers.
var modifierWords = map[string]bool{
	"public": true, "private": true, "protected": true, "static": true,
	"abstract": true, "final": true, "async": true, "export": true,
	"pub": true, "const": true, "unsafe": true, "readonly": true,
}

// patternBackend is the enhanced tier: line-oriented regex extraction with a
// per-language rule table. It sees no nesting and no block ends, which it
// reports as missed features.
type patternBackend struct {
	language lang.Language
	rules    []patternRule
	imports  string
	patterns *cache.Bounded[string, *regexp.Regexp]
}

func newPatternBackend(l lang.Language, patterns *cache.Bounded[string, *regexp.Regexp]) *patternBackend {
	return &patternBackend{
		language: l,
		rules:    patternTables[l],
		imports:  importPatterns[l],
		patterns: patterns,
	}
}

func (b *patternBackend) Name() string {
	return "pattern-" + string(b.language)
}

func (b *patternBackend) Capabilities() []string {
	return []string{"declarations", "imports", "signatures", "modifiers"}
}

func (b *patternBackend) Validate() bool {
	return len(b.rules) > 0
}

func (b *patternBackend) compile(expr string) (*regexp.Regexp, error) {
	if b.patterns == nil {
		return regexp.Compile(expr)
	}
	return b.patterns.GetOrCompute(expr, func() (*regexp.Regexp, error) {
		return regexp.Compile(expr)
	})
}

// Extract scans content line by line against the language's rule table.
func (b *patternBackend) Extract(ctx context.Context, content []byte, path string) (*extraction.Result, error) {
	compiled := make([]*regexp.Regexp, len(b.rules))
	for i, rule := range b.rules {
		re, err := b.compile(rule.expr)
		if err != nil {
			return nil, err
		}
		compiled[i] = re
	}
	var importRe *regexp.Regexp
	if b.imports != "" {
		re, err := b.compile(b.imports)
		if err != nil {
			return nil, err
		}
		importRe = re
	}

	lines := strings.Split(string(content), "\n")
	var decls []extraction.Declaration
	var imports []string

	for i, line := range lines {
		if importRe != nil {
			if m := importRe.FindStringSubmatch(line); m != nil {
				imports = append(imports, firstGroup(m))
				continue
			}
		}
		for ruleIdx, re := range compiled {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			decls = append(decls, extraction.Declaration{
				Name:      firstGroup(m),
				Kind:      b.rules[ruleIdx].kind,
				StartLine: i + 1,
				EndLine:   i + 1,
				Signature: declarationSignature(lines, i),
				Modifiers: lineModifiers(line),
				Docstring: precedingComment(lines, i),
			})
			break
		}
	}

	result := extraction.Full(b.Name(), decls, extraction.NormalizeImports(imports))
	result.MissedFeatures = []string{"nested_declarations", "block_extents"}
	return result, nil
}

// firstGroup returns the first non-empty capture group.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// lineModifiers collects known modifier keywords preceding the declaration.
func lineModifiers(line string) []string {
	var mods []string
	for _, word := range strings.Fields(line) {
		if !modifierWords[word] {
			break
		}
		mods = append(mods, word)
	}
	return mods
}

// precedingComment returns cleaned text of the comment block directly above
// the given line, if any.
func precedingComment(lines []string, row int) string {
	var block []string
	for i := row - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			break
		}
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "#") &&
			!strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "/*") &&
			!strings.HasPrefix(trimmed, "'''") && !strings.HasPrefix(trimmed, `"""`) {
			break
		}
		block = append([]string{trimmed}, block...)
		if strings.HasPrefix(trimmed, "/*") {
			break
		}
	}
	if len(block) == 0 {
		return ""
	}
	return cleanComment(strings.Join(block, "\n"))
}

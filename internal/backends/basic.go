package backends

import (
	"context"
	"strings"
	"unicode"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// basicKeywords maps declaration-introducing keywords per language.
var basicKeywords = map[lang.Language]map[string]extraction.Kind{
	lang.Go: {
		"func": extraction.KindFunction, "type": extraction.KindType,
		"const": extraction.KindConstant, "var": extraction.KindVariable,
	},
	lang.Python: {
		"def": extraction.KindFunction, "class": extraction.KindClass,
	},
	lang.TypeScript: {
		"function": extraction.KindFunction, "class": extraction.KindClass,
		"interface": extraction.KindInterface, "enum": extraction.KindEnum,
	},
	lang.JavaScript: {
		"function": extraction.KindFunction, "class": extraction.KindClass,
	},
	lang.Rust: {
		"fn": extraction.KindFunction, "struct": extraction.KindStruct,
		"enum": extraction.KindEnum, "trait": extraction.KindTrait,
	},
	lang.C: {
		"struct": extraction.KindStruct, "enum": extraction.KindEnum,
	},
	lang.Cpp: {
		"class": extraction.KindClass, "struct": extraction.KindStruct,
		"enum": extraction.KindEnum,
	},
	lang.Java: {
		"class": extraction.KindClass, "interface": extraction.KindInterface,
		"enum": extraction.KindEnum,
	},
	lang.PHP: {
		"function": extraction.KindFunction, "class": extraction.KindClass,
		"interface": extraction.KindInterface, "trait": extraction.KindTrait,
	},
	lang.Ruby: {
		"def": extraction.KindMethod, "class": extraction.KindClass,
		"module": extraction.KindModule,
	},
}

// basicBackend is the standard tier: the cheapest extractor, scanning for
// declaration keywords at line starts. It is the last resort when richer
// backends fail, so it must never fail itself.
type basicBackend struct {
	language lang.Language
	keywords map[string]extraction.Kind
}

func newBasicBackend(l lang.Language) *basicBackend {
	return &basicBackend{language: l, keywords: basicKeywords[l]}
}

func (b *basicBackend) Name() string {
	return "basic-" + string(b.language)
}

func (b *basicBackend) Capabilities() []string {
	return []string{"declarations"}
}

// Extract scans for lines whose first token introduces a declaration.
func (b *basicBackend) Extract(ctx context.Context, content []byte, path string) (*extraction.Result, error) {
	lines := strings.Split(string(content), "\n")
	var decls []extraction.Declaration

	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		kind, ok := b.keywords[fields[0]]
		if !ok {
			continue
		}
		name := identifierPrefix(fields[1])
		if name == "" {
			continue
		}
		decls = append(decls, extraction.Declaration{
			Name:      name,
			Kind:      kind,
			StartLine: i + 1,
			EndLine:   i + 1,
		})
	}

	result := extraction.Full(b.Name(), decls, []string{})
	result.Quality = extraction.QualityBasic
	result.MissedFeatures = []string{
		"imports", "docstrings", "signatures", "modifiers",
		"nested_declarations", "block_extents",
	}
	return result, nil
}

// identifierPrefix returns the leading identifier of a token, stripping
// trailing punctuation like "(", ":", or "{".
func identifierPrefix(token string) string {
	for i, r := range token {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return token[:i]
	}
	return token
}

package lang

import (
	"path/filepath"
	"strings"
)

// Language is a tag from the closed set of supported languages.
type Language string

const (
	Go         Language = "go"
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
	Python     Language = "python"
	Rust       Language = "rust"
	C          Language = "c"
	Cpp        Language = "cpp"
	Java       Language = "java"
	PHP        Language = "php"
	Ruby       Language = "ruby"
	Unknown    Language = "unknown"
)

// All lists every supported language in a stable order.
func All() []Language {
	return []Language{Go, TypeScript, JavaScript, Python, Rust, C, Cpp, Java, PHP, Ruby}
}

var supported = map[Language]bool{
	Go:         true,
	TypeScript: true,
	JavaScript: true,
	Python:     true,
	Rust:       true,
	C:          true,
	Cpp:        true,
	Java:       true,
	PHP:        true,
	Ruby:       true,
}

// Supported reports whether the tag is a member of the closed language set.
func Supported(l Language) bool {
	return supported[l]
}

// Suspect reports whether a tag contains path-traversal or shell-metacharacter
// patterns. Tags never reach any dynamic lookup, but a hostile tag in a config
// file should still be refused up front, distinctly from a merely unknown one.
func Suspect(tag string) bool {
	if tag == "" || len(tag) > 32 {
		return true
	}
	return strings.ContainsAny(tag, "/\\;|&$`<>(){}'\" \t\n") || strings.Contains(tag, "..")
}

// Valid rejects tags that are suspect or not members of the allow-list.
func Valid(tag string) bool {
	return !Suspect(tag) && supported[Language(tag)]
}

// Detect maps a file path to a language by extension.
// Returns Unknown for unrecognized extensions.
func Detect(filePath string) Language {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".go":
		return Go
	case ".ts", ".tsx":
		return TypeScript
	case ".js", ".jsx", ".mjs":
		return JavaScript
	case ".py":
		return Python
	case ".rs":
		return Rust
	case ".c", ".h":
		return C
	case ".cpp", ".cc", ".hpp":
		return Cpp
	case ".java":
		return Java
	case ".php":
		return PHP
	case ".rb":
		return Ruby
	default:
		return Unknown
	}
}

// Extensions returns the file extensions handled by Detect, with leading dot.
func Extensions() []string {
	return []string{
		".go", ".ts", ".tsx", ".js", ".jsx", ".mjs", ".py", ".rs",
		".c", ".h", ".cpp", ".cc", ".hpp", ".java", ".php", ".rb",
	}
}

// Package discovery walks a source tree collecting files for extraction.
package discovery

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds the pattern string and its compiled globs. For
// patterns starting with "**/", rootGlob is the variant with that prefix
// stripped so "**/*.go" also matches a root-level "main.go".
type compiledPattern struct {
	pattern  string
	glob     glob.Glob
	rootGlob glob.Glob
}

func compilePattern(pattern string) (compiledPattern, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return compiledPattern{}, err
	}
	cp := compiledPattern{pattern: pattern, glob: g}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		rg, err := glob.Compile(rest, '/')
		if err != nil {
			return compiledPattern{}, err
		}
		cp.rootGlob = rg
	}
	return cp, nil
}

func (cp compiledPattern) match(relPath string) bool {
	if cp.glob.Match(relPath) {
		return true
	}
	return cp.rootGlob != nil && !strings.Contains(relPath, "/") && cp.rootGlob.Match(relPath)
}

// metaDir is the tool's own output directory, always ignored.
const metaDir = ".srcmeta"

// FileDiscovery matches files against include globs and ignore rules.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// New compiles the given glob patterns for the root directory.
func New(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{rootDir: rootDir}

	for _, pattern := range includePatterns {
		cp, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		fd.includePatterns = append(fd.includePatterns, cp)
	}
	for _, pattern := range ignorePatterns {
		cp, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		fd.ignorePatterns = append(fd.ignorePatterns, cp)
	}
	return fd, nil
}

// Discover walks the tree and returns absolute paths of matching files.
func (fd *FileDiscovery) Discover() ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, relErr := filepath.Rel(fd.rootDir, path)
		if relErr != nil {
			return relErr
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && fd.IgnoresDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if fd.shouldIgnore(relPath) {
			return nil
		}
		if fd.matchesInclude(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Matches reports whether a single relative path would be discovered.
func (fd *FileDiscovery) Matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return !fd.shouldIgnore(relPath) && fd.matchesInclude(relPath)
}

// IgnoresDir reports whether an entire directory subtree is ignored, so
// walkers and watchers can prune it. A directory "node_modules" counts as
// ignored when the pattern is "node_modules/**".
func (fd *FileDiscovery) IgnoresDir(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return fd.shouldIgnore(relPath) || fd.shouldIgnore(relPath+"/**")
}

func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if relPath == metaDir || strings.HasPrefix(relPath, metaDir+"/") {
		return true
	}
	for _, p := range fd.ignorePatterns {
		if p.match(relPath) {
			return true
		}
	}
	return false
}

func (fd *FileDiscovery) matchesInclude(relPath string) bool {
	for _, p := range fd.includePatterns {
		if p.match(relPath) {
			return true
		}
	}
	return false
}

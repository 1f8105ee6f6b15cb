package pipeline

import (
	"fmt"

	"github.com/srcmeta/srcmeta/internal/extraction"
)

// DedupeDeclarations removes declarations sharing an identity signature,
// keeping the first occurrence. Order of first occurrence is preserved
// exactly: downstream callers re-sort by source location and rely on stable
// relative ordering for ties.
func DedupeDeclarations(items []extraction.Declaration) []extraction.Declaration {
	seen := make(map[extraction.Identity]bool, len(items))
	out := make([]extraction.Declaration, 0, len(items))
	for _, d := range items {
		id := d.Identity()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, d)
	}
	return out
}

// Dedupe removes duplicate comparable items, keeping first occurrences.
func Dedupe[T comparable](items []T) []T {
	seen := make(map[T]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// DedupeByKey removes duplicates under an explicit key function, for item
// types without useful native identity. Pass nil to key items by their
// printed representation.
func DedupeByKey[T any](items []T, key func(T) string) []T {
	if key == nil {
		key = func(it T) string { return fmt.Sprint(it) }
	}
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

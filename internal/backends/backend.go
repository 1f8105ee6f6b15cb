// Package backends implements the three extraction tiers and the closed
// registry that maps (language, tier) pairs to backend instances.
package backends

import (
	"context"

	"github.com/srcmeta/srcmeta/internal/extraction"
)

// Tier identifies one backend class, attempted in fixed priority order.
// Priority is fixed; actual result confidence is measured per file and is
// independent of tier rank.
type Tier int

const (
	// TierStructural is the grammar-based structural parser.
	TierStructural Tier = iota
	// TierEnhancedPattern is the regex pattern extractor.
	TierEnhancedPattern
	// TierStandardPattern is the minimal line-pattern extractor.
	TierStandardPattern
)

// String returns the tier's configuration name.
func (t Tier) String() string {
	switch t {
	case TierStructural:
		return "structural"
	case TierEnhancedPattern:
		return "enhanced"
	case TierStandardPattern:
		return "standard"
	default:
		return "unknown"
	}
}

// AllTiers lists the tiers in priority order.
func AllTiers() []Tier {
	return []Tier{TierStructural, TierEnhancedPattern, TierStandardPattern}
}

// Backend extracts structural metadata from one file's content.
// Implementations must be safe for concurrent use; each Extract call works on
// its own buffers.
type Backend interface {
	// Name returns a stable backend identifier, e.g. "treesitter-python".
	Name() string

	// Extract produces an extraction result for the given content. A non-nil
	// error means the backend failed outright; partial salvage is reported
	// through the result's Error field instead.
	Extract(ctx context.Context, content []byte, path string) (*extraction.Result, error)
}

// Capable is implemented by self-describing backends.
type Capable interface {
	Capabilities() []string
}

// Validator is implemented by backends that can check their own setup.
type Validator interface {
	Validate() bool
}

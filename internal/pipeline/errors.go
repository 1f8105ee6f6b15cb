// Package pipeline implements the progressive-fallback orchestration and
// multi-result merging subsystem: backends are attempted in tier priority
// order, per-tier failures are isolated, and surviving results are combined
// under a selectable merge strategy.
package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoBackendSucceeded is the terminal condition: every tier was unavailable
// or failed. It is the only tier-related error that escapes the orchestrator.
var ErrNoBackendSucceeded = errors.New("no backend succeeded")

// NoBackendError reports which file and language exhausted all tiers.
// It matches ErrNoBackendSucceeded under errors.Is.
type NoBackendError struct {
	Path     string
	Language string
}

func (e *NoBackendError) Error() string {
	return fmt.Sprintf("no backend succeeded for %s (language %q)", e.Path, e.Language)
}

func (e *NoBackendError) Is(target error) bool {
	return target == ErrNoBackendSucceeded
}

// Preflight rejection reasons. These categorize input rejected before any
// backend runs, so they are never confused with in-backend parse errors.
const (
	ReasonContentTooLarge = "content exceeds maximum size"
	ReasonLineTooLong     = "line exceeds maximum length"
	ReasonSuspectLanguage = "language tag rejected"
)

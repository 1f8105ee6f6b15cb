package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/srcmeta/srcmeta/internal/backends"
	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// Options controls one orchestrator's behavior. Tier order is priority order.
type Options struct {
	EnabledTiers    []backends.Tier
	MergeEnabled    bool
	Strategy        extraction.Strategy
	MaxContentBytes int
	MaxLineLength   int
}

// DefaultOptions enables every tier with merging on.
func DefaultOptions() Options {
	return Options{
		EnabledTiers:    backends.AllTiers(),
		MergeEnabled:    true,
		Strategy:        extraction.StrategyConfidenceWeighted,
		MaxContentBytes: 5 * 1024 * 1024,
		MaxLineLength:   10000,
	}
}

// Resolver yields the backend for a language and tier, or nil when the pair
// has no registered backend. *backends.Resolver is the production
// implementation.
type Resolver interface {
	Resolve(tag string, tier backends.Tier) backends.Backend
}

// Orchestrator drives the tiered attempt sequence for one file at a time and
// hands surviving results to the merger. Each call works only on its own
// buffers, so one orchestrator may serve any number of concurrent files.
type Orchestrator struct {
	resolver Resolver
	opts     Options
	log      *slog.Logger
}

// NewOrchestrator builds an orchestrator over the given resolver.
func NewOrchestrator(resolver Resolver, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.EnabledTiers) == 0 {
		opts.EnabledTiers = backends.AllTiers()
	}
	if !extraction.ValidStrategy(opts.Strategy) {
		opts.Strategy = extraction.StrategyConfidenceWeighted
	}
	return &Orchestrator{
		resolver: resolver,
		opts:     opts,
		log:      logger.With("component", "orchestrator"),
	}
}

// ParseOne runs the fallback sequence for one file. The returned record is
// always well-formed: declarations, imports, and quality are never absent.
// The only error surfaced is the terminal NoBackendError; every tier-level
// failure is recovered locally.
func (o *Orchestrator) ParseOne(ctx context.Context, content []byte, path, language string) (*extraction.MergedResult, error) {
	if reason := o.preflight(content, language); reason != "" {
		o.log.Debug("preflight rejection", "path", path, "reason", reason)
		return &extraction.MergedResult{Result: *extraction.PreflightRejected(reason)}, nil
	}

	var collected []*extraction.Result
	for _, tier := range o.opts.EnabledTiers {
		backend := o.resolver.Resolve(language, tier)
		if backend == nil {
			o.log.Debug("no backend for tier", "path", path, "language", language, "tier", tier.String())
			continue
		}

		result, err := o.attempt(ctx, backend, content, path)
		if err != nil {
			// Failure isolation: one bad backend never blocks the pipeline.
			o.log.Warn("backend failed", "path", path, "backend", backend.Name(), "tier", tier.String(), "error", err)
			continue
		}
		result.Tier = tier.String()
		if result.Backend == "" {
			result.Backend = backend.Name()
		}

		if !o.opts.MergeEnabled && result.Error == "" {
			// Legacy single-winner fast path: first clean result wins.
			return &extraction.MergedResult{Result: *result}, nil
		}
		collected = append(collected, result)
	}

	return o.combine(collected, path, language)
}

// combine turns the collected results into the final record.
func (o *Orchestrator) combine(collected []*extraction.Result, path, language string) (*extraction.MergedResult, error) {
	if len(collected) == 0 {
		return nil, &NoBackendError{Path: path, Language: language}
	}

	clean := make([]*extraction.Result, 0, len(collected))
	for _, r := range collected {
		if r.Error == "" {
			clean = append(clean, r)
		}
	}

	if len(clean) == 0 {
		// Every collected result errored. Merging would multiply garbage, so
		// take the errored result with the most declarations as the degraded
		// best effort.
		return &extraction.MergedResult{Result: *MostDeclarations(collected)}, nil
	}
	if len(clean) == 1 {
		return &extraction.MergedResult{Result: *clean[0]}, nil
	}
	return Merge(clean, o.opts.Strategy), nil
}

// attempt invokes one backend with panic isolation.
func (o *Orchestrator) attempt(ctx context.Context, backend backends.Backend, content []byte, path string) (result *extraction.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("backend %s panicked: %v", backend.Name(), r)
		}
	}()

	result, err = backend.Extract(ctx, content, path)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("backend %s returned no result", backend.Name())
	}
	return result, nil
}

// preflight validates input size, line length, and the language tag before
// any backend sees the content. Returns the rejection reason, or "".
func (o *Orchestrator) preflight(content []byte, language string) string {
	if o.opts.MaxContentBytes > 0 && len(content) > o.opts.MaxContentBytes {
		return fmt.Sprintf("%s: %d bytes (limit %d)", ReasonContentTooLarge, len(content), o.opts.MaxContentBytes)
	}
	if o.opts.MaxLineLength > 0 {
		if n := longestLine(content); n > o.opts.MaxLineLength {
			return fmt.Sprintf("%s: %d characters (limit %d)", ReasonLineTooLong, n, o.opts.MaxLineLength)
		}
	}
	if lang.Suspect(language) {
		return ReasonSuspectLanguage
	}
	return ""
}

// longestLine returns the byte length of the longest line.
func longestLine(content []byte) int {
	longest, current := 0, 0
	for _, b := range content {
		if b == '\n' {
			if current > longest {
				longest = current
			}
			current = 0
			continue
		}
		current++
	}
	if current > longest {
		longest = current
	}
	return longest
}

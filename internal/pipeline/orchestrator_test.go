package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcmeta/srcmeta/internal/backends"
	"github.com/srcmeta/srcmeta/internal/extraction"
)

// Test Plan for the orchestrator:
// - Preflight rejects oversized content, over-long lines, and suspect tags
//   without running any backend
// - A panicking or erroring tier never prevents later tiers from running
// - Nothing resolvable yields the terminal NoBackendError
// - All-errored collections fall back to the most-declarations result
// - Merge-disabled mode returns the first clean result and stops
// - Merge-enabled mode combines clean results under the configured strategy

type stubBackend struct {
	name   string
	result *extraction.Result
	err    error
	panics bool
	calls  int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Extract(ctx context.Context, content []byte, path string) (*extraction.Result, error) {
	s.calls++
	if s.panics {
		panic("backend exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result.Clone(), nil
}

type stubResolver struct {
	tiers map[backends.Tier]backends.Backend
}

func (s *stubResolver) Resolve(tag string, tier backends.Tier) backends.Backend {
	return s.tiers[tier]
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.MaxContentBytes = 1024
	opts.MaxLineLength = 200
	return opts
}

func TestOrchestrator_PreflightRejections(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{name: "never", result: extraction.Full("never", nil, nil)}
	resolver := &stubResolver{tiers: map[backends.Tier]backends.Backend{backends.TierStructural: backend}}
	orch := NewOrchestrator(resolver, testOptions(), nil)

	cases := []struct {
		name     string
		content  []byte
		language string
	}{
		{"oversized content", make([]byte, 2048), "python"},
		{"over-long line", []byte(strings.Repeat("x", 500)), "python"},
		{"suspect language", []byte("def f(): pass"), "../python"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result, err := orch.ParseOne(context.Background(), tc.content, "file.py", tc.language)
			require.NoError(t, err, "preflight rejection is a result, not an error")
			assert.True(t, result.Preflight)
			assert.Equal(t, extraction.QualityFailed, result.Quality)
			assert.NotEmpty(t, result.Error)
			assert.NotNil(t, result.Declarations)
		})
	}
	assert.Zero(t, backend.calls, "no backend may run on rejected input")
}

func TestOrchestrator_FailureIsolation(t *testing.T) {
	t.Parallel()

	panicking := &stubBackend{name: "structural", panics: true}
	erroring := &stubBackend{name: "enhanced", err: errors.New("regex exploded")}
	working := &stubBackend{name: "standard", result: extraction.Full("standard", []extraction.Declaration{
		{Name: "f", Kind: extraction.KindFunction, StartLine: 1, EndLine: 2},
	}, nil)}

	resolver := &stubResolver{tiers: map[backends.Tier]backends.Backend{
		backends.TierStructural:      panicking,
		backends.TierEnhancedPattern: erroring,
		backends.TierStandardPattern: working,
	}}
	orch := NewOrchestrator(resolver, testOptions(), nil)

	result, err := orch.ParseOne(context.Background(), []byte("f"), "file.py", "python")
	require.NoError(t, err)

	assert.Equal(t, 1, panicking.calls)
	assert.Equal(t, 1, erroring.calls)
	assert.Equal(t, 1, working.calls)
	assert.Equal(t, "standard", result.Backend)
	assert.Len(t, result.Declarations, 1)
}

func TestOrchestrator_NoBackendSucceeded(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{tiers: map[backends.Tier]backends.Backend{}}
	orch := NewOrchestrator(resolver, testOptions(), nil)

	_, err := orch.ParseOne(context.Background(), []byte("content"), "file.py", "python")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoBackendSucceeded)

	var nbe *NoBackendError
	require.ErrorAs(t, err, &nbe)
	assert.Equal(t, "file.py", nbe.Path)
	assert.Equal(t, "python", nbe.Language)
}

func TestOrchestrator_AllErroredFallback(t *testing.T) {
	t.Parallel()

	rich := extraction.Failed("structural", "timeout")
	rich.Declarations = []extraction.Declaration{
		{Name: "a", Kind: extraction.KindFunction, StartLine: 1, EndLine: 2},
		{Name: "b", Kind: extraction.KindFunction, StartLine: 3, EndLine: 4},
	}
	poor := extraction.Failed("standard", "timeout")

	resolver := &stubResolver{tiers: map[backends.Tier]backends.Backend{
		backends.TierStructural:      &stubBackend{name: "structural", result: rich},
		backends.TierStandardPattern: &stubBackend{name: "standard", result: poor},
	}}
	orch := NewOrchestrator(resolver, testOptions(), nil)

	result, err := orch.ParseOne(context.Background(), []byte("content"), "file.py", "python")
	require.NoError(t, err)
	assert.Equal(t, "structural", result.Backend)
	assert.Len(t, result.Declarations, 2)
	assert.NotEmpty(t, result.Error)
}

func TestOrchestrator_MergeDisabledFirstCleanWins(t *testing.T) {
	t.Parallel()

	first := &stubBackend{name: "structural", result: extraction.Full("structural", []extraction.Declaration{
		{Name: "a", Kind: extraction.KindFunction, StartLine: 1, EndLine: 2},
	}, nil)}
	second := &stubBackend{name: "enhanced", result: extraction.Full("enhanced", nil, nil)}

	resolver := &stubResolver{tiers: map[backends.Tier]backends.Backend{
		backends.TierStructural:      first,
		backends.TierEnhancedPattern: second,
	}}
	opts := testOptions()
	opts.MergeEnabled = false
	orch := NewOrchestrator(resolver, opts, nil)

	result, err := orch.ParseOne(context.Background(), []byte("content"), "file.py", "python")
	require.NoError(t, err)
	assert.Equal(t, "structural", result.Backend)
	assert.Empty(t, result.Strategy)
	assert.Zero(t, second.calls, "later tiers must not run once a clean result exists")
}

func TestOrchestrator_MergeEnabledCombines(t *testing.T) {
	t.Parallel()

	structural := extraction.Full("structural", []extraction.Declaration{
		{Name: "a", Kind: extraction.KindFunction, StartLine: 1, EndLine: 2},
	}, []string{"os"})
	enhanced := extraction.Full("enhanced", []extraction.Declaration{
		{Name: "b", Kind: extraction.KindFunction, StartLine: 5, EndLine: 6},
	}, []string{"sys"})

	resolver := &stubResolver{tiers: map[backends.Tier]backends.Backend{
		backends.TierStructural:      &stubBackend{name: "structural", result: structural},
		backends.TierEnhancedPattern: &stubBackend{name: "enhanced", result: enhanced},
	}}
	opts := testOptions()
	opts.Strategy = extraction.StrategyFeatureUnion
	orch := NewOrchestrator(resolver, opts, nil)

	result, err := orch.ParseOne(context.Background(), []byte("content"), "file.py", "python")
	require.NoError(t, err)
	assert.Equal(t, extraction.StrategyFeatureUnion, result.Strategy)
	assert.Len(t, result.Declarations, 2)
	assert.Equal(t, []string{"os", "sys"}, result.Imports)
	assert.Contains(t, result.Backend, "+")
}

func TestOrchestrator_TierTagging(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{tiers: map[backends.Tier]backends.Backend{
		backends.TierStandardPattern: &stubBackend{name: "basic-python", result: extraction.Full("basic-python", nil, nil)},
	}}
	orch := NewOrchestrator(resolver, testOptions(), nil)

	result, err := orch.ParseOne(context.Background(), []byte("content"), "file.py", "python")
	require.NoError(t, err)
	assert.Equal(t, "standard", result.Tier)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcmeta/srcmeta/internal/backends"
	"github.com/srcmeta/srcmeta/internal/extraction"
)

// Test Plan for configuration:
// - Defaults validate and enable every tier
// - Validate rejects no-tier, bad-strategy, and non-positive limits
// - PipelineOptions preserves tier priority order
// - Loader works without a config file, reads one when present, and lets
//   environment variables win

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Tiers.Structural)
	assert.True(t, cfg.Merge.Enabled)
	assert.Equal(t, string(extraction.StrategyConfidenceWeighted), cfg.Merge.Strategy)
	assert.NotEmpty(t, cfg.Paths.Include)
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	noTiers := Default()
	noTiers.Tiers = TiersConfig{}
	assert.Error(t, noTiers.Validate())

	badStrategy := Default()
	badStrategy.Merge.Strategy = "majority_vote"
	assert.Error(t, badStrategy.Validate())

	badLimit := Default()
	badLimit.Limits.MaxContentBytes = 0
	assert.Error(t, badLimit.Validate())

	badWorkers := Default()
	badWorkers.Workers = -1
	assert.Error(t, badWorkers.Validate())
}

func TestPipelineOptions_TierOrder(t *testing.T) {
	t.Parallel()

	cfg := Default()
	opts := cfg.PipelineOptions()
	require.Len(t, opts.EnabledTiers, 3)
	assert.Equal(t, backends.TierStructural, opts.EnabledTiers[0])
	assert.Equal(t, backends.TierEnhancedPattern, opts.EnabledTiers[1])
	assert.Equal(t, backends.TierStandardPattern, opts.EnabledTiers[2])

	// Disabling a middle tier keeps the others in priority order.
	cfg.Tiers.Enhanced = false
	opts = cfg.PipelineOptions()
	require.Len(t, opts.EnabledTiers, 2)
	assert.Equal(t, backends.TierStructural, opts.EnabledTiers[0])
	assert.Equal(t, backends.TierStandardPattern, opts.EnabledTiers[1])
}

func TestLoader_NoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Workers, cfg.Workers)
	assert.True(t, cfg.Merge.Enabled)
}

func TestLoader_ReadsConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".srcmeta"), 0755))
	yml := []byte("workers: 9\nmerge:\n  strategy: fast_fail\ntiers:\n  structural: false\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".srcmeta", "config.yml"), yml, 0644))

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Workers)
	assert.Equal(t, "fast_fail", cfg.Merge.Strategy)
	assert.False(t, cfg.Tiers.Structural)
	// Unset keys inherit defaults.
	assert.True(t, cfg.Tiers.Enhanced)
	assert.Equal(t, Default().Limits.MaxLineLength, cfg.Limits.MaxLineLength)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".srcmeta"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".srcmeta", "config.yml"), []byte("workers: 2\n"), 0644))

	t.Setenv("SRCMETA_WORKERS", "7")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
}

func TestLoader_InvalidConfigRejected(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".srcmeta"), 0755))
	yml := []byte("merge:\n  strategy: not_a_strategy\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".srcmeta", "config.yml"), yml, 0644))

	_, err := NewLoader(dir).Load()
	assert.Error(t, err)
}

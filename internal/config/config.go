// Package config loads srcmeta configuration from file and environment.
package config

import (
	"fmt"

	"github.com/srcmeta/srcmeta/internal/backends"
	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/pipeline"
)

// Config is the complete srcmeta configuration.
// It can be loaded from .srcmeta/config.yml with environment overrides.
type Config struct {
	Tiers   TiersConfig   `yaml:"tiers" mapstructure:"tiers"`
	Merge   MergeConfig   `yaml:"merge" mapstructure:"merge"`
	Limits  LimitsConfig  `yaml:"limits" mapstructure:"limits"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Workers int           `yaml:"workers" mapstructure:"workers"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
}

// TiersConfig enables or disables individual extraction tiers.
// Priority order is fixed regardless of which tiers are enabled.
type TiersConfig struct {
	Structural bool `yaml:"structural" mapstructure:"structural"`
	Enhanced   bool `yaml:"enhanced" mapstructure:"enhanced"`
	Standard   bool `yaml:"standard" mapstructure:"standard"`
}

// MergeConfig selects merging behavior. With Enabled false, the first clean
// backend result wins and later tiers never run.
type MergeConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Strategy string `yaml:"strategy" mapstructure:"strategy"` // one of the four strategy names
}

// LimitsConfig bounds file content accepted into the pipeline.
type LimitsConfig struct {
	MaxContentBytes int `yaml:"max_content_bytes" mapstructure:"max_content_bytes"`
	MaxLineLength   int `yaml:"max_line_length" mapstructure:"max_line_length"`
}

// PathsConfig defines which files to extract and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"`
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`
}

// CacheConfig sizes the injected bounded caches.
type CacheConfig struct {
	PatternCapacity int `yaml:"pattern_capacity" mapstructure:"pattern_capacity"`
}

// StorageConfig locates the extraction database.
type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // empty means .srcmeta/srcmeta.db
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Tiers: TiersConfig{
			Structural: true,
			Enhanced:   true,
			Standard:   true,
		},
		Merge: MergeConfig{
			Enabled:  true,
			Strategy: string(extraction.StrategyConfidenceWeighted),
		},
		Limits: LimitsConfig{
			MaxContentBytes: 5 * 1024 * 1024,
			MaxLineLength:   10000,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.go", "**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
				"**/*.py", "**/*.rs", "**/*.c", "**/*.h", "**/*.cpp",
				"**/*.cc", "**/*.hpp", "**/*.java", "**/*.php", "**/*.rb",
			},
			Ignore: []string{
				"node_modules/**", "vendor/**", ".git/**", "dist/**",
				"build/**", "target/**", "__pycache__/**",
			},
		},
		Workers: 4,
		Cache: CacheConfig{
			PatternCapacity: 256,
		},
		Storage: StorageConfig{Path: ""},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if !c.Tiers.Structural && !c.Tiers.Enhanced && !c.Tiers.Standard {
		return fmt.Errorf("at least one tier must be enabled")
	}
	if !extraction.ValidStrategy(extraction.Strategy(c.Merge.Strategy)) {
		return fmt.Errorf("unknown merge strategy %q", c.Merge.Strategy)
	}
	if c.Limits.MaxContentBytes <= 0 {
		return fmt.Errorf("max_content_bytes must be positive")
	}
	if c.Limits.MaxLineLength <= 0 {
		return fmt.Errorf("max_line_length must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

// PipelineOptions maps the configuration onto orchestrator options,
// preserving tier priority order.
func (c *Config) PipelineOptions() pipeline.Options {
	var tiers []backends.Tier
	if c.Tiers.Structural {
		tiers = append(tiers, backends.TierStructural)
	}
	if c.Tiers.Enhanced {
		tiers = append(tiers, backends.TierEnhancedPattern)
	}
	if c.Tiers.Standard {
		tiers = append(tiers, backends.TierStandardPattern)
	}
	return pipeline.Options{
		EnabledTiers:    tiers,
		MergeEnabled:    c.Merge.Enabled,
		Strategy:        extraction.Strategy(c.Merge.Strategy),
		MaxContentBytes: c.Limits.MaxContentBytes,
		MaxLineLength:   c.Limits.MaxLineLength,
	}
}

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SRCMETA_*)
// 2. Config file (.srcmeta/config.yml or .srcmeta/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".srcmeta")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("SRCMETA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("tiers.structural")
	v.BindEnv("tiers.enhanced")
	v.BindEnv("tiers.standard")
	v.BindEnv("merge.enabled")
	v.BindEnv("merge.strategy")
	v.BindEnv("limits.max_content_bytes")
	v.BindEnv("limits.max_line_length")
	v.BindEnv("workers")
	v.BindEnv("cache.pattern_capacity")
	v.BindEnv("storage.path")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine: defaults plus env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers the Default() values with viper so partial config
// files inherit the rest.
func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("tiers.structural", def.Tiers.Structural)
	v.SetDefault("tiers.enhanced", def.Tiers.Enhanced)
	v.SetDefault("tiers.standard", def.Tiers.Standard)
	v.SetDefault("merge.enabled", def.Merge.Enabled)
	v.SetDefault("merge.strategy", def.Merge.Strategy)
	v.SetDefault("limits.max_content_bytes", def.Limits.MaxContentBytes)
	v.SetDefault("limits.max_line_length", def.Limits.MaxLineLength)
	v.SetDefault("paths.include", def.Paths.Include)
	v.SetDefault("paths.ignore", def.Paths.Ignore)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("cache.pattern_capacity", def.Cache.PatternCapacity)
	v.SetDefault("storage.path", def.Storage.Path)
}

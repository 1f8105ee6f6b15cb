package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/srcmeta/srcmeta/internal/backends"
	"github.com/srcmeta/srcmeta/internal/cache"
	"github.com/srcmeta/srcmeta/internal/config"
	"github.com/srcmeta/srcmeta/internal/pipeline"
	"github.com/srcmeta/srcmeta/internal/postprocess"
)

// stack is the wired extraction pipeline shared by the extract, watch, and
// mcp commands.
type stack struct {
	cfg      *config.Config
	rootDir  string
	patterns *cache.Bounded[string, *regexp.Regexp]
	orch     *pipeline.Orchestrator
	runner   *pipeline.Runner
	log      *slog.Logger
}

// buildStack loads configuration for rootDir and wires the pipeline.
func buildStack(rootDir string, logger *slog.Logger) (*stack, error) {
	cfg, err := config.NewLoader(rootDir).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	patterns, err := cache.NewBounded[string, *regexp.Regexp](cfg.Cache.PatternCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern cache: %w", err)
	}

	resolver, err := backends.NewResolver(patterns)
	if err != nil {
		patterns.Close()
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	orch := pipeline.NewOrchestrator(resolver, cfg.PipelineOptions(), logger)
	post := []pipeline.PostProcessor{
		postprocess.NewSecurityScanner(),
		postprocess.NewTokenEstimator(),
	}
	runner := pipeline.NewRunner(orch, cfg.Workers, post, logger)

	return &stack{
		cfg:      cfg,
		rootDir:  rootDir,
		patterns: patterns,
		orch:     orch,
		runner:   runner,
		log:      logger,
	}, nil
}

// Close releases the shared caches.
func (s *stack) Close() {
	s.patterns.Close()
}

// storagePath resolves the database location relative to the project root.
func (s *stack) storagePath() string {
	if s.cfg.Storage.Path != "" {
		if filepath.IsAbs(s.cfg.Storage.Path) {
			return s.cfg.Storage.Path
		}
		return filepath.Join(s.rootDir, s.cfg.Storage.Path)
	}
	return filepath.Join(s.rootDir, ".srcmeta", "srcmeta.db")
}

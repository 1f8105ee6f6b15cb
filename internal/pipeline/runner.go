package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// FileRecord is the final per-file output: the merged extraction plus
// post-processing annotations.
type FileRecord struct {
	Path          string                   `json:"path"`
	Language      lang.Language            `json:"language"`
	Result        *extraction.MergedResult `json:"result"`
	TokenEstimate int                      `json:"token_estimate,omitempty"`
	Unsupported   bool                     `json:"unsupported,omitempty"`
}

// PostProcessor annotates a completed file record. Post-processors run after
// the merge, in registration order.
type PostProcessor interface {
	Process(content []byte, record *FileRecord)
}

// Runner processes a file worklist concurrently. Each file's orchestration is
// an independent computation over its own content buffer, so files may run on
// any number of workers; within one file, tiers stay strictly sequential.
type Runner struct {
	orch    *Orchestrator
	workers int
	post    []PostProcessor
	onDone  func(path string)
	log     *slog.Logger
}

// NewRunner builds a runner over the orchestrator. workers <= 0 means one.
func NewRunner(orch *Orchestrator, workers int, post []PostProcessor, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		orch:    orch,
		workers: workers,
		post:    post,
		log:     logger.With("component", "runner"),
	}
}

// OnFileDone registers a callback invoked after each file completes. The
// callback may be invoked from multiple goroutines.
func (r *Runner) OnFileDone(fn func(path string)) {
	r.onDone = fn
}

// Run extracts every file and returns records in input order. Unsupported
// files (every tier unavailable or failed) produce a record flagged
// Unsupported rather than aborting the batch; only I/O and context errors
// stop the run.
func (r *Runner) Run(ctx context.Context, rootDir string, files []string) ([]*FileRecord, error) {
	records := make([]*FileRecord, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := r.runOne(ctx, rootDir, file)
			if err != nil {
				return err
			}
			records[i] = record
			if r.onDone != nil {
				r.onDone(file)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Runner) runOne(ctx context.Context, rootDir, file string) (*FileRecord, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	relPath := file
	if rootDir != "" {
		if rel, relErr := filepath.Rel(rootDir, file); relErr == nil {
			relPath = filepath.ToSlash(rel)
		}
	}

	language := lang.Detect(file)
	record := &FileRecord{Path: relPath, Language: language}

	result, err := r.orch.ParseOne(ctx, content, relPath, string(language))
	if err != nil {
		// Terminal per-file condition: record it and move on.
		r.log.Warn("file unsupported", "path", relPath, "error", err)
		record.Unsupported = true
		record.Result = &extraction.MergedResult{Result: *extraction.Failed("", err.Error())}
		return record, nil
	}
	record.Result = result

	for _, p := range r.post {
		p.Process(content, record)
	}
	return record, nil
}

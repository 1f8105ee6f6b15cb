package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/srcmeta/srcmeta/internal/discovery"
	"github.com/srcmeta/srcmeta/internal/storage"
	"github.com/srcmeta/srcmeta/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and re-extract changed files",
	Long: `Watch monitors the project tree and re-runs extraction for files as they
change. Changes are debounced, so a burst of saves produces one run.

Example:
  srcmeta watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	rootDir, err := resolveRoot()
	if err != nil {
		return err
	}
	logger := newLogger()

	st, err := buildStack(rootDir, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	fd, err := discovery.New(rootDir, st.cfg.Paths.Include, st.cfg.Paths.Ignore)
	if err != nil {
		return fmt.Errorf("invalid path patterns: %w", err)
	}

	dbPath := st.storagePath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	w, err := watcher.New(rootDir, fd.Matches, fd.IgnoresDir, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	logger.Info("watching for changes", "root", rootDir)
	err = w.Run(ctx, func(files []string) {
		extractBatch(ctx, st, store, rootDir, files)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// extractBatch re-extracts one debounced batch of changed files. Deleted
// files are skipped; per-file extraction problems are logged, never fatal.
func extractBatch(ctx context.Context, st *stack, store *storage.Store, rootDir string, files []string) {
	worklist := make([]string, 0, len(files))
	hashes := make(map[string]string, len(files))
	for _, rel := range files {
		abs := filepath.Join(rootDir, filepath.FromSlash(rel))
		content, err := os.ReadFile(abs)
		if err != nil {
			// Removed between event and batch.
			continue
		}
		worklist = append(worklist, abs)
		hashes[rel] = storage.HashContent(content)
	}
	if len(worklist) == 0 {
		return
	}

	records, err := st.runner.Run(ctx, rootDir, worklist)
	if err != nil {
		st.log.Warn("batch extraction failed", "error", err)
		return
	}
	for _, record := range records {
		if err := store.WriteRecord(record, hashes[record.Path]); err != nil {
			st.log.Warn("failed to store record", "path", record.Path, "error", err)
		}
	}
	st.log.Info("re-extracted changed files", "count", len(records))
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/srcmeta/srcmeta/internal/discovery"
	"github.com/srcmeta/srcmeta/internal/pipeline"
	"github.com/srcmeta/srcmeta/internal/storage"
)

var (
	quietFlag bool
	forceFlag bool
)

// extractReport is the JSON summary printed after a run.
type extractReport struct {
	RunID       string         `json:"run_id"`
	RootDir     string         `json:"root_dir"`
	Discovered  int            `json:"discovered"`
	Extracted   int            `json:"extracted"`
	Skipped     int            `json:"skipped"`
	Unsupported int            `json:"unsupported"`
	Qualities   map[string]int `json:"qualities"`
	Findings    int            `json:"security_findings"`
	Tokens      int            `json:"token_estimate"`
	DurationMs  int64          `json:"duration_ms"`
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract source metadata into the project database",
	Long: `Extract walks the project tree, runs every discovered source file through
the tiered extraction pipeline, and stores declarations, imports, and
per-file quality in .srcmeta/srcmeta.db.

Files whose content hash matches the stored extraction are skipped;
use --force to re-extract everything.

Examples:
  # Extract the current directory
  srcmeta extract

  # Re-extract everything, no progress bar
  srcmeta extract --force --quiet`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	extractCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Re-extract files even when unchanged")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling extraction...")
		cancel()
	}()

	rootDir, err := resolveRoot()
	if err != nil {
		return err
	}

	st, err := buildStack(rootDir, newLogger())
	if err != nil {
		return err
	}
	defer st.Close()

	fd, err := discovery.New(rootDir, st.cfg.Paths.Include, st.cfg.Paths.Ignore)
	if err != nil {
		return fmt.Errorf("invalid path patterns: %w", err)
	}
	files, err := fd.Discover()
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
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

	started := time.Now()
	worklist, hashes, skipped, err := filterUnchanged(store, rootDir, files, forceFlag)
	if err != nil {
		return err
	}

	progress := newExtractProgress(quietFlag, len(worklist))
	st.runner.OnFileDone(func(path string) { progress.fileDone() })

	records, err := st.runner.Run(ctx, rootDir, worklist)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	progress.finish()

	report := &extractReport{
		RunID:      uuid.NewString(),
		RootDir:    rootDir,
		Discovered: len(files),
		Skipped:    skipped,
		Qualities:  make(map[string]int),
		DurationMs: time.Since(started).Milliseconds(),
	}
	for _, record := range records {
		if err := store.WriteRecord(record, hashes[record.Path]); err != nil {
			return fmt.Errorf("failed to store %s: %w", record.Path, err)
		}
		tally(report, record)
	}
	report.DurationMs = time.Since(started).Milliseconds()

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// filterUnchanged drops files whose stored hash matches current content.
// Returns the worklist, the content hash per relative path, and the skip count.
func filterUnchanged(store *storage.Store, rootDir string, files []string, force bool) ([]string, map[string]string, int, error) {
	worklist := make([]string, 0, len(files))
	hashes := make(map[string]string, len(files))
	skipped := 0

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to read %s: %w", file, err)
		}
		rel := file
		if r, err := filepath.Rel(rootDir, file); err == nil {
			rel = filepath.ToSlash(r)
		}
		hash := storage.HashContent(content)
		hashes[rel] = hash

		if !force {
			stored, known, err := store.FileHash(rel)
			if err != nil {
				return nil, nil, 0, err
			}
			if known && stored == hash {
				skipped++
				continue
			}
		}
		worklist = append(worklist, file)
	}
	return worklist, hashes, skipped, nil
}

// tally folds one record into the report counters.
func tally(report *extractReport, record *pipeline.FileRecord) {
	report.Extracted++
	if record.Unsupported {
		report.Unsupported++
	}
	report.Qualities[string(record.Result.Quality)]++
	report.Findings += len(record.Result.SecurityFindings)
	report.Tokens += record.TokenEstimate
}

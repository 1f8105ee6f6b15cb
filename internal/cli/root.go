// Package cli implements the srcmeta command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootDirFlag string
	verbose     bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "srcmeta",
	Short: "srcmeta - source metadata extraction",
	Long: `srcmeta extracts declarations, imports, and docstrings from source code
across multiple languages. Structural parsers run first; pattern-based
backends fill in when parsing fails, and the results are merged with a
confidence score per file.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDirFlag, "root", "", "project root directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger builds the process logger. Verbose mode enables debug records;
// everything goes to stderr so stdout stays clean for command output.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveRoot picks the project root from the --root flag or the working
// directory.
func resolveRoot() (string, error) {
	if rootDirFlag != "" {
		return rootDirFlag, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return dir, nil
}

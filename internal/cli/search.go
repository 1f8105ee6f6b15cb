package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srcmeta/srcmeta/internal/search"
	"github.com/srcmeta/srcmeta/internal/storage"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search extracted declarations",
	Long: `Search queries the declarations stored by a previous extract run.
Names, signatures, and docstrings are full-text indexed; kind and
language support exact filters.

Examples:
  srcmeta search handler
  srcmeta search 'kind:class parse' --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 15, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	rootDir, err := resolveRoot()
	if err != nil {
		return err
	}
	st, err := buildStack(rootDir, newLogger())
	if err != nil {
		return err
	}
	defer st.Close()

	dbPath := st.storagePath()
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no extraction database at %s (run 'srcmeta extract' first)", dbPath)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	decls, err := store.ListDeclarations()
	if err != nil {
		return fmt.Errorf("failed to load declarations: %w", err)
	}
	index, err := search.NewIndex(decls)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	defer index.Close()

	hits, err := index.Search(args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(hits) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("%s:%d  %s %s  (%.2f)\n", hit.FilePath, hit.StartLine, hit.Kind, hit.Name, hit.Score)
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srcmeta/srcmeta/internal/depgraph"
	"github.com/srcmeta/srcmeta/internal/storage"
)

var (
	graphDOT        bool
	graphCycles     bool
	graphDependents string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the import graph of extracted files",
	Long: `Graph builds a directed import graph from the stored extraction and
reports per-file dependencies, reverse dependencies, or import cycles.

Examples:
  srcmeta graph
  srcmeta graph --cycles
  srcmeta graph --dependents src/util.py
  srcmeta graph --dot > imports.dot`,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().BoolVar(&graphDOT, "dot", false, "Emit the graph in Graphviz DOT format")
	graphCmd.Flags().BoolVar(&graphCycles, "cycles", false, "List import cycles only")
	graphCmd.Flags().StringVar(&graphDependents, "dependents", "", "List files importing the given target")
}

func runGraph(cmd *cobra.Command, args []string) error {
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

	imports, err := store.ListImports()
	if err != nil {
		return fmt.Errorf("failed to load imports: %w", err)
	}
	dg, err := depgraph.Build(imports)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	switch {
	case graphDOT:
		return dg.WriteDOT(os.Stdout)

	case graphCycles:
		cycles, err := dg.Cycles()
		if err != nil {
			return err
		}
		if len(cycles) == 0 {
			fmt.Println("No import cycles.")
			return nil
		}
		for i, cycle := range cycles {
			fmt.Printf("cycle %d: %s\n", i+1, strings.Join(cycle, " -> "))
		}
		return nil

	case graphDependents != "":
		deps := dg.Dependents(graphDependents)
		if len(deps) == 0 {
			fmt.Printf("Nothing imports %s.\n", graphDependents)
			return nil
		}
		for _, d := range deps {
			fmt.Println(d)
		}
		return nil

	default:
		for _, node := range dg.Nodes() {
			if node.External {
				continue
			}
			deps := dg.Dependencies(node.ID)
			if len(deps) == 0 {
				fmt.Println(node.ID)
				continue
			}
			fmt.Printf("%s -> %s\n", node.ID, strings.Join(deps, ", "))
		}
		return nil
	}
}

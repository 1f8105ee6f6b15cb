package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/srcmeta/srcmeta/internal/mcp"
	"github.com/srcmeta/srcmeta/internal/storage"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve extraction and search over MCP on stdio",
	Long: `Mcp starts a Model Context Protocol server on stdio exposing two tools:
srcmeta_extract runs the extraction pipeline over inline source, and
srcmeta_search queries declarations from a previous extract run.

Intended to be launched by an MCP client, not interactively.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
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

	// Search is only available once a database exists.
	var store *storage.Store
	if _, err := os.Stat(st.storagePath()); err == nil {
		store, err = storage.Open(st.storagePath())
		if err != nil {
			return err
		}
		defer store.Close()
	}

	server := mcp.NewServer(st.orch, store, Version, logger)
	return server.Serve(cmd.Context())
}

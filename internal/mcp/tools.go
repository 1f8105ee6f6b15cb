package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
	"github.com/srcmeta/srcmeta/internal/pipeline"
	"github.com/srcmeta/srcmeta/internal/search"
	"github.com/srcmeta/srcmeta/internal/storage"
)

// extractResponse is the JSON payload returned by srcmeta_extract.
type extractResponse struct {
	Path     string                   `json:"path"`
	Language string                   `json:"language"`
	Result   *extraction.MergedResult `json:"result"`
}

// searchResponse is the JSON payload returned by srcmeta_search.
type searchResponse struct {
	Results []search.Hit `json:"results"`
	Total   int          `json:"total"`
}

// AddExtractTool registers srcmeta_extract, which runs the full extraction
// pipeline over inline source content.
func AddExtractTool(s *server.MCPServer, orch *pipeline.Orchestrator) {
	tool := mcp.NewTool(
		"srcmeta_extract",
		mcp.WithDescription("Extract declarations, imports, and docstrings from source code. Runs structural parsing with pattern-based fallbacks and returns merged metadata with a confidence score."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path used for language detection (e.g. 'src/app.py')")),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Source code to extract metadata from")),
	)

	s.AddTool(tool, createExtractHandler(orch))
}

func createExtractHandler(orch *pipeline.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, ok := argsMap["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}
		content, ok := argsMap["content"].(string)
		if !ok {
			return mcp.NewToolResultError("content parameter is required"), nil
		}

		tag := lang.Detect(path)
		outcome, err := orch.ParseOne(ctx, []byte(content), path, string(tag))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
		}

		jsonData, err := json.Marshal(&extractResponse{
			Path:     path,
			Language: string(tag),
			Result:   outcome,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// AddSearchTool registers srcmeta_search, which queries previously extracted
// declarations from the metadata store.
func AddSearchTool(s *server.MCPServer, store *storage.Store) {
	tool := mcp.NewTool(
		"srcmeta_search",
		mcp.WithDescription("Search extracted declarations by name, signature, or docstring. Requires a prior 'srcmeta extract' run against the project."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Query string (e.g. 'handler', 'kind:class parse')")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 15)")),
	)

	s.AddTool(tool, createSearchHandler(store))
}

func createSearchHandler(store *storage.Store) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		query, ok := argsMap["query"].(string)
		if !ok || query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		limit := 15
		if v, ok := argsMap["limit"].(float64); ok {
			limit = int(v)
		}

		decls, err := store.ListDeclarations()
		if err != nil {
			return nil, fmt.Errorf("failed to load declarations: %w", err)
		}
		index, err := search.NewIndex(decls)
		if err != nil {
			return nil, fmt.Errorf("failed to build index: %w", err)
		}
		defer index.Close()

		hits, err := index.Search(query, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		jsonData, err := json.Marshal(&searchResponse{Results: hits, Total: len(hits)})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

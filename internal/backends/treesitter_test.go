package backends

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// Test Plan for the tree-sitter structural backend:
// - Python: classes with method children, docstrings, imports
// - TypeScript: interfaces, functions, classes with method children
// - Syntax errors degrade to partial quality instead of failing
// - Validate rejects an empty grammar

func TestTreeSitter_Python(t *testing.T) {
	t.Parallel()

	content, err := os.ReadFile("../../testdata/code/python/simple.py")
	require.NoError(t, err)

	backend := newTreeSitterBackend(pythonGrammar())
	result, err := backend.Extract(context.Background(), content, "simple.py")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, extraction.QualityFull, result.Quality)
	assert.Equal(t, "treesitter-python", result.Backend)
	assert.Len(t, result.Imports, 3)
	assert.Contains(t, result.Imports, "import os")
	assert.Contains(t, result.Imports, "from typing import Optional")

	loadConfig := declByName(t, result.Declarations, "load_config")
	assert.Equal(t, extraction.KindFunction, loadConfig.Kind)
	assert.Equal(t, "Load configuration from a JSON file.", loadConfig.Docstring)
	assert.Contains(t, loadConfig.Signature, "def load_config")

	server := declByName(t, result.Declarations, "Server")
	assert.Equal(t, extraction.KindClass, server.Kind)
	assert.Equal(t, "A minimal request server.", server.Docstring)
	assert.Greater(t, server.EndLine, server.StartLine)

	require.Len(t, server.Children, 3)
	for _, child := range server.Children {
		assert.Equal(t, extraction.KindMethod, child.Kind, "nested functions become methods")
	}
	start := declByName(t, server.Children, "start")
	assert.Equal(t, "Start listening on the configured port.", start.Docstring)
}

func TestTreeSitter_TypeScript(t *testing.T) {
	t.Parallel()

	content, err := os.ReadFile("../../testdata/code/typescript/simple.ts")
	require.NoError(t, err)

	backend := newTreeSitterBackend(typescriptGrammar(lang.TypeScript))
	result, err := backend.Extract(context.Background(), content, "simple.ts")
	require.NoError(t, err)

	assert.Equal(t, extraction.QualityFull, result.Quality)
	assert.Len(t, result.Imports, 2)

	config := declByName(t, result.Declarations, "Config")
	assert.Equal(t, extraction.KindInterface, config.Kind)

	loadConfig := declByName(t, result.Declarations, "loadConfig")
	assert.Equal(t, extraction.KindFunction, loadConfig.Kind)

	server := declByName(t, result.Declarations, "Server")
	assert.Equal(t, extraction.KindClass, server.Kind)
	require.NotEmpty(t, server.Children)
	start := declByName(t, server.Children, "start")
	assert.Equal(t, extraction.KindMethod, start.Kind)
}

func TestTreeSitter_PartialOnSyntaxError(t *testing.T) {
	t.Parallel()

	src := []byte("def broken(:\n    pass\n\ndef fine():\n    return 1\n")
	backend := newTreeSitterBackend(pythonGrammar())

	result, err := backend.Extract(context.Background(), src, "broken.py")
	require.NoError(t, err, "recoverable syntax errors must not fail the backend")

	assert.Equal(t, extraction.QualityPartial, result.Quality)
	assert.NotEmpty(t, result.Error)
	assert.Contains(t, result.MissedFeatures, "error_regions")
}

func TestTreeSitter_Validate(t *testing.T) {
	t.Parallel()

	assert.True(t, newTreeSitterBackend(pythonGrammar()).Validate())
	assert.False(t, newTreeSitterBackend(grammar{}).Validate())
}

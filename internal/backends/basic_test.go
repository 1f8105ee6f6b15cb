package backends

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/lang"
)

// Test Plan for the basic backend:
// - Finds keyword-introduced declarations at line starts
// - Yields basic quality and reports everything richer as missed
// - Strips trailing punctuation from names
// - Never errors, even on garbage input

func TestBasicBackend_Go(t *testing.T) {
	t.Parallel()

	src := []byte(`package demo

func run() {}
type Config struct {
const answer = 42
var counter int
`)
	backend := newBasicBackend(lang.Go)
	result, err := backend.Extract(context.Background(), src, "demo.go")
	require.NoError(t, err)

	assert.Equal(t, extraction.QualityBasic, result.Quality)
	assert.Equal(t, "basic-go", result.Backend)
	assert.Empty(t, result.Imports)
	assert.Contains(t, result.MissedFeatures, "imports")
	assert.Contains(t, result.MissedFeatures, "docstrings")
	assert.Contains(t, result.MissedFeatures, "block_extents")

	run := declByName(t, result.Declarations, "run")
	assert.Equal(t, extraction.KindFunction, run.Kind)
	assert.Empty(t, run.Signature)
	assert.Empty(t, run.Docstring)

	config := declByName(t, result.Declarations, "Config")
	assert.Equal(t, extraction.KindType, config.Kind)

	answer := declByName(t, result.Declarations, "answer")
	assert.Equal(t, extraction.KindConstant, answer.Kind)
}

func TestBasicBackend_NameStripping(t *testing.T) {
	t.Parallel()

	src := []byte("def compute(x):\nclass Thing:\n")
	backend := newBasicBackend(lang.Python)
	result, err := backend.Extract(context.Background(), src, "t.py")
	require.NoError(t, err)

	compute := declByName(t, result.Declarations, "compute")
	assert.Equal(t, extraction.KindFunction, compute.Kind)
	declByName(t, result.Declarations, "Thing")
}

func TestBasicBackend_GarbageInput(t *testing.T) {
	t.Parallel()

	backend := newBasicBackend(lang.Ruby)
	result, err := backend.Extract(context.Background(), []byte("\x00\xff garbage ###"), "junk.rb")
	require.NoError(t, err)
	assert.Empty(t, result.Declarations)
	assert.Equal(t, extraction.QualityBasic, result.Quality)
}

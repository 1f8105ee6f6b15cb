package depgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the import graph:
// - Build marks scanned files internal and unresolved imports external
// - Dependencies and Dependents answer both directions of an edge
// - Self-imports are dropped
// - Cycles reports mutually-importing files and nothing else
// - WriteDOT emits Graphviz output containing every vertex

func buildTestGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := Build(map[string][]string{
		"src/app.py":  {"os", "src/util.py"},
		"src/util.py": {"json"},
		"src/main.py": {"src/app.py", "src/util.py"},
	})
	require.NoError(t, err)
	return g
}

func TestBuild_InternalAndExternalNodes(t *testing.T) {
	t.Parallel()

	g := buildTestGraph(t)
	byID := make(map[string]bool)
	for _, n := range g.Nodes() {
		byID[n.ID] = n.External
	}
	require.Len(t, byID, 5)
	assert.False(t, byID["src/app.py"])
	assert.False(t, byID["src/util.py"])
	assert.False(t, byID["src/main.py"])
	assert.True(t, byID["os"])
	assert.True(t, byID["json"])
}

func TestDependenciesAndDependents(t *testing.T) {
	t.Parallel()

	g := buildTestGraph(t)
	assert.ElementsMatch(t, []string{"os", "src/util.py"}, g.Dependencies("src/app.py"))
	assert.ElementsMatch(t, []string{"src/app.py", "src/main.py"}, g.Dependents("src/util.py"))
	assert.Empty(t, g.Dependents("src/main.py"), "nothing imports the entry point")
	assert.Empty(t, g.Dependencies("unknown.py"))
}

func TestBuild_DropsSelfImport(t *testing.T) {
	t.Parallel()

	g, err := Build(map[string][]string{"a.py": {"a.py", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, g.Dependencies("a.py"))
}

func TestCycles(t *testing.T) {
	t.Parallel()

	g, err := Build(map[string][]string{
		"a.py": {"b.py"},
		"b.py": {"a.py"},
		"c.py": {"a.py"},
	})
	require.NoError(t, err)

	cycles, err := g.Cycles()
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a.py", "b.py"}, cycles[0])
}

func TestCycles_AcyclicGraph(t *testing.T) {
	t.Parallel()

	g := buildTestGraph(t)
	cycles, err := g.Cycles()
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestWriteDOT(t *testing.T) {
	t.Parallel()

	g := buildTestGraph(t)
	var buf strings.Builder
	require.NoError(t, g.WriteDOT(&buf))

	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "src/app.py")
	assert.Contains(t, out, "os")
}

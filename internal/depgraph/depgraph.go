// Package depgraph builds a directed import graph over extracted files.
package depgraph

import (
	"fmt"
	"io"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Node is a vertex in the import graph. Internal nodes correspond to files
// in the scanned tree; external nodes are imports that resolve to no file.
type Node struct {
	ID       string `json:"id"`
	External bool   `json:"external"`
}

// Graph holds the import graph plus reverse indexes for O(1) lookups.
type Graph struct {
	g graph.Graph[string, *Node]

	dependencies map[string][]string
	dependents   map[string][]string
	nodes        map[string]*Node
}

// Build constructs the graph from a file -> imports mapping.
func Build(imports map[string][]string) (*Graph, error) {
	dg := &Graph{
		g:            graph.New(func(n *Node) string { return n.ID }, graph.Directed()),
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
		nodes:        make(map[string]*Node),
	}

	addVertex := func(id string, external bool) error {
		if _, ok := dg.nodes[id]; ok {
			return nil
		}
		node := &Node{ID: id, External: external}
		if err := dg.g.AddVertex(node); err != nil {
			return fmt.Errorf("failed to add node %s: %w", id, err)
		}
		dg.nodes[id] = node
		return nil
	}

	// Files first so imports that match a file path stay internal.
	files := make([]string, 0, len(imports))
	for file := range imports {
		files = append(files, file)
		if err := addVertex(file, false); err != nil {
			return nil, err
		}
	}
	sort.Strings(files)

	for _, file := range files {
		for _, imp := range imports[file] {
			if imp == file {
				continue
			}
			if err := addVertex(imp, dg.nodes[imp] == nil); err != nil {
				return nil, err
			}
			if err := dg.g.AddEdge(file, imp); err != nil && err != graph.ErrEdgeAlreadyExists {
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", file, imp, err)
			}
			dg.dependencies[file] = append(dg.dependencies[file], imp)
			dg.dependents[imp] = append(dg.dependents[imp], file)
		}
	}

	return dg, nil
}

// Dependencies returns the direct imports of a file.
func (dg *Graph) Dependencies(id string) []string {
	return append([]string(nil), dg.dependencies[id]...)
}

// Dependents returns the files that import the given target.
func (dg *Graph) Dependents(id string) []string {
	return append([]string(nil), dg.dependents[id]...)
}

// Nodes returns all vertices sorted by id.
func (dg *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(dg.nodes))
	for _, n := range dg.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Cycles returns the strongly connected components with more than one
// member, i.e. the import cycles.
func (dg *Graph) Cycles() ([][]string, error) {
	sccs, err := graph.StronglyConnectedComponents(dg.g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute components: %w", err)
	}
	var cycles [][]string
	for _, scc := range sccs {
		if len(scc) > 1 {
			sort.Strings(scc)
			cycles = append(cycles, scc)
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles, nil
}

// WriteDOT renders the graph in Graphviz DOT format.
func (dg *Graph) WriteDOT(w io.Writer) error {
	return draw.DOT(dg.g, w)
}

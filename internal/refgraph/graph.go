// Package refgraph builds the static reference graph of a grid's formula
// cells. It supports cycle detection, topological ordering and resolution
// levels, all computed from the raw formula bodies without evaluating them.
package refgraph

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/gridcalc/internal/grid"
)

// Node is a cell participating in the reference graph.
type Node struct {
	// ID is the cell label (e.g. "B2").
	ID string
	// Formula reports whether the cell holds a formula; referenced
	// literal cells appear in the graph as non-formula nodes.
	Formula bool
}

// Graph is a directed graph of cell references. Unlike an evaluation pass
// it may contain cycles; HasCycle reports them without resolving anything.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // referenced cell -> referencing cells
	parents map[string][]string // referencing cell -> referenced cells
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// FromGrid builds the reference graph of every formula cell in the grid.
// References that cannot be extracted from a malformed body are skipped;
// the evaluator reports those per-cell at evaluation time.
func FromGrid(g *grid.Grid) *Graph {
	rg := New()
	for _, f := range g.Formulas() {
		rg.AddNode(f.Coord.Label(), true)
	}
	for _, f := range g.Formulas() {
		label := f.Coord.Label()
		for _, ref := range extractRefs(f.Body, g.Rows, g.Cols) {
			refLabel := ref.Label()
			rg.AddNode(refLabel, grid.Classify(g.Raw(ref)) == grid.KindFormula)
			if err := rg.AddEdge(refLabel, label); err != nil {
				continue
			}
		}
	}
	return rg
}

// AddNode adds a cell to the graph. Adding an existing node upgrades its
// formula flag but never downgrades it.
func (g *Graph) AddNode(id string, formula bool) {
	if n, ok := g.nodes[id]; ok {
		n.Formula = n.Formula || formula
		return
	}
	g.nodes[id] = &Node{ID: id, Formula: formula}
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge records that childID's formula references parentID. Self-loops
// are legal here: a self-referencing formula is a one-cell cycle.
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, ok := g.nodes[parentID]; !ok {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, ok := g.nodes[childID]; !ok {
		return fmt.Errorf("child node %q does not exist", childID)
	}

	if !contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// Parents returns the cells referenced by id.
func (g *Graph) Parents(id string) []string {
	return g.parents[id]
}

// Children returns the cells whose formulas reference id.
func (g *Graph) Children(id string) []string {
	return g.edges[id]
}

// Nodes returns all nodes sorted by label for deterministic output.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// NodeCount returns the number of cells in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of references in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle reports whether the graph contains a reference cycle, along
// with one such cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// TopologicalSort returns cells in resolution order (referenced cells
// before the formulas that use them). Fails if the graph has a cycle.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("reference cycle: %v", cyclePath)
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, parentID := range g.parents[id] {
			visit(parentID)
		}
		result = append(result, g.nodes[id])
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		visit(id)
	}

	return result, nil
}

// Levels groups cells by resolution depth: level 0 cells reference nothing,
// level N cells only reference cells at lower levels. Fails on a cycle.
func (g *Graph) Levels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("reference cycle: %v", cyclePath)
	}

	assigned := make(map[string]int)

	var level func(id string) int
	level = func(id string) int {
		if l, ok := assigned[id]; ok {
			return l
		}

		parents := g.parents[id]
		if len(parents) == 0 {
			assigned[id] = 0
			return 0
		}

		maxParent := 0
		for _, parentID := range parents {
			if pl := level(parentID); pl > maxParent {
				maxParent = pl
			}
		}
		assigned[id] = maxParent + 1
		return maxParent + 1
	}

	maxLevel := 0
	for id := range g.nodes {
		if l := level(id); l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]string, maxLevel+1)
	for id, l := range assigned {
		levels[l] = append(levels[l], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}

	return levels, nil
}

// Roots returns cells that reference nothing.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns cells no formula references.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// extractRefs scans a formula body for cell references within the grid's
// reference range. Row bounds are not checked here; out-of-range rows are
// an evaluation-time error, not a graph edge.
func extractRefs(body string, rows, cols int) []grid.Coord {
	var refs []grid.Coord
	for i := 0; i < len(body); {
		ch := body[i]
		if grid.IsRefStart(ch, cols) {
			col := grid.ColByChar(ch)
			row := 0
			j := i + 1
			for ; j < len(body) && body[j] >= '0' && body[j] <= '9'; j++ {
				row = row*10 + int(body[j]-'0')
			}
			i = j
			if row >= 1 && row <= rows {
				refs = append(refs, grid.Coord{Row: row - 1, Col: col})
			}
			continue
		}
		i++
	}
	return refs
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

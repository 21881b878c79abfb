package refgraph

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/leapstack-labs/gridcalc/internal/grid"
)

func loadGrid(t *testing.T, input string) *grid.Grid {
	t.Helper()
	g, err := grid.Read(strings.NewReader(input), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("read grid: %v", err)
	}
	return g
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := New()
	g.AddNode("A1", false)
	g.AddNode("B1", true)

	if err := g.AddEdge("A1", "B1"); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}

	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}

	children := g.Children("A1")
	if len(children) != 1 || children[0] != "B1" {
		t.Errorf("Children(A1) = %v, want [B1]", children)
	}
	parents := g.Parents("B1")
	if len(parents) != 1 || parents[0] != "A1" {
		t.Errorf("Parents(B1) = %v, want [A1]", parents)
	}
}

func TestGraph_AddEdgeMissingNode(t *testing.T) {
	g := New()
	g.AddNode("A1", false)

	if err := g.AddEdge("A1", "B1"); err == nil {
		t.Error("expected error for missing child node")
	}
	if err := g.AddEdge("B1", "A1"); err == nil {
		t.Error("expected error for missing parent node")
	}
}

func TestGraph_AddNodeUpgradesFormulaFlag(t *testing.T) {
	g := New()
	g.AddNode("A1", false)
	g.AddNode("A1", true)
	g.AddNode("A1", false)

	nodes := g.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	if !nodes[0].Formula {
		t.Error("formula flag should not downgrade")
	}
}

func TestGraph_DuplicateEdgeIgnored(t *testing.T) {
	g := New()
	g.AddNode("A1", false)
	g.AddNode("B1", true)
	_ = g.AddEdge("A1", "B1")
	_ = g.AddEdge("A1", "B1")

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
}

func TestFromGrid(t *testing.T) {
	g := loadGrid(t, "2\t2\n12\t=A1+A2\n3\t'x\n")
	rg := FromGrid(g)

	// B1 plus the two literal cells it references.
	if rg.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", rg.NodeCount())
	}
	if rg.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", rg.EdgeCount())
	}

	parents := rg.Parents("B1")
	if len(parents) != 2 {
		t.Errorf("Parents(B1) = %v, want [A1 A2]", parents)
	}
}

func TestFromGrid_SkipsOutOfRangeRows(t *testing.T) {
	g := loadGrid(t, "1\t2\n=A5\t1\n")
	rg := FromGrid(g)

	if rg.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", rg.EdgeCount())
	}
}

func TestGraph_HasCycle(t *testing.T) {
	g := loadGrid(t, "3\t1\n=A2\n=A3\n=A1\n")
	rg := FromGrid(g)

	hasCycle, path := rg.HasCycle()
	if !hasCycle {
		t.Fatal("expected a cycle")
	}
	if len(path) < 2 || path[0] != path[len(path)-1] {
		t.Errorf("cycle path should start and end on the same cell: %v", path)
	}
}

func TestGraph_SelfLoopIsCycle(t *testing.T) {
	g := loadGrid(t, "1\t1\n=A1\n")
	rg := FromGrid(g)

	hasCycle, path := rg.HasCycle()
	if !hasCycle {
		t.Fatal("expected a self-reference cycle")
	}
	if len(path) != 2 || path[0] != "A1" || path[1] != "A1" {
		t.Errorf("cycle path = %v, want [A1 A1]", path)
	}
}

func TestGraph_NoCycle(t *testing.T) {
	g := loadGrid(t, "1\t3\n1\t=A1\t=B1\n")
	rg := FromGrid(g)

	if hasCycle, path := rg.HasCycle(); hasCycle {
		t.Errorf("unexpected cycle: %v", path)
	}
}

func TestGraph_TopologicalSort(t *testing.T) {
	g := loadGrid(t, "1\t3\n1\t=A1\t=B1\n")
	rg := FromGrid(g)

	sorted, err := rg.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort failed: %v", err)
	}
	if len(sorted) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(sorted))
	}

	pos := make(map[string]int)
	for i, n := range sorted {
		pos[n.ID] = i
	}
	if pos["A1"] > pos["B1"] || pos["B1"] > pos["C1"] {
		t.Errorf("wrong resolution order: %v", sorted)
	}
}

func TestGraph_TopologicalSortCycle(t *testing.T) {
	g := loadGrid(t, "2\t1\n=A2\n=A1\n")
	rg := FromGrid(g)

	if _, err := rg.TopologicalSort(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_Levels(t *testing.T) {
	g := loadGrid(t, "1\t4\n1\t2\t=A1+B1\t=C1\n")
	rg := FromGrid(g)

	levels, err := rg.Levels()
	if err != nil {
		t.Fatalf("Levels failed: %v", err)
	}
	want := [][]string{{"A1", "B1"}, {"C1"}, {"D1"}}
	if len(levels) != len(want) {
		t.Fatalf("got %d levels, want %d", len(levels), len(want))
	}
	for i := range want {
		if len(levels[i]) != len(want[i]) {
			t.Errorf("level %d = %v, want %v", i, levels[i], want[i])
			continue
		}
		for j := range want[i] {
			if levels[i][j] != want[i][j] {
				t.Errorf("level %d = %v, want %v", i, levels[i], want[i])
				break
			}
		}
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := loadGrid(t, "1\t3\n1\t=A1\t=B1\n")
	rg := FromGrid(g)

	roots := rg.Roots()
	if len(roots) != 1 || roots[0] != "A1" {
		t.Errorf("Roots = %v, want [A1]", roots)
	}
	leaves := rg.Leaves()
	if len(leaves) != 1 || leaves[0] != "C1" {
		t.Errorf("Leaves = %v, want [C1]", leaves)
	}
}

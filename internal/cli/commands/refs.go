package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/gridcalc/internal/grid"
	"github.com/leapstack-labs/gridcalc/internal/refgraph"
	"github.com/spf13/cobra"
)

// NewRefsCommand creates the refs command.
func NewRefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs <file>",
		Short: "Show the reference graph of a grid file",
		Long: `Show which cells each formula references, grouped by resolution level:
level 0 cells reference nothing, level N cells only reference cells at
lower levels. Reference cycles are reported without evaluating anything.`,
		Example: `  # Show the reference graph
  gridcalc refs sheet.grid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefs(cmd, args[0])
		},
	}

	return cmd
}

func runRefs(cmd *cobra.Command, path string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open grid file: %w", err)
	}
	g, err := grid.Read(f, cmdCtx.Logger)
	f.Close()
	if err != nil {
		return err
	}

	rg := refgraph.FromGrid(g)

	r.Header(fmt.Sprintf("Reference graph: %d cells, %d references", rg.NodeCount(), rg.EdgeCount()))
	r.Println()

	if hasCycle, cyclePath := rg.HasCycle(); hasCycle {
		r.Printf("Cycle detected: %s\n", strings.Join(cyclePath, " -> "))
		r.Println("Cells on the cycle will evaluate to #E_CROSS_REF.")
		r.Println()
	} else {
		levels, err := rg.Levels()
		if err != nil {
			return fmt.Errorf("failed to compute resolution levels: %w", err)
		}
		for i, level := range levels {
			r.Printf("Level %d: %s\n", i, strings.Join(level, ", "))
		}
		r.Println()
	}

	for _, n := range rg.Nodes() {
		if !n.Formula {
			continue
		}
		deps := rg.Parents(n.ID)
		if len(deps) == 0 {
			r.Printf("  %s\n", n.ID)
			continue
		}
		r.Printf("  %s <- %s\n", n.ID, strings.Join(deps, ", "))
	}

	return nil
}

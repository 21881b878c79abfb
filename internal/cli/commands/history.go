package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/gridcalc/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past evaluation runs",
		Long: `List evaluation runs recorded in the run-history database, newest first.

History is written by eval when a state path is configured; disable it
with --state "".`,
		Example: `  # Show the last 20 runs
  gridcalc history

  # Show the last 5 runs as JSON
  gridcalc history -n 5 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if cmdCtx.Cfg.StatePath == "" {
		return fmt.Errorf("run history is disabled (empty state path)")
	}

	store, cleanup, err := openStore(cmdCtx.Cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		r.Println("No runs recorded.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"WHEN", "FILE", "SIZE", "FORMULAS", "ERRORS", "DURATION"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.CreatedAt.Local().Format(time.DateTime),
			run.File,
			fmt.Sprintf("%dx%d", run.Rows, run.Cols),
			run.FormulaCells,
			run.ErrorCells,
			fmt.Sprintf("%dms", run.DurationMS),
		})
	}
	t.Render()
	return nil
}

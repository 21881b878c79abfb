package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/gridcalc/internal/eval"
	"github.com/leapstack-labs/gridcalc/internal/grid"
	"github.com/leapstack-labs/gridcalc/internal/state"
	"github.com/spf13/cobra"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "eval <file>",
		Short: "Evaluate a grid file and print the resolved grid",
		Long: `Evaluate every formula cell of a tab-delimited grid file and print the
resolved grid. The first line of the file declares the row and column
counts; each following line holds one row of tab-separated cells.

A failing formula shows its error marker (e.g. #E_CROSS_REF) in its own
cell; all other cells still evaluate.

Output adapts to environment:
  - Terminal: styled table
  - Piped/Scripted: plain tab-delimited rows

Use --output to override: auto, plain, table, markdown, json`,
		Example: `  # Evaluate a grid
  gridcalc eval sheet.grid

  # Re-evaluate whenever the file changes
  gridcalc eval sheet.grid --watch

  # Machine-readable output with per-cell errors
  gridcalc eval sheet.grid --output json

  # Fail the invocation when any cell holds an error marker
  gridcalc eval sheet.grid --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args[0], watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-evaluate when the file changes")

	return cmd
}

func runEval(cmd *cobra.Command, path string, watch bool) error {
	cmdCtx := NewCommandContext(cmd)
	if watch {
		return watchEval(cmd, cmdCtx, path)
	}
	return evalOnce(cmdCtx, path)
}

// evalOnce runs one full load-evaluate-render pass over the grid file.
func evalOnce(cmdCtx *CommandContext, path string) error {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open grid file: %w", err)
	}
	g, err := grid.Read(f, cmdCtx.Logger)
	f.Close()
	if err != nil {
		return err
	}

	ev := eval.New(g, cmdCtx.Logger)
	ev.Run()

	rows := g.ResolvedRows(ev)
	if err := renderGrid(cmdCtx.Renderer, g, rows); err != nil {
		return err
	}

	elapsed := time.Since(start)
	errCells := ev.ErrorCells()
	cmdCtx.Logger.Debug("evaluation complete",
		"rows", g.Rows, "cols", g.Cols,
		"formulas", ev.Stats().Formulas,
		"errors", errCells,
		"elapsed", elapsed.Round(time.Millisecond))

	recordRun(cmdCtx, path, g, ev, elapsed)

	if cmdCtx.Cfg.Strict && errCells > 0 {
		return fmt.Errorf("%d cells evaluated to an error marker", errCells)
	}
	return nil
}

// recordRun appends the run to the history store. History failures are
// warnings: they never fail an evaluation that already rendered.
func recordRun(cmdCtx *CommandContext, path string, g *grid.Grid, ev *eval.Evaluator, elapsed time.Duration) {
	store, cleanup, err := openStore(cmdCtx.Cfg)
	if err != nil {
		cmdCtx.Logger.Warn("run history unavailable", "error", err)
		return
	}
	if store == nil {
		return
	}
	defer cleanup()

	run := &state.Run{
		File:         path,
		Rows:         g.Rows,
		Cols:         g.Cols,
		FormulaCells: ev.Stats().Formulas,
		ErrorCells:   ev.ErrorCells(),
		DurationMS:   elapsed.Milliseconds(),
	}
	if err := store.RecordRun(run); err != nil {
		cmdCtx.Logger.Warn("failed to record run", "error", err)
	}
}

// watchEval evaluates once, then re-runs the whole pass on every change to
// the file. This is batch re-evaluation of a fresh grid, not incremental
// recalculation.
func watchEval(cmd *cobra.Command, cmdCtx *CommandContext, path string) error {
	if err := evalOnce(cmdCtx, path); err != nil {
		cmdCtx.Logger.Error("evaluation failed", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors replace files on save, which drops
	// a watch placed on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	cmdCtx.Logger.Info("watching for changes", "file", path)

	var debounceTimer *time.Timer
	ctx := cmd.Context()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				cmdCtx.Logger.Debug("file changed, re-evaluating", "file", path)
				if err := evalOnce(cmdCtx, path); err != nil {
					cmdCtx.Logger.Error("evaluation failed", "error", err)
				}
			})

		case err := <-watcher.Errors:
			cmdCtx.Logger.Error("watcher error", "error", err)
		}
	}
}

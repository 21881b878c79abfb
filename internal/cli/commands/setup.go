package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/gridcalc/internal/cli/config"
	"github.com/leapstack-labs/gridcalc/internal/cli/output"
	"github.com/leapstack-labs/gridcalc/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's
// configuration and context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration. It uses
// config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	statePath := os.Getenv("GRIDCALC_STATE_PATH")
	if statePath == "" {
		statePath = config.DefaultStateFile
	}

	return &config.Config{
		StatePath:    statePath,
		OutputFormat: config.DefaultOutput,
		Verbose:      os.Getenv("GRIDCALC_VERBOSE") == "true",
	}
}

// openStore opens the run-history store, creating its directory and schema
// as needed. Returns a nil store when history is disabled.
func openStore(cfg *config.Config) (state.Store, func(), error) {
	if cfg.StatePath == "" {
		return nil, func() {}, nil
	}

	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, nil, err
	}
	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, nil, err
	}

	cleanup := func() { _ = store.Close() }
	return store, cleanup, nil
}

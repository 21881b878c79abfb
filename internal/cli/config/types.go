// Package config provides configuration management for the GridCalc CLI.
//
// Configuration is loaded in layers with koanf; precedence from highest to
// lowest: CLI flags > environment variables > config file > defaults.
package config

// Config holds all CLI configuration options.
type Config struct {
	// StatePath is the run-history database. Empty disables history.
	StatePath string `koanf:"state_path"`
	// OutputFormat selects grid rendering: auto, plain, table, markdown, json.
	OutputFormat string `koanf:"output"`
	// Verbose lowers the log level to debug.
	Verbose bool `koanf:"verbose"`
	// Strict makes eval exit non-zero when any cell resolves to an
	// error marker.
	Strict bool `koanf:"strict"`
}

// Default configuration values.
const (
	DefaultStateFile = ".gridcalc/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=table, non-TTY=plain
)

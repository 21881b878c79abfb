package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show the GridCalc version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "GridCalc v%s\n", version)
			fmt.Fprintln(cmd.OutOrStdout(), "Spreadsheet expression evaluator")
			return nil
		},
	}
}

// Package main provides the CLI entrypoint for GridCalc.
package main

import (
	"os"

	"github.com/leapstack-labs/gridcalc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

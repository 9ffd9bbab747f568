package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "geomctl",
	Short: "Inspect, derive and render drag constructions",
	Long: `geomctl works with interactive geometric constructions: one free point
that moves inside a domain and a set of points derived from it by rules.
Constructions come from the built-in set, a definition directory (--dir)
or a YAML/JSON file given by path.`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

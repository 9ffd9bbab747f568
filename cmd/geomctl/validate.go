package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dragpoint/geodrag/internal/construction"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check construction definition files",
	Long:  "Validate parses and compiles each file and reports every problem found.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		def, err := construction.Load(path)
		if err == nil {
			_, err = construction.Compile(def)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%s)\n", path, def.ID)
	}
	if failed > 0 {
		return errors.New(plural(failed, "invalid file"))
	}
	return nil
}

func plural(n int, what string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", what)
	}
	return fmt.Sprintf("%d %ss", n, what)
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dragpoint/geodrag/internal/session"
)

var (
	sweepFrom, sweepTo []float64
	sweepSteps         int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <id|file>",
	Short: "Move the free point along a segment and print the readings",
	Long: `Sweep places the free point at evenly spaced positions from --from to
--to, the way a drag would, and prints the readings at each accepted position.
Positions outside the domain or where a rule fails are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	f := sweepCmd.Flags()
	f.Float64SliceVar(&sweepFrom, "from", nil, "start position x,y")
	f.Float64SliceVar(&sweepTo, "to", nil, "end position x,y")
	f.IntVar(&sweepSteps, "steps", 10, "number of intervals")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepFrom) != 2 || len(sweepTo) != 2 {
		return errors.New("--from and --to need two values each")
	}
	if sweepSteps < 1 {
		return errors.New("--steps must be positive")
	}
	c, err := resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	sess, err := session.FromCompiled(c, nil, logger())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := 0; i <= sweepSteps; i++ {
		t := float64(i) / float64(sweepSteps)
		x := sweepFrom[0] + t*(sweepTo[0]-sweepFrom[0])
		y := sweepFrom[1] + t*(sweepTo[1]-sweepFrom[1])
		if err := sess.MoveTo(x, y); err != nil {
			fmt.Fprintf(out, "(%.4f, %.4f)  skipped: %v\n", x, y, err)
			continue
		}
		f := sess.Frame()
		parts := make([]string, 0, len(f.Readings))
		for _, r := range f.Readings {
			s := r.String()
			if r.OnTarget {
				s += " *"
			}
			parts = append(parts, s)
		}
		fmt.Fprintf(out, "(%.4f, %.4f)  %s\n", f.Free[0], f.Free[1], strings.Join(parts, "  "))
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dragpoint/geodrag/internal/render"
)

var (
	renderX, renderY float64
	renderOut        string
	renderOpts       render.Options
)

var renderCmd = &cobra.Command{
	Use:   "render <id|file>",
	Short: "Render a construction to PNG",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	f := renderCmd.Flags()
	f.Float64Var(&renderX, "x", 0, "free point x")
	f.Float64Var(&renderY, "y", 0, "free point y")
	f.StringVarP(&renderOut, "output", "o", "", "output PNG file (default <id>.png)")
	f.IntVar(&renderOpts.Width, "width", 800, "image width in pixels")
	f.IntVar(&renderOpts.Height, "height", 800, "image height in pixels")
	f.StringVar(&renderOpts.FontPath, "font", "", "TTF/OTF font for labels and readings")
	f.BoolVar(&renderOpts.Grid, "grid", true, "draw the coordinate axes")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	c, err := resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	at := cmd.Flags().Changed("x") || cmd.Flags().Changed("y")
	sc, err := sceneFor(c, at, renderX, renderY)
	if err != nil {
		return err
	}

	r, err := render.NewRaster(c.View, renderOpts)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := r.RenderScene(sc); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	out := renderOut
	if out == "" {
		out = c.Def.ID + ".png"
	}
	if err := r.SavePNG(out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}

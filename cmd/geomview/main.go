package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/dragpoint/geodrag/internal/config"
	"github.com/dragpoint/geodrag/internal/construction"
	"github.com/dragpoint/geodrag/internal/render"
)

var (
	widthFlag, heightFlag int
	fontFlag              string
)

var rootCmd = &cobra.Command{
	Use:   "geomview [id|file]",
	Short: "Drag constructions in a desktop window",
	Long: `geomview opens a construction in a window. Drag the free point with the
mouse; R resets it, N and P switch between built-in constructions and Esc quits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.Flags().IntVar(&widthFlag, "width", 0, "window width (default SNAPSHOT_WIDTH)")
	rootCmd.Flags().IntVar(&heightFlag, "height", 0, "window height (default SNAPSHOT_HEIGHT)")
	rootCmd.Flags().StringVar(&fontFlag, "font", "", "TTF/OTF font for labels (default FONT_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	opts := render.Options{
		Width:    cfg.SnapshotWidth,
		Height:   cfg.SnapshotHeight,
		FontPath: cfg.FontPath,
		Grid:     true,
	}
	if widthFlag > 0 {
		opts.Width = widthFlag
	}
	if heightFlag > 0 {
		opts.Height = heightFlag
	}
	if fontFlag != "" {
		opts.FontPath = fontFlag
	}

	def, err := initialDefinition(args)
	if err != nil {
		return err
	}
	g, err := newViewer(def, opts, cfg.HitRadiusPx, log)
	if err != nil {
		return err
	}
	defer g.Close()

	ebiten.SetWindowTitle("geomview")
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}

func initialDefinition(args []string) (*construction.Definition, error) {
	if len(args) == 0 {
		def, _ := construction.Builtin(construction.DefaultBuiltin)
		return def, nil
	}
	if def, ok := construction.Builtin(args[0]); ok {
		return def, nil
	}
	return construction.Load(args[0])
}

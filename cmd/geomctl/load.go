package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dragpoint/geodrag/internal/construction"
	"github.com/dragpoint/geodrag/internal/geom"
	"github.com/dragpoint/geodrag/internal/library"
	"github.com/dragpoint/geodrag/internal/scene"
)

var (
	dirFlag     string
	verboseFlag bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "directory of construction definitions")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log debug output to stderr")
}

func logger() *slog.Logger {
	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openLibrary() (*library.Service, error) {
	stores := library.Chain{library.Builtin{}}
	if dirFlag != "" {
		dir, err := library.OpenDir(dirFlag, logger())
		if err != nil {
			return nil, err
		}
		stores = library.Chain{dir, library.Builtin{}}
	}
	return library.NewService(stores, nil, logger()), nil
}

func isPath(ref string) bool {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// resolve compiles a construction named by id or by file path.
func resolve(ctx context.Context, ref string) (*construction.Compiled, error) {
	if isPath(ref) {
		def, err := construction.Load(ref)
		if err != nil {
			return nil, err
		}
		return construction.Compile(def)
	}
	lib, err := openLibrary()
	if err != nil {
		return nil, err
	}
	c, err := lib.Compile(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("construction %s: %w", ref, err)
	}
	return c, nil
}

// sceneFor builds the scene of c, at (x, y) when at is set.
func sceneFor(c *construction.Compiled, at bool, x, y float64) (*scene.Scene, error) {
	if !at {
		return c.NewScene()
	}
	return c.SceneAt(geom.V(x, y))
}

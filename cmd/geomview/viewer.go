package main

import (
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/dragpoint/geodrag/internal/construction"
	"github.com/dragpoint/geodrag/internal/render"
	"github.com/dragpoint/geodrag/internal/scene"
	"github.com/dragpoint/geodrag/internal/session"
)

// canvas is the session's renderer. It marks the frame dirty so Draw only
// uploads pixels after the scene changed.
type canvas struct {
	*render.Raster
	dirty bool
}

func (c *canvas) RenderScene(s *scene.Scene) error {
	c.dirty = true
	return c.Raster.RenderScene(s)
}

type viewer struct {
	sess   *session.Session
	canvas *canvas
	img    *ebiten.Image
	hitPx  float64
	log    *slog.Logger

	builtins []string
	current  int
}

func newViewer(def *construction.Definition, opts render.Options, hitPx float64, log *slog.Logger) (*viewer, error) {
	c, err := construction.Compile(def)
	if err != nil {
		return nil, err
	}
	r, err := render.NewRaster(c.View, opts)
	if err != nil {
		return nil, err
	}
	v := &viewer{canvas: &canvas{Raster: r}, hitPx: hitPx, log: log}
	for _, d := range construction.Builtins() {
		if d.ID == def.ID {
			v.current = len(v.builtins)
		}
		v.builtins = append(v.builtins, d.ID)
	}

	v.sess, err = session.FromCompiled(c, v.canvas, log)
	if err != nil {
		r.Close()
		return nil, err
	}
	v.applyHitRadius()
	w, h := r.Size()
	v.img = ebiten.NewImage(w, h)
	return v, nil
}

func (v *viewer) applyHitRadius() {
	if v.hitPx <= 0 {
		return
	}
	if err := v.sess.SetHitRadius(v.hitPx / v.canvas.Scale()); err != nil {
		v.log.Warn("set hit radius", "error", err)
	}
}

func (v *viewer) load(id string) {
	def, ok := construction.Builtin(id)
	if !ok {
		return
	}
	c, err := construction.Compile(def)
	if err != nil {
		v.log.Error("compile construction", "id", id, "error", err)
		return
	}
	v.canvas.SetView(c.View)
	if err := v.sess.Load(def); err != nil {
		v.log.Error("load construction", "id", id, "error", err)
		return
	}
	v.applyHitRadius()
	ebiten.SetWindowTitle("geomview - " + def.Name)
}

func (v *viewer) cycle(step int) {
	if len(v.builtins) == 0 {
		return
	}
	v.current = (v.current + step + len(v.builtins)) % len(v.builtins)
	v.load(v.builtins[v.current])
}

func (v *viewer) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := v.sess.Reset(); err != nil {
			v.log.Error("reset", "error", err)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		v.cycle(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		v.cycle(-1)
	}

	mx, my := ebiten.CursorPosition()
	w, h := v.canvas.Size()
	inside := mx >= 0 && my >= 0 && mx < w && my < h
	p := v.canvas.ToScene(float64(mx), float64(my))

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		v.sess.Press(p.X, p.Y, inside)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		v.sess.Release(p.X, p.Y)
	case v.sess.Dragging():
		v.sess.Motion(p.X, p.Y, inside)
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.canvas.dirty {
		v.img.WritePixels(v.canvas.RGBA().Pix)
		v.canvas.dirty = false
	}
	screen.DrawImage(v.img, nil)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.canvas.Size()
}

func (v *viewer) Close() error {
	v.img.Deallocate()
	return v.canvas.Close()
}

// Package render draws scenes into a raster image with gg. One Raster keeps
// a single gg.Context alive and repaints it on every RenderScene call, so a
// drag redraws in place instead of allocating a new canvas per frame.
package render

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/dragpoint/geodrag/internal/geom"
	"github.com/dragpoint/geodrag/internal/scene"
)

// Options configures a Raster. Zero values take the defaults.
type Options struct {
	Width       int
	Height      int
	Background  string  // hex colour, default white
	FontPath    string  // TTF/OTF file for labels and readouts; empty draws no text
	FontSize    float64 // points, default 12
	PointRadius float64 // pixels, default 4
	Grid        bool    // draw the coordinate axes
}

const (
	defaultWidth       = 800
	defaultHeight      = 800
	defaultBackground  = "#ffffff"
	defaultFontSize    = 12
	defaultPointRadius = 4

	colorAxis     = "#cccccc"
	colorReadout  = "#222222"
	colorOnTarget = "#2ca02c"
)

// Raster renders scenes onto an image. It implements drag.Renderer and is
// not safe for concurrent use.
type Raster struct {
	dc    *gg.Context
	opts  Options
	view  geom.Rect
	m     geom.Matrix2D
	inv   geom.Matrix2D
	scale float64
	text  bool
	fault error
}

// NewRaster creates a renderer showing the world rectangle view.
func NewRaster(view geom.Rect, opts Options) (*Raster, error) {
	if view.IsEmpty() || view.Width() <= 0 || view.Height() <= 0 {
		return nil, errors.New("render: empty view")
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Background == "" {
		opts.Background = defaultBackground
	}
	if opts.FontSize <= 0 {
		opts.FontSize = defaultFontSize
	}
	if opts.PointRadius <= 0 {
		opts.PointRadius = defaultPointRadius
	}

	r := &Raster{
		dc:   gg.NewContext(opts.Width, opts.Height),
		opts: opts,
	}
	r.SetView(view)
	if opts.FontPath != "" {
		if err := r.dc.LoadFontFace(opts.FontPath, opts.FontSize); err != nil {
			return nil, fmt.Errorf("render: load font %s: %w", opts.FontPath, err)
		}
		r.text = true
	}
	r.dc.ClearWithColor(gg.Hex(opts.Background))
	return r, nil
}

// SetView changes the visible world rectangle.
func (r *Raster) SetView(view geom.Rect) {
	r.view = view
	r.m = geom.Viewport(view, float64(r.opts.Width), float64(r.opts.Height))
	r.inv, _ = r.m.Invert()
	r.scale = r.m[0]
}

// View returns the visible world rectangle.
func (r *Raster) View() geom.Rect { return r.view }

// Scale returns pixels per world unit.
func (r *Raster) Scale() float64 { return r.scale }

// ToPixel maps a world point to pixel coordinates.
func (r *Raster) ToPixel(p geom.Vec) geom.Vec { return r.m.Apply(p) }

// ToScene maps pixel coordinates back to the world.
func (r *Raster) ToScene(x, y float64) geom.Vec { return r.inv.Apply(geom.V(x, y)) }

// Size returns the image size in pixels.
func (r *Raster) Size() (int, int) { return r.opts.Width, r.opts.Height }

// RenderScene repaints the canvas with s.
func (r *Raster) RenderScene(s *scene.Scene) error {
	if s == nil {
		return errors.New("render: nil scene")
	}
	return r.Draw(scene.CompileDrawCommands(s), s.Readings())
}

// Draw repaints the canvas from draw commands and readouts.
func (r *Raster) Draw(commands []scene.DrawCommand, readings []scene.Reading) error {
	r.fault = nil
	r.dc.ClearWithColor(gg.Hex(r.opts.Background))
	if r.opts.Grid {
		r.drawAxes()
	}
	for _, cmd := range commands {
		r.drawCommand(cmd)
	}
	if r.text {
		r.drawReadings(readings)
	}
	return r.fault
}

func (r *Raster) drawAxes() {
	r.dc.ClearDash()
	r.dc.SetHexColor(colorAxis)
	r.dc.SetLineWidth(1)
	if r.view.Min.Y <= 0 && r.view.Max.Y >= 0 {
		a, b := r.ToPixel(geom.V(r.view.Min.X, 0)), r.ToPixel(geom.V(r.view.Max.X, 0))
		r.dc.DrawLine(a.X, a.Y, b.X, b.Y)
		r.stroke()
	}
	if r.view.Min.X <= 0 && r.view.Max.X >= 0 {
		a, b := r.ToPixel(geom.V(0, r.view.Min.Y)), r.ToPixel(geom.V(0, r.view.Max.Y))
		r.dc.DrawLine(a.X, a.Y, b.X, b.Y)
		r.stroke()
	}
}

func (r *Raster) drawCommand(cmd scene.DrawCommand) {
	if len(cmd.Points) == 0 {
		return
	}
	r.setDash(cmd.Dash)
	r.dc.SetLineWidth(cmd.StrokeWidth)

	switch cmd.Op {
	case "polygon":
		r.path(cmd.Points)
		r.dc.ClosePath()
		r.fillStroke(cmd.Fill, cmd.Stroke)

	case "segment", "polyline", "trace":
		r.path(cmd.Points)
		if cmd.Stroke != "" {
			r.dc.SetHexColor(cmd.Stroke)
			r.stroke()
		} else {
			r.dc.ClearPath()
		}

	case "circle":
		c := r.ToPixel(geom.V(cmd.Points[0][0], cmd.Points[0][1]))
		r.dc.DrawCircle(c.X, c.Y, cmd.Radius*r.scale)
		r.fillStroke(cmd.Fill, cmd.Stroke)

	case "point":
		p := r.ToPixel(geom.V(cmd.Points[0][0], cmd.Points[0][1]))
		r.dc.ClearDash()
		r.dc.SetLineWidth(1)
		r.dc.DrawPoint(p.X, p.Y, r.opts.PointRadius)
		r.fillStroke(cmd.Fill, cmd.Stroke)
		if r.text && cmd.Label != "" {
			r.dc.SetHexColor(colorReadout)
			r.dc.DrawString(cmd.Label, p.X+r.opts.PointRadius+2, p.Y-r.opts.PointRadius-2)
		}
	}
}

func (r *Raster) drawReadings(readings []scene.Reading) {
	line := r.opts.FontSize * 1.4
	for i, rd := range readings {
		col := colorReadout
		if rd.OnTarget {
			col = colorOnTarget
		}
		r.dc.SetHexColor(col)
		r.dc.DrawString(rd.String(), 8, 8+line*float64(i+1))
	}
}

func (r *Raster) path(points [][2]float64) {
	for i, pt := range points {
		p := r.ToPixel(geom.V(pt[0], pt[1]))
		if i == 0 {
			r.dc.MoveTo(p.X, p.Y)
		} else {
			r.dc.LineTo(p.X, p.Y)
		}
	}
}

func (r *Raster) fillStroke(fill, stroke string) {
	switch {
	case fill != "" && stroke != "":
		r.dc.SetHexColor(fill)
		r.note(r.dc.FillPreserve())
		r.dc.SetHexColor(stroke)
		r.stroke()
	case fill != "":
		r.dc.SetHexColor(fill)
		r.note(r.dc.Fill())
	case stroke != "":
		r.dc.SetHexColor(stroke)
		r.stroke()
	default:
		r.dc.ClearPath()
	}
}

func (r *Raster) setDash(dash []float64) {
	if len(dash) == 0 {
		r.dc.ClearDash()
		return
	}
	r.dc.SetDash(dash...)
}

func (r *Raster) stroke() { r.note(r.dc.Stroke()) }

func (r *Raster) note(err error) {
	if err != nil && r.fault == nil {
		r.fault = err
	}
}

// Image returns the current canvas.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// RGBA returns the canvas as *image.RGBA, converting when the backing
// image has another layout.
func (r *Raster) RGBA() *image.RGBA {
	img := r.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

// EncodePNG writes the canvas as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := r.dc.FlushGPU(); err != nil {
		return err
	}
	return r.dc.EncodePNG(w)
}

// SavePNG writes the canvas to a PNG file.
func (r *Raster) SavePNG(path string) error {
	return r.dc.SavePNG(path)
}

// Close releases the drawing context.
func (r *Raster) Close() error {
	return r.dc.Close()
}

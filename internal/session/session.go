// Package session is the command/query facade frontends talk to. A Session
// owns one compiled construction, its scene and the drag controller; the
// CLI, the desktop viewer, the wasm bridge and collaborative rooms all drive
// constructions through it.
package session

import (
	"encoding/json"
	"log/slog"

	"github.com/dragpoint/geodrag/internal/construction"
	"github.com/dragpoint/geodrag/internal/drag"
	"github.com/dragpoint/geodrag/internal/geom"
	"github.com/dragpoint/geodrag/internal/scene"
)

// Session is not safe for concurrent use.
type Session struct {
	compiled  *construction.Compiled
	ctrl      *drag.Controller
	renderer  drag.Renderer
	base      *slog.Logger
	log       *slog.Logger
	hitRadius float64
}

// New compiles def and builds its scene at the initial free position.
// A nil renderer skips drawing.
func New(def *construction.Definition, r drag.Renderer, log *slog.Logger) (*Session, error) {
	c, err := construction.Compile(def)
	if err != nil {
		return nil, err
	}
	return FromCompiled(c, r, log)
}

// FromCompiled builds a session around an already compiled construction.
func FromCompiled(c *construction.Compiled, r drag.Renderer, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		compiled:  c,
		renderer:  r,
		base:      log,
		log:       log.With("construction", c.Def.ID),
		hitRadius: c.HitRadius,
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// --- Commands (frontend → session) ---

// Load replaces the construction. The previous scene and any drag in
// progress are discarded.
func (s *Session) Load(def *construction.Definition) error {
	c, err := construction.Compile(def)
	if err != nil {
		return err
	}
	s.compiled = c
	s.hitRadius = c.HitRadius
	s.log = s.base.With("construction", def.ID)
	return s.Reset()
}

// Reset rebuilds the scene at the initial free position.
func (s *Session) Reset() error {
	sc, err := s.compiled.NewScene()
	if err != nil {
		return err
	}
	return s.attach(sc)
}

func (s *Session) attach(sc *scene.Scene) error {
	cfg := s.compiled.ControllerConfig()
	cfg.HitRadius = s.hitRadius
	ctrl, err := drag.NewController(sc, cfg, s.renderer, s.log)
	if err != nil {
		return err
	}
	s.ctrl = ctrl
	return ctrl.Refresh()
}

// SetHitRadius changes the press radius, in world units. Frontends that
// know their pixel scale convert a pixel radius before calling this.
// A drag in progress is dropped.
func (s *Session) SetHitRadius(r float64) error {
	if r <= 0 {
		return nil
	}
	s.hitRadius = r
	return s.attach(s.ctrl.Scene())
}

// Press starts a drag if (x, y) is on the free point. A press outside the
// plot area never grabs.
func (s *Session) Press(x, y float64, inside bool) bool {
	return s.ctrl.Press(drag.Pointer{X: x, Y: y, Inside: inside})
}

// Motion moves the grabbed free point. inside is false when the pointer
// has left the plot area.
func (s *Session) Motion(x, y float64, inside bool) bool {
	return s.ctrl.Motion(drag.Pointer{X: x, Y: y, Inside: inside})
}

// Release ends the drag.
func (s *Session) Release(x, y float64) {
	s.ctrl.Release(drag.At(x, y))
}

// MoveTo places the free point directly, without a drag.
func (s *Session) MoveTo(x, y float64) error {
	return s.ctrl.MoveTo(x, y)
}

// --- Queries (frontend ← session) ---

// Frame is everything a client needs to redraw.
type Frame struct {
	Construction string              `json:"construction"`
	Version      uint64              `json:"version"`
	State        string              `json:"state"`
	Free         [2]float64          `json:"free"`
	Commands     []scene.DrawCommand `json:"commands"`
	Readings     []scene.Reading     `json:"readings"`
	View         [4]float64          `json:"view"`
}

// Frame returns the current frame.
func (s *Session) Frame() Frame {
	sc := s.ctrl.Scene()
	free := sc.Free().Pos
	v := s.compiled.View
	readings := sc.Readings()
	if readings == nil {
		readings = []scene.Reading{}
	}
	return Frame{
		Construction: s.compiled.Def.ID,
		Version:      sc.Version(),
		State:        s.ctrl.State().String(),
		Free:         [2]float64{free.X, free.Y},
		Commands:     scene.CompileDrawCommands(sc),
		Readings:     readings,
		View:         [4]float64{v.Min.X, v.Min.Y, v.Max.X, v.Max.Y},
	}
}

// Render returns the draw commands as JSON.
func (s *Session) Render() string {
	result, err := scene.DrawCommandsToJSON(scene.CompileDrawCommands(s.ctrl.Scene()))
	if err != nil {
		s.log.Warn("encode draw commands", "error", err)
		return "[]"
	}
	return result
}

// HitTest returns the id of the point under (x, y), or "".
func (s *Session) HitTest(x, y float64) string {
	return scene.HitTest(s.ctrl.Scene(), geom.V(x, y), s.hitRadius)
}

type pointJSON struct {
	ID    string     `json:"id"`
	Role  scene.Role `json:"role"`
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	Label string     `json:"label,omitempty"`
}

// SceneJSON returns the construction metadata and every point position.
func (s *Session) SceneJSON() string {
	sc := s.ctrl.Scene()
	pts := make([]pointJSON, 0, len(sc.Points()))
	for _, p := range sc.Points() {
		pts = append(pts, pointJSON{ID: p.ID, Role: p.Role, X: p.Pos.X, Y: p.Pos.Y, Label: sc.Style(p.ID).Label})
	}
	data, err := json.Marshal(map[string]interface{}{
		"id":       s.compiled.Def.ID,
		"name":     s.compiled.Def.Name,
		"version":  sc.Version(),
		"state":    s.ctrl.State().String(),
		"points":   pts,
		"readings": sc.Readings(),
		"stats":    s.ctrl.Stats(),
	})
	if err != nil {
		s.log.Warn("encode scene", "error", err)
		return "{}"
	}
	return string(data)
}

// Definition returns the loaded definition.
func (s *Session) Definition() *construction.Definition { return s.compiled.Def }

// Compiled returns the compiled construction.
func (s *Session) Compiled() *construction.Compiled { return s.compiled }

// Scene returns the live scene.
func (s *Session) Scene() *scene.Scene { return s.ctrl.Scene() }

// Dragging reports whether a drag is in progress.
func (s *Session) Dragging() bool { return s.ctrl.State() == drag.Dragging }

// Stats returns the controller's motion counters.
func (s *Session) Stats() drag.Stats { return s.ctrl.Stats() }

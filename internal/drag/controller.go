// Package drag turns pointer events into free point moves. A press inside
// the free point's hit radius starts a drag; each motion is constrained to
// the allowed domain, run through the derivation engine and, when every
// derived point resolves, installed in the scene and rendered.
package drag

import (
	"errors"
	"log/slog"

	"github.com/dragpoint/geodrag/internal/engine"
	"github.com/dragpoint/geodrag/internal/geom"
	"github.com/dragpoint/geodrag/internal/scene"
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Pointer is a pointer position in scene coordinates. Inside is false when
// the pointer is outside the plot area; such events are ignored.
type Pointer struct {
	X, Y   float64
	Inside bool
}

// At returns an in-area pointer at (x, y).
func At(x, y float64) Pointer {
	return Pointer{X: x, Y: y, Inside: true}
}

// Outside is the pointer position reported outside the plot area.
var Outside = Pointer{}

func (p Pointer) vec() geom.Vec { return geom.Vec{X: p.X, Y: p.Y} }

// Renderer redraws a scene. Implementations update their output in place.
type Renderer interface {
	RenderScene(s *scene.Scene) error
}

// Grab is one press-drag-release cycle.
type Grab struct {
	PointID string
	// Offset is grab point minus pointer at press; the free point follows
	// pointer + Offset.
	Offset geom.Vec
}

// Config is fixed for the controller's lifetime.
type Config struct {
	Fixed     map[string]geom.Vec
	FreeID    string
	Rules     []engine.Rule
	Domain    Domain
	HitRadius float64
	// Trace appends the scene's traced point after every accepted move and
	// restarts the trace on press.
	Trace bool
}

// Stats counts motion outcomes.
type Stats struct {
	Accepted   uint64 `json:"accepted"`
	Rejected   uint64 `json:"rejected"`
	Degenerate uint64 `json:"degenerate"`
}

// Controller is the drag state machine for one scene. It is not safe for
// concurrent use; callers serialise events.
type Controller struct {
	cfg      Config
	scene    *scene.Scene
	renderer Renderer
	log      *slog.Logger

	state State
	grab  *Grab
	stats Stats
}

// NewController wires a controller to a scene whose free point is
// cfg.FreeID. A nil renderer skips drawing; a nil logger uses slog.Default.
func NewController(sc *scene.Scene, cfg Config, r Renderer, log *slog.Logger) (*Controller, error) {
	if sc == nil {
		return nil, errors.New("drag: nil scene")
	}
	if cfg.Domain == nil {
		cfg.Domain = FullPlane{}
	}
	if sc.Free().ID != cfg.FreeID {
		return nil, errors.New("drag: scene free point " + sc.Free().ID + " does not match " + cfg.FreeID)
	}
	if cfg.HitRadius <= 0 {
		return nil, errors.New("drag: hit radius must be positive")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{cfg: cfg, scene: sc, renderer: r, log: log}, nil
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Grab returns the active grab, or nil when idle.
func (c *Controller) Grab() *Grab { return c.grab }

// Stats returns motion counters.
func (c *Controller) Stats() Stats { return c.stats }

// Scene returns the controlled scene.
func (c *Controller) Scene() *scene.Scene { return c.scene }

// Domain returns the free point's domain.
func (c *Controller) Domain() Domain { return c.cfg.Domain }

// Press starts a drag when p is within the hit radius of the free point.
// It reports whether a drag started.
func (c *Controller) Press(p Pointer) bool {
	if c.state == Dragging || !p.Inside {
		return false
	}
	free := c.scene.Free()
	if geom.Distance(p.vec(), free.Pos) > c.cfg.HitRadius {
		return false
	}
	c.grab = &Grab{PointID: free.ID, Offset: geom.Sub(free.Pos, p.vec())}
	c.state = Dragging
	if c.cfg.Trace {
		c.scene.ClearTrace()
		c.render()
	}
	c.log.Debug("drag started", "point", free.ID, "x", free.Pos.X, "y", free.Pos.Y)
	return true
}

// Motion moves the free point to follow p while dragging. It reports
// whether the scene changed. Out-of-domain candidates and positions where
// a rule cannot be evaluated leave the scene as it was.
func (c *Controller) Motion(p Pointer) bool {
	if c.state != Dragging || !p.Inside {
		return false
	}
	pos, err := c.cfg.Domain.Constrain(geom.Add(p.vec(), c.grab.Offset))
	if err != nil {
		c.stats.Rejected++
		return false
	}
	if pos == c.scene.Free().Pos {
		return false
	}
	return c.moveTo(pos)
}

// Release ends the drag.
func (c *Controller) Release(p Pointer) {
	if c.state != Dragging {
		return
	}
	c.log.Debug("drag ended", "point", c.grab.PointID, "accepted", c.stats.Accepted, "rejected", c.stats.Rejected+c.stats.Degenerate)
	c.grab = nil
	c.state = Idle
}

// MoveTo places the free point directly, subject to the same domain and
// derivation checks as a drag. It works in any state.
func (c *Controller) MoveTo(x, y float64) error {
	pos, err := c.cfg.Domain.Constrain(geom.V(x, y))
	if err != nil {
		return err
	}
	resolved, err := engine.Derive(c.cfg.Fixed, engine.FreePoint{ID: c.cfg.FreeID, Pos: pos}, c.cfg.Rules)
	if err != nil {
		return err
	}
	return c.install(resolved)
}

// Refresh redraws the current scene.
func (c *Controller) Refresh() error {
	if c.renderer == nil {
		return nil
	}
	return c.renderer.RenderScene(c.scene)
}

func (c *Controller) moveTo(pos geom.Vec) bool {
	resolved, err := engine.Derive(c.cfg.Fixed, engine.FreePoint{ID: c.cfg.FreeID, Pos: pos}, c.cfg.Rules)
	if err != nil {
		c.stats.Degenerate++
		c.log.Debug("move skipped", "x", pos.X, "y", pos.Y, "error", err)
		return false
	}
	if err := c.install(resolved); err != nil {
		c.stats.Degenerate++
		c.log.Warn("scene rejected derived points", "error", err)
		return false
	}
	return true
}

func (c *Controller) install(resolved map[string]geom.Vec) error {
	if err := c.scene.Replace(resolved); err != nil {
		return err
	}
	c.stats.Accepted++
	if c.cfg.Trace {
		c.scene.AppendTrace()
	}
	c.render()
	return nil
}

func (c *Controller) render() {
	if c.renderer == nil {
		return
	}
	if err := c.renderer.RenderScene(c.scene); err != nil {
		c.log.Warn("render failed", "error", err)
	}
}

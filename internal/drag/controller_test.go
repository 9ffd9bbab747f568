package drag

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/dragpoint/geodrag/internal/engine"
	"github.com/dragpoint/geodrag/internal/geom"
	"github.com/dragpoint/geodrag/internal/scene"
)

type countingRenderer struct {
	calls int
	last  uint64
	fail  bool
}

func (r *countingRenderer) RenderScene(s *scene.Scene) error {
	r.calls++
	r.last = s.Version()
	if r.fail {
		return errors.New("canvas gone")
	}
	return nil
}

// footConfig: E slides on the y axis; C is where the perpendicular to BE
// through A meets line OB; D is the foot of A on BE.
func footConfig() Config {
	return Config{
		Fixed:  map[string]geom.Vec{"A": geom.V(0, 4), "B": geom.V(4, 0), "O": geom.V(0, 0)},
		FreeID: "E",
		Rules: []engine.Rule{
			engine.Intersection{ID: "C", A: engine.PerpendicularAt("A", "B", "E"), B: engine.Through("O", "B")},
			engine.PerpendicularFoot{ID: "D", Point: "A", Line: engine.Through("B", "E")},
		},
		Domain:    AxisSegment{Axis: AxisY, Min: 0.01, Max: 3.99},
		HitRadius: 0.3,
		Trace:     true,
	}
}

func newFootController(t *testing.T, r Renderer) *Controller {
	t.Helper()
	cfg := footConfig()
	resolved, err := engine.Derive(cfg.Fixed, engine.FreePoint{ID: "E", Pos: geom.V(0, 2)}, cfg.Rules)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	var pts []scene.Point
	for _, id := range []string{"A", "B", "O"} {
		pts = append(pts, scene.Point{ID: id, Role: scene.RoleFixed, Pos: resolved[id]})
	}
	pts = append(pts, scene.Point{ID: "E", Role: scene.RoleFree, Pos: resolved["E"]})
	for _, id := range []string{"C", "D"} {
		pts = append(pts, scene.Point{ID: id, Role: scene.RoleDerived, Pos: resolved[id]})
	}
	sc, err := scene.New(scene.Config{Points: pts, Traced: "C"})
	if err != nil {
		t.Fatalf("scene.New: %v", err)
	}
	c, err := NewController(sc, cfg, r, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestPressOutsideHitRadiusStaysIdle(t *testing.T) {
	c := newFootController(t, nil)
	if c.Press(At(1, 2)) {
		t.Error("press away from free point started a drag")
	}
	if c.State() != Idle {
		t.Errorf("state = %v, want idle", c.State())
	}
	if c.Motion(At(0, 3)) {
		t.Error("motion while idle changed the scene")
	}
}

func TestDragMovesFreePointWithOffset(t *testing.T) {
	r := &countingRenderer{}
	c := newFootController(t, r)

	if !c.Press(At(0.1, 1.9)) {
		t.Fatal("press on free point did not start a drag")
	}
	if c.State() != Dragging {
		t.Fatalf("state = %v, want dragging", c.State())
	}
	if off := c.Grab().Offset; !geom.Near(off, geom.V(-0.1, 0.1), 1e-12) {
		t.Errorf("offset = %v, want (-0.1,0.1)", off)
	}

	if !c.Motion(At(0.1, 0.9)) {
		t.Fatal("motion inside domain rejected")
	}
	e := c.Scene().Free().Pos
	if !geom.Near(e, geom.V(0, 1), 1e-12) {
		t.Errorf("E = %v, want (0,1)", e)
	}
	// BE has slope -1/4; perpendicular through A has slope 4 and meets y=0 at x=-1
	cpt, _ := c.Scene().Point("C")
	if !geom.Near(cpt.Pos, geom.V(-1, 0), 1e-9) {
		t.Errorf("C = %v, want (-1,0)", cpt.Pos)
	}
	if r.last != c.Scene().Version() {
		t.Errorf("renderer saw version %d, scene at %d", r.last, c.Scene().Version())
	}

	c.Release(At(0.1, 0.9))
	if c.State() != Idle || c.Grab() != nil {
		t.Errorf("after release state = %v grab = %v", c.State(), c.Grab())
	}
	if c.Motion(At(0, 3)) {
		t.Error("motion after release changed the scene")
	}
}

func TestMotionOutsideDomainIsIgnored(t *testing.T) {
	c := newFootController(t, nil)
	c.Press(At(0, 2))
	before := c.Scene().Positions()

	for _, p := range []Pointer{At(0, 0), At(0, 4), At(0, -1), Outside} {
		if c.Motion(p) {
			t.Errorf("Motion(%+v) changed the scene", p)
		}
	}
	for id, p := range before {
		if got, _ := c.Scene().Point(id); got.Pos != p {
			t.Errorf("%s moved from %v to %v", id, p, got.Pos)
		}
	}
	if s := c.Stats(); s.Rejected != 3 || s.Accepted != 0 {
		t.Errorf("stats = %+v, want 3 rejected", s)
	}
}

func TestPressClearsTrace(t *testing.T) {
	c := newFootController(t, nil)
	c.Press(At(0, 2))
	for _, y := range []float64{1.5, 1, 0.5} {
		c.Motion(At(0, y))
	}
	c.Release(At(0, 0.5))
	if got := len(c.Scene().Trace()); got != 4 {
		t.Fatalf("trace length = %d, want 4", got)
	}

	c.Press(At(0, 0.5))
	trace := c.Scene().Trace()
	cpt, _ := c.Scene().Point("C")
	if len(trace) != 1 || trace[0] != cpt.Pos {
		t.Errorf("trace after press = %v, want [%v]", trace, cpt.Pos)
	}
}

func TestOscillationNearBoundaryStaysFinite(t *testing.T) {
	r := &countingRenderer{}
	c := newFootController(t, r)
	c.Press(At(0, 2))

	for i := 0; i < 1000; i++ {
		// sweep across both ends of (0.01, 3.99) with a small jitter
		y := 2 + 2.05*math.Sin(float64(i)*0.37) + 1e-7*float64(i%3-1)
		c.Motion(At(1e-9*float64(i%2), y))
		for _, p := range c.Scene().Points() {
			if !geom.IsFinite(p.Pos) {
				t.Fatalf("event %d: %s = %v", i, p.ID, p.Pos)
			}
		}
		e := c.Scene().Free().Pos
		if !(e.Y > 0.01 && e.Y < 3.99) || e.X != 0 {
			t.Fatalf("event %d: free point %v left its domain", i, e)
		}
	}
	s := c.Stats()
	if s.Accepted == 0 || s.Rejected == 0 {
		t.Errorf("stats = %+v, want both accepted and rejected moves", s)
	}
	if uint64(r.calls) < s.Accepted {
		t.Errorf("renderer called %d times for %d accepted moves", r.calls, s.Accepted)
	}
}

func TestRenderFailureDoesNotStopDrag(t *testing.T) {
	r := &countingRenderer{fail: true}
	c := newFootController(t, r)
	c.Press(At(0, 2))
	if !c.Motion(At(0, 3)) {
		t.Fatal("motion rejected after render failure")
	}
	if c.State() != Dragging {
		t.Errorf("state = %v, want dragging", c.State())
	}
}

func TestMoveTo(t *testing.T) {
	c := newFootController(t, nil)
	if err := c.MoveTo(0, 3); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	if got := c.Scene().Free().Pos; got != geom.V(0, 3) {
		t.Errorf("free = %v", got)
	}
	var oe *OutOfDomainError
	if err := c.MoveTo(0, 5); !errors.As(err, &oe) {
		t.Errorf("MoveTo outside domain error = %v", err)
	}
}

func TestNewControllerChecksConfig(t *testing.T) {
	c := newFootController(t, nil)
	cfg := footConfig()
	cfg.FreeID = "A"
	if _, err := NewController(c.Scene(), cfg, nil, nil); err == nil {
		t.Error("mismatched free id accepted")
	}
	cfg = footConfig()
	cfg.HitRadius = 0
	if _, err := NewController(c.Scene(), cfg, nil, nil); err == nil {
		t.Error("zero hit radius accepted")
	}
}

// footOnLineController: P slides on the x axis between -3 and 3 and D is the
// foot of A on line OP, which is undefined when P sits on O.
func footOnLineController(t *testing.T, r Renderer) *Controller {
	t.Helper()
	cfg := Config{
		Fixed:  map[string]geom.Vec{"A": geom.V(0, 4), "O": geom.V(0, 0)},
		FreeID: "P",
		Rules: []engine.Rule{
			engine.PerpendicularFoot{ID: "D", Point: "A", Line: engine.Through("O", "P")},
		},
		Domain:    AxisSegment{Axis: AxisX, Min: -3, Max: 3},
		HitRadius: 0.3,
	}
	resolved, err := engine.Derive(cfg.Fixed, engine.FreePoint{ID: "P", Pos: geom.V(2, 0)}, cfg.Rules)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	sc, err := scene.New(scene.Config{Points: []scene.Point{
		{ID: "A", Role: scene.RoleFixed, Pos: resolved["A"]},
		{ID: "O", Role: scene.RoleFixed, Pos: resolved["O"]},
		{ID: "P", Role: scene.RoleFree, Pos: resolved["P"]},
		{ID: "D", Role: scene.RoleDerived, Pos: resolved["D"]},
	}})
	if err != nil {
		t.Fatalf("scene.New: %v", err)
	}
	c, err := NewController(sc, cfg, r, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestDegenerateMotionKeepsScene(t *testing.T) {
	r := &countingRenderer{}
	c := footOnLineController(t, r)
	if !c.Press(At(2, 0)) {
		t.Fatal("press on P did not start a drag")
	}
	before := c.Scene().Positions()
	version, renders := c.Scene().Version(), r.calls

	tests := []struct {
		name string
		at   Pointer
		want Stats
	}{
		{"outside domain", At(5, 0), Stats{Rejected: 1}},
		{"foot on a zero-length line", At(0, 0), Stats{Rejected: 1, Degenerate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c.Motion(tt.at) {
				t.Errorf("Motion(%+v) changed the scene", tt.at)
			}
			if c.State() != Dragging {
				t.Errorf("state = %v, want dragging", c.State())
			}
			if s := c.Stats(); s != tt.want {
				t.Errorf("stats = %+v, want %+v", s, tt.want)
			}
			if c.Scene().Version() != version || r.calls != renders {
				t.Errorf("version %d->%d, renders %d->%d", version, c.Scene().Version(), renders, r.calls)
			}
			for id, p := range before {
				if got, _ := c.Scene().Point(id); got.Pos != p {
					t.Errorf("%s moved from %v to %v", id, p, got.Pos)
				}
			}
		})
	}

	// the drag survives and continues from a valid position
	if !c.Motion(At(1, 0)) {
		t.Fatal("valid motion after a degenerate one was rejected")
	}
	if got := c.Scene().Free().Pos; got != geom.V(1, 0) {
		t.Errorf("P = %v, want (1,0)", got)
	}
}

func TestPressOutsidePlotArea(t *testing.T) {
	c := newFootController(t, nil)
	if c.Press(Pointer{X: 0, Y: 2, Inside: false}) {
		t.Error("press outside the plot area started a drag")
	}
	if c.State() != Idle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

package construction

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/dragpoint/geodrag/internal/drag"
	"github.com/dragpoint/geodrag/internal/engine"
	"github.com/dragpoint/geodrag/internal/geom"
	"github.com/dragpoint/geodrag/internal/scene"
)

func compileBuiltin(t *testing.T, id string) *Compiled {
	t.Helper()
	def, ok := Builtin(id)
	if !ok {
		t.Fatalf("no built-in %q", id)
	}
	c, err := Compile(def)
	if err != nil {
		t.Fatalf("Compile(%s): %v", id, err)
	}
	return c
}

func pointAt(t *testing.T, s *scene.Scene, id string) geom.Vec {
	t.Helper()
	p, ok := s.Point(id)
	if !ok {
		t.Fatalf("point %s missing", id)
	}
	return p.Pos
}

func TestBuiltinsCompile(t *testing.T) {
	defs := Builtins()
	if len(defs) != 5 {
		t.Fatalf("got %d built-ins, want 5", len(defs))
	}
	for _, def := range defs {
		t.Run(def.ID, func(t *testing.T) {
			c, err := Compile(def)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			s, err := c.NewScene()
			if err != nil {
				t.Fatalf("NewScene: %v", err)
			}
			if s.Free().ID != def.Free.ID {
				t.Errorf("free point = %s, want %s", s.Free().ID, def.Free.ID)
			}
			if c.View.IsEmpty() {
				t.Error("empty view")
			}
		})
	}
}

func TestRotationLocusScenario(t *testing.T) {
	c := compileBuiltin(t, "rotation-locus")
	s, err := c.NewScene()
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if got := pointAt(t, s, "E"); got != geom.V(4, -2) {
		t.Errorf("E = %v, want (4,-2)", got)
	}

	ctrl, err := drag.NewController(s, c.ControllerConfig(), nil, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if !ctrl.Press(drag.At(-2, 0.1)) {
		t.Fatal("press on P did not start a drag")
	}
	if !ctrl.Motion(drag.At(3, 5)) {
		t.Fatal("motion rejected")
	}
	// the pointer's y is dropped: P stays on the x axis
	if got := s.Free().Pos; !geom.Near(got, geom.V(3, 0), 1e-12) {
		t.Errorf("P = %v, want (3,0)", got)
	}
	// CP = (1,-2) turned ccw is (2,1)
	if got := pointAt(t, s, "E"); !geom.Near(got, geom.V(4, 3), 1e-12) {
		t.Errorf("E = %v, want (4,3)", got)
	}
	if n := len(s.Trace()); n != 2 {
		t.Errorf("trace length = %d, want 2", n)
	}
}

func TestPerpendicularFootScenario(t *testing.T) {
	c := compileBuiltin(t, "perpendicular-foot")
	s, err := c.NewScene()
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if got := pointAt(t, s, "C"); !geom.Near(got, geom.V(-2, 0), 1e-9) {
		t.Fatalf("C at E=(0,2) is %v, want (-2,0)", got)
	}

	ctrl, err := drag.NewController(s, c.ControllerConfig(), nil, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if !ctrl.Press(drag.At(0, 2)) {
		t.Fatal("press on E did not start a drag")
	}

	a, b := geom.V(0, 4), geom.V(4, 0)
	for i := 0; i < 20; i++ {
		y := 0.5 + 3*float64(i)/19
		ctrl.Motion(drag.At(0, y))
		e := pointAt(t, s, "E")
		if !geom.Near(e, geom.V(0, y), 1e-12) {
			t.Fatalf("y=%v: E = %v", y, e)
		}
		cp := pointAt(t, s, "C")
		d := pointAt(t, s, "D")
		k := pointAt(t, s, "K")

		if !geom.Near(cp, geom.V(-y, 0), 1e-9) {
			t.Errorf("y=%v: C = %v, want (%v,0)", y, cp, -y)
		}
		// D lies on BE and AD ⊥ BE
		be := geom.Sub(e, b)
		if math.Abs(geom.Cross(be, geom.Sub(d, b))) > 1e-9 {
			t.Errorf("y=%v: D = %v not on BE", y, d)
		}
		if math.Abs(geom.Dot(be, geom.Sub(d, a))) > 1e-9 {
			t.Errorf("y=%v: AD not perpendicular to BE", y)
		}
		// ∠CDB is right, so D sits on the circle with diameter CB
		r := geom.Distance(k, b)
		for _, p := range []geom.Vec{cp, d} {
			if math.Abs(geom.Distance(k, p)-r) > 1e-9 {
				t.Errorf("y=%v: %v is %v from K, radius %v", y, p, geom.Distance(k, p), r)
			}
		}
	}
}

func TestAngleRotationScenario(t *testing.T) {
	c := compileBuiltin(t, "angle-rotation")
	s, err := c.NewScene()
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	want := map[string]geom.Vec{"Q": geom.V(8, 5), "F": geom.V(-0.75, 3.75), "F'": geom.V(1.75, -1.25)}
	for id, w := range want {
		if got := pointAt(t, s, id); !geom.Near(got, w, 1e-9) {
			t.Errorf("%s = %v, want %v", id, got, w)
		}
	}
	if r := s.Readings()[0]; math.Abs(r.Value-45) > 1e-9 {
		t.Errorf("∠QBF = %v, want 45", r.Value)
	}
	if _, err := c.SceneAt(geom.V(3, 0)); err == nil {
		t.Error("P at D accepted")
	}
}

func TestExtensionPerpendicularScenario(t *testing.T) {
	c := compileBuiltin(t, "extension-perpendicular")
	for _, m := range []float64{4.5, 6, 9, 12.25} {
		s, err := c.SceneAt(geom.V(m, 0))
		if err != nil {
			t.Fatalf("m=%v: %v", m, err)
		}
		if got := pointAt(t, s, "P"); !geom.Near(got, geom.V(m+4, m), 1e-9) {
			t.Errorf("m=%v: P = %v, want (%v,%v)", m, got, m+4, m)
		}
		ratio := s.Readings()[3]
		if math.Abs(ratio.Value-m/4) > 1e-9 {
			t.Errorf("m=%v: ratio = %v, want %v", m, ratio.Value, m/4)
		}
		if ratio.OnTarget != (m == 6) {
			t.Errorf("m=%v: on target = %v", m, ratio.OnTarget)
		}
	}

	// dragging left of A clamps M at 4.01
	s, _ := c.NewScene()
	ctrl, err := drag.NewController(s, c.ControllerConfig(), nil, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	ctrl.Press(drag.At(6, 0))
	ctrl.Motion(drag.At(-3, 0))
	if got := s.Free().Pos; got != geom.V(4.01, 0) {
		t.Errorf("clamped M = %v, want (4.01,0)", got)
	}
}

func TestBisectorParallelsScenario(t *testing.T) {
	c := compileBuiltin(t, "bisector-parallels")
	s, err := c.SceneAt(geom.V(0, 5))
	if err != nil {
		t.Fatalf("SceneAt: %v", err)
	}
	r := s.Readings()
	if math.Abs(r[0].Value-90) > 1e-9 || math.Abs(r[1].Value-45) > 1e-9 {
		t.Errorf("∠MEB = %v, ∠PEB = %v; want 90, 45", r[0].Value, r[1].Value)
	}
	if got := pointAt(t, s, "F"); !geom.Near(got, geom.V(-5, -5), 1e-9) {
		t.Errorf("F = %v, want (-5,-5)", got)
	}
	if got := pointAt(t, s, "P"); !geom.Near(got, geom.V(4*math.Sqrt2, 4*math.Sqrt2), 1e-9) {
		t.Errorf("P = %v", got)
	}

	// M on ray EA makes ∠MEB straight; M level with H makes MH ∥ CD
	for _, m := range []geom.Vec{geom.V(-3, 0), geom.V(5, 0)} {
		_, err := c.SceneAt(m)
		var re *engine.RuleError
		if !errors.As(err, &re) {
			t.Errorf("M=%v: error = %v, want RuleError", m, err)
		}
	}
}

func TestParseYAML(t *testing.T) {
	doc := `
id: reflect-demo
name: Reflection
fixed:
  - {id: A, x: 0, y: 0}
  - {id: B, x: 4, y: 4}
free:
  id: P
  x: 3
  y: 0
  domain: {kind: ray, origin: {x: 0, y: 0}, direction: {x: 1, y: 0}}
rules:
  - {id: R, kind: reflect, point: P, line: {through: [A, B]}}
  - {id: Mid, kind: midpoint, a: P, b: R}
relations:
  - {id: PR, kind: segment, points: [P, R], style: {dash: [4, 2]}}
trace: {point: R}
`
	def, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, err := Compile(def)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	s, err := c.NewScene()
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if got := pointAt(t, s, "R"); !geom.Near(got, geom.V(0, 3), 1e-12) {
		t.Errorf("R = %v, want (0,3)", got)
	}
	if got := pointAt(t, s, "Mid"); !geom.Near(got, geom.V(1.5, 1.5), 1e-12) {
		t.Errorf("Mid = %v, want (1.5,1.5)", got)
	}
	if _, ok := c.Domain.(drag.RayFromPoint); !ok {
		t.Errorf("domain = %T, want RayFromPoint", c.Domain)
	}
	if c.HitRadius != DefaultHitRadius {
		t.Errorf("hit radius = %v", c.HitRadius)
	}
	if !c.ControllerConfig().Trace {
		t.Error("trace not enabled")
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"id": "mid", "name": "Midpoint", "fixed": [{"id": "A", "x": 1, "y": 1}],
  "free": {"id": "P", "x": 3, "y": 5, "domain": {"kind": "plane"}},
  "rules": [{"id": "M", "kind": "midpoint", "a": "A", "b": "P"}]}`
	def, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, err := Compile(def)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(c.Rules) != 1 || c.Rules[0].Kind() != engine.KindMidpoint {
		t.Errorf("rules = %v", c.Rules)
	}
}

func TestMarshalRoundTripCompiles(t *testing.T) {
	for _, def := range Builtins() {
		data, err := Marshal(def)
		if err != nil {
			t.Fatalf("%s: Marshal: %v", def.ID, err)
		}
		back, err := Parse(data)
		if err != nil {
			t.Fatalf("%s: Parse: %v\n%s", def.ID, err, data)
		}
		if _, err := Compile(back); err != nil {
			t.Errorf("%s: Compile after round trip: %v", def.ID, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty document error = %v, want ErrEmpty", err)
	}
	if _, err := Parse([]byte("id: x\ncolour: red\n")); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestCompileErrors(t *testing.T) {
	base := func() *Definition {
		return &Definition{
			ID:    "t",
			Fixed: []PointDef{{ID: "A", X: 0, Y: 0}, {ID: "B", X: 1, Y: 0}},
			Free:  FreeDef{ID: "P", X: 0.5, Y: 1, Domain: DomainDef{Kind: DomainPlane}},
		}
	}
	tests := []struct {
		name   string
		mutate func(*Definition)
		want   string
	}{
		{"no id", func(d *Definition) { d.ID = "" }, "no id"},
		{"unknown rule", func(d *Definition) { d.Rules = []RuleDef{{ID: "X", Kind: "spiral"}} }, "unknown rule kind"},
		{"forward reference", func(d *Definition) {
			d.Rules = []RuleDef{{ID: "X", Kind: "midpoint", A: "A", B: "Y"}, {ID: "Y", Kind: "midpoint", A: "A", B: "P"}}
		}, "not resolved"},
		{"short line", func(d *Definition) {
			d.Rules = []RuleDef{{ID: "X", Kind: "perpendicularFoot", Point: "P", Line: &LineDef{Through: []string{"A"}}}}
		}, "exactly 2 points"},
		{"unknown selector", func(d *Definition) {
			d.Rules = []RuleDef{{ID: "X", Kind: "angleRay", Vertex: "A", Arm: "P", Degrees: 30, Onto: &LineDef{Through: []string{"A", "B"}}, Select: "sideways"}}
		}, "unknown selector"},
		{"bad domain", func(d *Definition) { d.Free.Domain = DomainDef{Kind: "circle"} }, "unknown domain"},
		{"inverted bounds", func(d *Definition) {
			d.Free.Domain = DomainDef{Kind: DomainAxis, Min: ptr(2), Max: ptr(1)}
		}, "not below"},
		{"initial outside domain", func(d *Definition) {
			d.Free.Domain = DomainDef{Kind: DomainAxis, Axis: "x", Min: ptr(2)}
		}, "outside"},
		{"initial degenerate", func(d *Definition) {
			d.Free.X, d.Free.Y = 0, 0
			d.Rules = []RuleDef{{ID: "X", Kind: "perpendicularFoot", Point: "B", Line: &LineDef{Through: []string{"A", "P"}}}}
		}, "degenerate"},
		{"unknown relation point", func(d *Definition) {
			d.Relations = []RelationDef{{ID: "s", Kind: "segment", Points: []string{"A", "Z"}}}
		}, "unknown point"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := base()
			tt.mutate(def)
			_, err := Compile(def)
			if err == nil {
				t.Fatal("Compile succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

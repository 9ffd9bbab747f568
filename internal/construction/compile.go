package construction

import (
	"fmt"
	"math"

	"github.com/dragpoint/geodrag/internal/drag"
	"github.com/dragpoint/geodrag/internal/engine"
	"github.com/dragpoint/geodrag/internal/geom"
	"github.com/dragpoint/geodrag/internal/scene"
)

// DefaultHitRadius is the press radius around the free point, in world units.
const DefaultHitRadius = 0.3

// Compiled is a validated definition ready to drive a scene.
type Compiled struct {
	Def       *Definition
	Fixed     map[string]geom.Vec
	Free      engine.FreePoint
	Rules     []engine.Rule
	Domain    drag.Domain
	HitRadius float64
	View      geom.Rect

	points    []scene.Point
	styles    map[string]scene.Style
	relations []scene.Relation
	measures  []scene.Measure
}

// Compile validates def and translates it into engine rules, a domain and
// scene relations. The initial free position must lie in the domain and
// every rule must resolve there.
func Compile(def *Definition) (*Compiled, error) {
	if def == nil {
		return nil, fmt.Errorf("nil definition")
	}
	if def.ID == "" {
		return nil, fmt.Errorf("construction has no id")
	}
	c := &Compiled{
		Def:       def,
		Fixed:     make(map[string]geom.Vec, len(def.Fixed)),
		Free:      engine.FreePoint{ID: def.Free.ID, Pos: geom.V(def.Free.X, def.Free.Y)},
		HitRadius: def.Free.HitRadius,
		styles:    make(map[string]scene.Style),
	}
	if c.HitRadius <= 0 {
		c.HitRadius = DefaultHitRadius
	}

	fixedIDs := make([]string, 0, len(def.Fixed))
	for _, p := range def.Fixed {
		c.Fixed[p.ID] = geom.V(p.X, p.Y)
		fixedIDs = append(fixedIDs, p.ID)
		c.points = append(c.points, scene.Point{ID: p.ID, Role: scene.RoleFixed, Pos: geom.V(p.X, p.Y)})
		c.setStyle(p.ID, p.Style)
	}
	c.points = append(c.points, scene.Point{ID: def.Free.ID, Role: scene.RoleFree, Pos: c.Free.Pos})
	c.setStyle(def.Free.ID, def.Free.Style)

	for i, rd := range def.Rules {
		r, err := compileRule(rd)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rd.ID, err)
		}
		c.Rules = append(c.Rules, r)
		c.points = append(c.points, scene.Point{ID: rd.ID, Role: scene.RoleDerived})
		c.setStyle(rd.ID, rd.Style)
	}
	if err := engine.Validate(fixedIDs, def.Free.ID, c.Rules); err != nil {
		return nil, err
	}

	dom, err := compileDomain(def.Free.Domain)
	if err != nil {
		return nil, fmt.Errorf("free point %s: %w", def.Free.ID, err)
	}
	c.Domain = dom

	for _, rd := range def.Relations {
		c.relations = append(c.relations, scene.Relation{
			ID: rd.ID, Kind: scene.RelationKind(rd.Kind), Points: rd.Points, Style: rd.Style,
		})
	}
	for _, md := range def.Measures {
		c.measures = append(c.measures, scene.Measure{
			ID: md.ID, Label: md.Label, Kind: scene.MeasureKind(md.Kind),
			Points: md.Points, Of: md.Of, Target: md.Target, Tolerance: md.Tolerance,
		})
	}

	// Building the initial scene checks relations, measures and the trace.
	sc, err := c.NewScene()
	if err != nil {
		return nil, err
	}
	if def.View != nil {
		c.View = geom.R(def.View.MinX, def.View.MinY, def.View.MaxX, def.View.MaxY)
	} else {
		b := sc.Bounds()
		c.View = b.Pad(0.1*math.Max(b.Width(), b.Height()) + 1)
	}
	if c.View.IsEmpty() {
		return nil, fmt.Errorf("construction %s: empty view", def.ID)
	}
	return c, nil
}

func (c *Compiled) setStyle(id string, st scene.Style) {
	if st.Label != "" || st.Fill != "" || st.Stroke != "" || st.Width != 0 || st.Hidden || len(st.Dash) > 0 {
		c.styles[id] = st
	}
}

// NewScene builds a fresh scene at the initial free position.
func (c *Compiled) NewScene() (*scene.Scene, error) {
	return c.SceneAt(c.Free.Pos)
}

// SceneAt builds a fresh scene with the free point at pos, constrained to
// the domain.
func (c *Compiled) SceneAt(pos geom.Vec) (*scene.Scene, error) {
	pos, err := c.Domain.Constrain(pos)
	if err != nil {
		return nil, err
	}
	resolved, err := engine.Derive(c.Fixed, engine.FreePoint{ID: c.Free.ID, Pos: pos}, c.Rules)
	if err != nil {
		return nil, err
	}
	pts := make([]scene.Point, len(c.points))
	for i, p := range c.points {
		p.Pos = resolved[p.ID]
		pts[i] = p
	}
	cfg := scene.Config{
		Points:    pts,
		Styles:    c.styles,
		Relations: c.relations,
		Measures:  c.measures,
	}
	if t := c.Def.Trace; t != nil {
		cfg.Traced = t.Point
		cfg.TraceStyle = t.Style
	}
	sc, err := scene.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("construction %s: %w", c.Def.ID, err)
	}
	return sc, nil
}

// ControllerConfig returns the drag configuration for scenes built by c.
func (c *Compiled) ControllerConfig() drag.Config {
	return drag.Config{
		Fixed:     c.Fixed,
		FreeID:    c.Free.ID,
		Rules:     c.Rules,
		Domain:    c.Domain,
		HitRadius: c.HitRadius,
		Trace:     c.Def.Trace != nil,
	}
}

func compileLine(ld *LineDef) (engine.LineRef, error) {
	if ld == nil {
		return engine.LineRef{}, fmt.Errorf("missing line")
	}
	if len(ld.Through) != 2 {
		return engine.LineRef{}, fmt.Errorf("line needs exactly 2 points in through, got %d", len(ld.Through))
	}
	a, b := ld.Through[0], ld.Through[1]
	switch {
	case ld.PerpendicularAt != "" && ld.ParallelAt != "":
		return engine.LineRef{}, fmt.Errorf("line %s%s is both perpendicular and parallel", a, b)
	case ld.PerpendicularAt != "":
		return engine.PerpendicularAt(ld.PerpendicularAt, a, b), nil
	case ld.ParallelAt != "":
		return engine.ParallelAt(ld.ParallelAt, a, b), nil
	default:
		return engine.Through(a, b), nil
	}
}

func compileRule(rd RuleDef) (engine.Rule, error) {
	switch engine.Kind(rd.Kind) {
	case engine.KindIntersection:
		if len(rd.Lines) != 2 {
			return nil, fmt.Errorf("intersection needs 2 lines, got %d", len(rd.Lines))
		}
		a, err := compileLine(&rd.Lines[0])
		if err != nil {
			return nil, err
		}
		b, err := compileLine(&rd.Lines[1])
		if err != nil {
			return nil, err
		}
		return engine.Intersection{ID: rd.ID, A: a, B: b}, nil

	case engine.KindPerpendicularFoot:
		l, err := compileLine(rd.Line)
		if err != nil {
			return nil, err
		}
		return engine.PerpendicularFoot{ID: rd.ID, Point: rd.Point, Line: l}, nil

	case engine.KindRotate:
		dir, err := geom.ParseDirection(rd.Direction)
		if err != nil {
			return nil, err
		}
		return engine.Rotate{ID: rd.ID, Point: rd.Point, Center: rd.Center, Degrees: rd.Degrees, Direction: dir}, nil

	case engine.KindReflect:
		l, err := compileLine(rd.Line)
		if err != nil {
			return nil, err
		}
		return engine.Reflect{ID: rd.ID, Point: rd.Point, Axis: l}, nil

	case engine.KindMidpoint:
		return engine.Midpoint{ID: rd.ID, A: rd.A, B: rd.B}, nil

	case engine.KindAngleBisector:
		frac := 0.5
		if rd.Fraction != nil {
			frac = *rd.Fraction
		}
		r := engine.AngleBisector{ID: rd.ID, Vertex: rd.Vertex, Arm1: rd.Arm1, Arm2: rd.Arm2, Fraction: frac}
		if rd.Onto != nil {
			l, err := compileLine(rd.Onto)
			if err != nil {
				return nil, err
			}
			r.Onto = &l
		}
		return r, nil

	case engine.KindAngleRay:
		l, err := compileLine(rd.Onto)
		if err != nil {
			return nil, err
		}
		sel, err := engine.LookupSelector(rd.Select)
		if err != nil {
			return nil, err
		}
		return engine.AngleRay{ID: rd.ID, Vertex: rd.Vertex, Arm: rd.Arm, Degrees: rd.Degrees, Onto: l, Select: sel}, nil

	default:
		return nil, fmt.Errorf("unknown rule kind %q", rd.Kind)
	}
}

func compileDomain(dd DomainDef) (drag.Domain, error) {
	switch dd.Kind {
	case DomainPlane:
		return drag.FullPlane{}, nil

	case DomainRay:
		if dd.Origin == nil || dd.Direction == nil {
			return nil, fmt.Errorf("ray domain needs origin and direction")
		}
		dir := geom.V(dd.Direction.X, dd.Direction.Y)
		if geom.Norm(dir) < geom.Tolerance {
			return nil, fmt.Errorf("ray domain has zero direction")
		}
		return drag.RayFromPoint{Origin: geom.V(dd.Origin.X, dd.Origin.Y), Direction: dir}, nil

	case DomainAxis:
		d := drag.AxisSegment{Offset: dd.Offset, Min: math.Inf(-1), Max: math.Inf(1), Clamp: dd.Clamp}
		switch dd.Axis {
		case "x", "":
			d.Axis = drag.AxisX
		case "y":
			d.Axis = drag.AxisY
		default:
			return nil, fmt.Errorf("unknown axis %q", dd.Axis)
		}
		if dd.Min != nil {
			d.Min = *dd.Min
		}
		if dd.Max != nil {
			d.Max = *dd.Max
		}
		if !(d.Min < d.Max) {
			return nil, fmt.Errorf("axis domain min %g not below max %g", d.Min, d.Max)
		}
		return d, nil

	default:
		return nil, fmt.Errorf("unknown domain kind %q", dd.Kind)
	}
}

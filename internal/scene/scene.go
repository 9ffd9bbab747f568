// Package scene holds the resolved state of one construction: named points
// with their roles, the relations drawn between them, the free point's
// trace and evaluated measures.
//
// A Scene is never partially updated. Replace swaps in a complete set of
// positions or leaves the scene untouched.
package scene

import (
	"fmt"

	"github.com/dragpoint/geodrag/internal/geom"
)

// Role classifies a point.
type Role int

const (
	RoleFixed Role = iota
	RoleFree
	RoleDerived
)

func (r Role) String() string {
	switch r {
	case RoleFree:
		return "free"
	case RoleDerived:
		return "derived"
	default:
		return "fixed"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Point is a named position.
type Point struct {
	ID   string
	Role Role
	Pos  geom.Vec
}

// Style is the drawing style of a point or relation. Empty fields fall back
// to renderer defaults.
type Style struct {
	Stroke string    `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	Fill   string    `json:"fill,omitempty" yaml:"fill,omitempty"`
	Width  float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Dash   []float64 `json:"dash,omitempty" yaml:"dash,omitempty"`
	Label  string    `json:"label,omitempty" yaml:"label,omitempty"`
	Hidden bool      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// RelationKind is the shape drawn for a relation.
type RelationKind string

const (
	// Segment joins two points.
	Segment RelationKind = "segment"
	// Polyline joins two or more points in order.
	Polyline RelationKind = "polyline"
	// Polygon is a closed, optionally filled, path of three or more points.
	Polygon RelationKind = "polygon"
	// Circle is centred on its first point and passes through its second.
	Circle RelationKind = "circle"
)

// Relation is a drawn shape referencing points by id.
type Relation struct {
	ID     string
	Kind   RelationKind
	Points []string
	Style  Style
}

func (r Relation) validate(known map[string]Point) error {
	n := len(r.Points)
	switch r.Kind {
	case Segment, Circle:
		if n != 2 {
			return fmt.Errorf("relation %s: %s needs 2 points, got %d", r.ID, r.Kind, n)
		}
	case Polyline:
		if n < 2 {
			return fmt.Errorf("relation %s: polyline needs at least 2 points, got %d", r.ID, n)
		}
	case Polygon:
		if n < 3 {
			return fmt.Errorf("relation %s: polygon needs at least 3 points, got %d", r.ID, n)
		}
	default:
		return fmt.Errorf("relation %s: unknown kind %q", r.ID, r.Kind)
	}
	for _, id := range r.Points {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("relation %s: unknown point %q", r.ID, id)
		}
	}
	return nil
}

// Config describes a scene at creation.
type Config struct {
	Points    []Point
	Styles    map[string]Style
	Relations []Relation
	Measures  []Measure
	// Traced names the point whose path is recorded, if any.
	Traced string
	// TraceStyle styles the recorded path.
	TraceStyle Style
}

// Scene is the current resolved construction.
type Scene struct {
	order      []string
	points     map[string]Point
	free       string
	styles     map[string]Style
	relations  []Relation
	measures   []Measure
	readings   []Reading
	traced     string
	traceStyle Style
	trace      []geom.Vec
	version    uint64
}

// New builds a scene and checks that every referenced id exists.
// Exactly one point must have RoleFree.
func New(cfg Config) (*Scene, error) {
	s := &Scene{
		points:     make(map[string]Point, len(cfg.Points)),
		styles:     make(map[string]Style, len(cfg.Styles)),
		traced:     cfg.Traced,
		traceStyle: cfg.TraceStyle,
	}
	for _, p := range cfg.Points {
		if p.ID == "" {
			return nil, fmt.Errorf("point with empty id")
		}
		if _, dup := s.points[p.ID]; dup {
			return nil, fmt.Errorf("duplicate point %q", p.ID)
		}
		if !geom.IsFinite(p.Pos) {
			return nil, fmt.Errorf("point %s: non-finite position %v", p.ID, p.Pos)
		}
		if p.Role == RoleFree {
			if s.free != "" {
				return nil, fmt.Errorf("points %s and %s are both free", s.free, p.ID)
			}
			s.free = p.ID
		}
		s.points[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	if s.free == "" {
		return nil, fmt.Errorf("scene has no free point")
	}
	for id, st := range cfg.Styles {
		if _, ok := s.points[id]; !ok {
			return nil, fmt.Errorf("style for unknown point %q", id)
		}
		s.styles[id] = st
	}
	for _, r := range cfg.Relations {
		if err := r.validate(s.points); err != nil {
			return nil, err
		}
	}
	s.relations = append(s.relations, cfg.Relations...)

	seen := make(map[string]bool, len(cfg.Measures))
	for _, m := range cfg.Measures {
		if err := m.validate(s.points, seen); err != nil {
			return nil, err
		}
		seen[m.ID] = true
	}
	s.measures = append(s.measures, cfg.Measures...)

	if s.traced != "" {
		if _, ok := s.points[s.traced]; !ok {
			return nil, fmt.Errorf("traced point %q unknown", s.traced)
		}
		s.trace = []geom.Vec{s.points[s.traced].Pos}
	}
	s.evaluate()
	return s, nil
}

// Replace installs a complete set of positions. Every point of the scene
// must be present and finite; otherwise the scene is left unchanged.
// Roles never change.
func (s *Scene) Replace(resolved map[string]geom.Vec) error {
	next := make(map[string]Point, len(s.points))
	for _, id := range s.order {
		pos, ok := resolved[id]
		if !ok {
			return fmt.Errorf("replace: point %s missing", id)
		}
		if !geom.IsFinite(pos) {
			return fmt.Errorf("replace: point %s has non-finite position %v", id, pos)
		}
		p := s.points[id]
		p.Pos = pos
		next[id] = p
	}
	s.points = next
	s.version++
	s.evaluate()
	return nil
}

// Version increases by one on every successful Replace.
func (s *Scene) Version() uint64 { return s.version }

// Point returns the named point.
func (s *Scene) Point(id string) (Point, bool) {
	p, ok := s.points[id]
	return p, ok
}

// Free returns the free point.
func (s *Scene) Free() Point { return s.points[s.free] }

// Points returns all points in declaration order.
func (s *Scene) Points() []Point {
	out := make([]Point, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.points[id])
	}
	return out
}

// Positions returns a copy of all positions keyed by id.
func (s *Scene) Positions() map[string]geom.Vec {
	out := make(map[string]geom.Vec, len(s.points))
	for id, p := range s.points {
		out[id] = p.Pos
	}
	return out
}

// Style returns the style of a point.
func (s *Scene) Style(id string) Style { return s.styles[id] }

// Relations returns the relations in declaration order.
func (s *Scene) Relations() []Relation { return s.relations }

// Readings returns the measures evaluated at the current positions.
func (s *Scene) Readings() []Reading { return s.readings }

// Traced returns the id of the traced point, or "".
func (s *Scene) Traced() string { return s.traced }

// Trace returns the recorded path of the traced point.
func (s *Scene) Trace() []geom.Vec { return s.trace }

// ClearTrace discards the recorded path and restarts it at the traced
// point's current position.
func (s *Scene) ClearTrace() {
	if s.traced == "" {
		return
	}
	s.trace = []geom.Vec{s.points[s.traced].Pos}
}

// AppendTrace records the traced point's current position.
func (s *Scene) AppendTrace() {
	if s.traced == "" {
		return
	}
	s.trace = append(s.trace, s.points[s.traced].Pos)
}

// Bounds returns the box covering all points, circles and the trace.
func (s *Scene) Bounds() geom.Rect {
	r := geom.EmptyRect()
	for _, p := range s.points {
		r = r.Include(p.Pos)
	}
	for _, rel := range s.relations {
		if rel.Kind != Circle {
			continue
		}
		c := s.points[rel.Points[0]].Pos
		rad := geom.Distance(c, s.points[rel.Points[1]].Pos)
		r = r.Union(geom.R(c.X-rad, c.Y-rad, c.X+rad, c.Y+rad))
	}
	for _, p := range s.trace {
		r = r.Include(p)
	}
	return r
}

func (s *Scene) evaluate() {
	pos := s.Positions()
	s.readings = make([]Reading, 0, len(s.measures))
	done := make(map[string]Reading, len(s.measures))
	for _, m := range s.measures {
		r := m.evaluate(pos, done)
		done[m.ID] = r
		s.readings = append(s.readings, r)
	}
}

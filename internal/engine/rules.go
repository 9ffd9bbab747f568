package engine

import (
	"fmt"
	"math"

	"github.com/dragpoint/geodrag/internal/geom"
)

// Points maps point ids to resolved positions.
type Points map[string]geom.Vec

// Kind tags the geometric meaning of a rule.
type Kind string

const (
	KindIntersection      Kind = "intersection"
	KindPerpendicularFoot Kind = "perpendicularFoot"
	KindRotate            Kind = "rotate"
	KindReflect           Kind = "reflect"
	KindAngleBisector     Kind = "angleBisector"
	KindAngleRay          Kind = "angleRay"
	KindMidpoint          Kind = "midpoint"
)

// Rule derives exactly one new point from points resolved before it.
// Apply is pure: it reads pts and never writes to it.
type Rule interface {
	Output() string
	Kind() Kind
	Inputs() []string
	Apply(pts Points) (geom.Vec, error)
}

// Intersection is the common point of two lines.
type Intersection struct {
	ID   string
	A, B LineRef
}

func (r Intersection) Output() string { return r.ID }
func (r Intersection) Kind() Kind     { return KindIntersection }
func (r Intersection) Inputs() []string {
	return append(r.A.Inputs(), r.B.Inputs()...)
}

func (r Intersection) Apply(pts Points) (geom.Vec, error) {
	a, err := r.A.Resolve(pts)
	if err != nil {
		return geom.Vec{}, err
	}
	b, err := r.B.Resolve(pts)
	if err != nil {
		return geom.Vec{}, err
	}
	return geom.IntersectLines(a, b)
}

// PerpendicularFoot is the orthogonal projection of Point onto Line.
type PerpendicularFoot struct {
	ID    string
	Point string
	Line  LineRef
}

func (r PerpendicularFoot) Output() string { return r.ID }
func (r PerpendicularFoot) Kind() Kind     { return KindPerpendicularFoot }
func (r PerpendicularFoot) Inputs() []string {
	return append([]string{r.Point}, r.Line.Inputs()...)
}

func (r PerpendicularFoot) Apply(pts Points) (geom.Vec, error) {
	l, err := r.Line.Resolve(pts)
	if err != nil {
		return geom.Vec{}, err
	}
	return geom.PerpendicularFoot(pts[r.Point], l)
}

// Rotate turns Point about Center by Degrees in Direction.
type Rotate struct {
	ID        string
	Point     string
	Center    string
	Degrees   float64
	Direction geom.Direction
}

func (r Rotate) Output() string   { return r.ID }
func (r Rotate) Kind() Kind       { return KindRotate }
func (r Rotate) Inputs() []string { return []string{r.Point, r.Center} }

func (r Rotate) Apply(pts Points) (geom.Vec, error) {
	c := pts[r.Center]
	d := geom.RotateDegrees(geom.Sub(pts[r.Point], c), r.Degrees, r.Direction)
	return geom.Add(c, d), nil
}

// Reflect mirrors Point across Axis.
type Reflect struct {
	ID    string
	Point string
	Axis  LineRef
}

func (r Reflect) Output() string { return r.ID }
func (r Reflect) Kind() Kind     { return KindReflect }
func (r Reflect) Inputs() []string {
	return append([]string{r.Point}, r.Axis.Inputs()...)
}

func (r Reflect) Apply(pts Points) (geom.Vec, error) {
	l, err := r.Axis.Resolve(pts)
	if err != nil {
		return geom.Vec{}, err
	}
	return geom.Reflect(pts[r.Point], l)
}

// Midpoint is the point halfway between A and B.
type Midpoint struct {
	ID   string
	A, B string
}

func (r Midpoint) Output() string   { return r.ID }
func (r Midpoint) Kind() Kind       { return KindMidpoint }
func (r Midpoint) Inputs() []string { return []string{r.A, r.B} }

func (r Midpoint) Apply(pts Points) (geom.Vec, error) {
	return geom.Midpoint(pts[r.A], pts[r.B]), nil
}

// AngleBisector splits the angle Arm1-Vertex-Arm2. The ray leaves Vertex
// at Fraction of the signed angle from the Arm1 direction toward Arm2;
// 0.5 bisects. Without Onto the result lies on the ray at the distance of
// Arm1 from Vertex, otherwise it is where the ray's line meets Onto.
type AngleBisector struct {
	ID       string
	Vertex   string
	Arm1     string
	Arm2     string
	Fraction float64
	Onto     *LineRef
}

func (r AngleBisector) Output() string { return r.ID }
func (r AngleBisector) Kind() Kind     { return KindAngleBisector }
func (r AngleBisector) Inputs() []string {
	in := []string{r.Vertex, r.Arm1, r.Arm2}
	if r.Onto != nil {
		in = append(in, r.Onto.Inputs()...)
	}
	return in
}

func (r AngleBisector) Apply(pts Points) (geom.Vec, error) {
	v := pts[r.Vertex]
	arm1 := geom.Sub(pts[r.Arm1], v)
	u1, err := geom.Normalize(arm1)
	if err != nil {
		return geom.Vec{}, fmt.Errorf("first arm: %w", err)
	}
	u2, err := geom.Normalize(geom.Sub(pts[r.Arm2], v))
	if err != nil {
		return geom.Vec{}, fmt.Errorf("second arm: %w", err)
	}
	theta := geom.SignedAngle(u1, u2)
	if math.Abs(math.Abs(theta)-math.Pi) < geom.Tolerance {
		return geom.Vec{}, &geom.DegenerateVectorError{Op: "bisect straight angle"}
	}
	dir := geom.RotateByAngle(u1, r.Fraction*theta)
	if r.Onto == nil {
		return geom.Add(v, geom.Scale(geom.Norm(arm1), dir)), nil
	}
	ray, err := geom.LineAlong(v, dir)
	if err != nil {
		return geom.Vec{}, err
	}
	target, err := r.Onto.Resolve(pts)
	if err != nil {
		return geom.Vec{}, err
	}
	return geom.IntersectLines(ray, target)
}

// AngleRay casts two rays from Vertex at ±Degrees off the Vertex→Arm
// direction, counter-clockwise first, intersects each with Onto and lets
// Select pick among the candidates that exist.
type AngleRay struct {
	ID      string
	Vertex  string
	Arm     string
	Degrees float64
	Onto    LineRef
	Select  Selector
}

func (r AngleRay) Output() string { return r.ID }
func (r AngleRay) Kind() Kind     { return KindAngleRay }
func (r AngleRay) Inputs() []string {
	return append([]string{r.Vertex, r.Arm}, r.Onto.Inputs()...)
}

func (r AngleRay) Apply(pts Points) (geom.Vec, error) {
	v := pts[r.Vertex]
	u, err := geom.Normalize(geom.Sub(pts[r.Arm], v))
	if err != nil {
		return geom.Vec{}, fmt.Errorf("arm: %w", err)
	}
	target, err := r.Onto.Resolve(pts)
	if err != nil {
		return geom.Vec{}, err
	}

	var (
		candidates []geom.Vec
		firstErr   error
	)
	for _, dir := range []geom.Direction{geom.CounterClockwise, geom.Clockwise} {
		ray, err := geom.LineAlong(v, geom.RotateDegrees(u, r.Degrees, dir))
		if err == nil {
			var p geom.Vec
			if p, err = geom.IntersectLines(ray, target); err == nil {
				candidates = append(candidates, p)
				continue
			}
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if len(candidates) == 0 {
		return geom.Vec{}, firstErr
	}
	return r.Select.Choose(candidates), nil
}

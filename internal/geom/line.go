package geom

import (
	"fmt"
	"math"
)

// Line is an infinite line in slope-intercept form. Vertical lines carry
// their x coordinate instead of a slope.
type Line struct {
	Slope     float64
	Intercept float64
	Vertical  bool
	X         float64
}

// VerticalLine returns the line x = x0.
func VerticalLine(x0 float64) Line {
	return Line{Vertical: true, X: x0}
}

// LineThrough returns the line of the given slope through p.
// Slopes beyond MaxSlope, and non-finite slopes, give a vertical line.
func LineThrough(p Vec, slope float64) Line {
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.Abs(slope) > MaxSlope {
		return VerticalLine(p.X)
	}
	return Line{Slope: slope, Intercept: p.Y - slope*p.X}
}

// LineFromTwoPoints returns the line through p and q.
func LineFromTwoPoints(p, q Vec) (Line, error) {
	d := Sub(q, p)
	if Norm(d) < Tolerance {
		return Line{}, &DegenerateVectorError{Op: "line through coincident points"}
	}
	if math.Abs(d.X) < Tolerance {
		return VerticalLine(p.X), nil
	}
	return LineThrough(p, d.Y/d.X), nil
}

// LineAlong returns the line through p in direction dir.
func LineAlong(p, dir Vec) (Line, error) {
	if Norm(dir) < Tolerance {
		return Line{}, &DegenerateVectorError{Op: "line along zero direction"}
	}
	if math.Abs(dir.X) < Tolerance {
		return VerticalLine(p.X), nil
	}
	return LineThrough(p, dir.Y/dir.X), nil
}

// IsHorizontal reports whether the slope is within Tolerance of zero.
func (l Line) IsHorizontal() bool {
	return !l.Vertical && IsZero(l.Slope)
}

// Direction returns a unit vector along the line.
func (l Line) Direction() Vec {
	if l.Vertical {
		return Vec{Y: 1}
	}
	d := Vec{X: 1, Y: l.Slope}
	return Scale(1/Norm(d), d)
}

// PointAt returns a point on the line. For non-vertical lines it is the
// point with the given x; for vertical lines it is (X, t).
func (l Line) PointAt(t float64) Vec {
	if l.Vertical {
		return Vec{X: l.X, Y: t}
	}
	return Vec{X: t, Y: l.Slope*t + l.Intercept}
}

// Contains reports whether p lies within tol of the line.
func (l Line) Contains(p Vec, tol float64) bool {
	if l.Vertical {
		return math.Abs(p.X-l.X) <= tol
	}
	// perpendicular distance |m x - y + b| / sqrt(m²+1)
	d := math.Abs(l.Slope*p.X-p.Y+l.Intercept) / math.Hypot(l.Slope, 1)
	return d <= tol
}

func (l Line) String() string {
	if l.Vertical {
		return fmt.Sprintf("x=%g", l.X)
	}
	return fmt.Sprintf("y=%gx%+g", l.Slope, l.Intercept)
}

// IntersectLines returns the unique common point of a and b.
// Parallel or coincident lines yield a *ParallelLinesError.
func IntersectLines(a, b Line) (Vec, error) {
	switch {
	case a.Vertical && b.Vertical:
		return Vec{}, &ParallelLinesError{A: a, B: b}
	case a.Vertical:
		return Vec{X: a.X, Y: b.Slope*a.X + b.Intercept}, nil
	case b.Vertical:
		return Vec{X: b.X, Y: a.Slope*b.X + a.Intercept}, nil
	}
	if math.Abs(a.Slope-b.Slope) < Tolerance {
		return Vec{}, &ParallelLinesError{A: a, B: b}
	}
	x := (b.Intercept - a.Intercept) / (a.Slope - b.Slope)
	return Vec{X: x, Y: a.Slope*x + a.Intercept}, nil
}

// PerpendicularSlope returns -1/m for the slope m of l.
// Horizontal and vertical lines have no finite perpendicular slope.
func PerpendicularSlope(l Line) (float64, error) {
	if l.Vertical {
		return 0, &UndefinedSlopeError{Reason: "perpendicular to vertical line is horizontal"}
	}
	if l.IsHorizontal() {
		return 0, &UndefinedSlopeError{Reason: "perpendicular to horizontal line is vertical"}
	}
	return -1 / l.Slope, nil
}

// PerpendicularThrough returns the line through p perpendicular to l.
func PerpendicularThrough(l Line, p Vec) Line {
	if l.Vertical {
		return Line{Slope: 0, Intercept: p.Y}
	}
	if l.IsHorizontal() {
		return VerticalLine(p.X)
	}
	return LineThrough(p, -1/l.Slope)
}

// ParallelThrough returns the line through p parallel to l.
func ParallelThrough(l Line, p Vec) Line {
	if l.Vertical {
		return VerticalLine(p.X)
	}
	return LineThrough(p, l.Slope)
}

// PerpendicularFoot returns the orthogonal projection of p onto l.
func PerpendicularFoot(p Vec, l Line) (Vec, error) {
	return IntersectLines(l, PerpendicularThrough(l, p))
}

// Reflect returns the mirror image of p across l.
func Reflect(p Vec, l Line) (Vec, error) {
	foot, err := PerpendicularFoot(p, l)
	if err != nil {
		return Vec{}, err
	}
	return Sub(Scale(2, foot), p), nil
}

// ProjectOntoRay projects p onto the line through origin along dir and
// returns the projected point together with its signed parameter t, the
// distance from origin along the unit direction.
func ProjectOntoRay(p, origin, dir Vec) (Vec, float64, error) {
	u, err := Normalize(dir)
	if err != nil {
		return Vec{}, 0, err
	}
	t := Dot(Sub(p, origin), u)
	return Add(origin, Scale(t, u)), t, nil
}

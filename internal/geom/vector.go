// Package geom holds the plane geometry used by the derivation engine:
// vectors, slope-intercept lines, rectangles and affine matrices.
//
// Every zero check and slope comparison uses the absolute Tolerance.
// A slope whose magnitude exceeds MaxSlope is treated as vertical.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// Tolerance is the absolute tolerance for zero checks and slope comparisons.
	Tolerance = 1e-9

	// MaxSlope is the slope magnitude beyond which a line counts as vertical.
	MaxSlope = 1e9
)

// Vec is a point or displacement in the plane.
type Vec = r2.Vec

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns p+q.
func Add(p, q Vec) Vec { return r2.Add(p, q) }

// Sub returns p-q.
func Sub(p, q Vec) Vec { return r2.Sub(p, q) }

// Scale returns f*v.
func Scale(f float64, v Vec) Vec { return r2.Scale(f, v) }

// Dot returns the dot product of p and q.
func Dot(p, q Vec) float64 { return r2.Dot(p, q) }

// Cross returns the z component of the cross product p×q.
func Cross(p, q Vec) float64 { return r2.Cross(p, q) }

// Norm returns the Euclidean length of v.
func Norm(v Vec) float64 { return r2.Norm(v) }

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Vec) float64 { return r2.Norm(r2.Sub(p, q)) }

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Vec) Vec { return r2.Scale(0.5, r2.Add(p, q)) }

// Normalize returns the unit vector in the direction of v.
// It fails with a *DegenerateVectorError when v has zero length.
func Normalize(v Vec) (Vec, error) {
	n := r2.Norm(v)
	if n < Tolerance {
		return Vec{}, &DegenerateVectorError{Op: "normalize"}
	}
	return r2.Scale(1/n, v), nil
}

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func IsFinite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Near reports whether p and q agree coordinate-wise within tol.
func Near(p, q Vec, tol float64) bool {
	return scalar.EqualWithinAbs(p.X, q.X, tol) && scalar.EqualWithinAbs(p.Y, q.Y, tol)
}

// IsZero reports whether x is within Tolerance of zero.
func IsZero(x float64) bool {
	return scalar.EqualWithinAbs(x, 0, Tolerance)
}

// Direction is a rotation sense.
type Direction int

const (
	CounterClockwise Direction = iota
	Clockwise
)

func (d Direction) String() string {
	if d == Clockwise {
		return "cw"
	}
	return "ccw"
}

// ParseDirection accepts "ccw", "cw" and their long spellings.
// The empty string means counter-clockwise.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "ccw", "counterclockwise", "counter-clockwise":
		return CounterClockwise, nil
	case "cw", "clockwise":
		return Clockwise, nil
	default:
		return CounterClockwise, fmt.Errorf("unknown rotation direction %q", s)
	}
}

// Rotate90 rotates v by exactly a quarter turn.
// Counter-clockwise maps (x,y) to (-y,x); clockwise maps (x,y) to (y,-x).
func Rotate90(v Vec, dir Direction) Vec {
	if dir == Clockwise {
		return Vec{X: v.Y, Y: -v.X}
	}
	return Vec{X: -v.Y, Y: v.X}
}

// RotateByAngle rotates v counter-clockwise by theta radians about the origin.
func RotateByAngle(v Vec, theta float64) Vec {
	return r2.Rotate(v, theta, Vec{})
}

// RotateDegrees rotates v by deg degrees in the given direction.
// Whole multiples of 90° are applied as exact quarter turns.
func RotateDegrees(v Vec, deg float64, dir Direction) Vec {
	if q := deg / 90; q == math.Trunc(q) && !math.IsInf(q, 0) {
		steps := int(math.Mod(q, 4))
		if steps < 0 {
			steps += 4
		}
		for range steps {
			v = Rotate90(v, dir)
		}
		return v
	}
	theta := deg * math.Pi / 180
	if dir == Clockwise {
		theta = -theta
	}
	return RotateByAngle(v, theta)
}

// SignedAngle returns the counter-clockwise angle in radians, in (-π, π],
// that takes the direction of u onto the direction of v.
func SignedAngle(u, v Vec) float64 {
	return math.Atan2(Cross(u, v), Dot(u, v))
}

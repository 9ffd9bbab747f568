package drag

import (
	"fmt"
	"math"

	"github.com/dragpoint/geodrag/internal/geom"
)

// OutOfDomainError reports a candidate position the free point may not take.
type OutOfDomainError struct {
	Candidate geom.Vec
	Domain    string
	Reason    string
}

func (e *OutOfDomainError) Error() string {
	return fmt.Sprintf("(%g, %g) outside %s: %s", e.Candidate.X, e.Candidate.Y, e.Domain, e.Reason)
}

// Domain is the set of positions the free point may occupy. Constrain maps
// a raw candidate onto the domain or rejects it with *OutOfDomainError.
type Domain interface {
	Constrain(candidate geom.Vec) (geom.Vec, error)
	String() string
}

// Axis selects a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// AxisSegment confines the free point to a line parallel to an axis. For
// AxisX the point is (t, Offset), for AxisY it is (Offset, t). Without Clamp
// t must lie strictly inside (Min, Max); with Clamp it is clamped to
// [Min, Max]. Either bound may be infinite.
type AxisSegment struct {
	Axis   Axis
	Offset float64
	Min    float64
	Max    float64
	Clamp  bool
}

func (d AxisSegment) Constrain(c geom.Vec) (geom.Vec, error) {
	if !geom.IsFinite(c) {
		return geom.Vec{}, &OutOfDomainError{Candidate: c, Domain: d.String(), Reason: "non-finite"}
	}
	t := c.X
	if d.Axis == AxisY {
		t = c.Y
	}
	if d.Clamp {
		t = math.Max(d.Min, math.Min(d.Max, t))
	} else if !(t > d.Min && t < d.Max) {
		return geom.Vec{}, &OutOfDomainError{Candidate: c, Domain: d.String(), Reason: "outside open interval"}
	}
	if d.Axis == AxisY {
		return geom.Vec{X: d.Offset, Y: t}, nil
	}
	return geom.Vec{X: t, Y: d.Offset}, nil
}

func (d AxisSegment) String() string {
	lo, hi := "(", ")"
	if d.Clamp {
		lo, hi = "[", "]"
	}
	other := "y"
	if d.Axis == AxisY {
		other = "x"
	}
	return fmt.Sprintf("%s=%g, %s∈%s%g, %g%s", other, d.Offset, d.Axis, lo, d.Min, d.Max, hi)
}

// FullPlane accepts every finite position.
type FullPlane struct{}

func (FullPlane) Constrain(c geom.Vec) (geom.Vec, error) {
	if !geom.IsFinite(c) {
		return geom.Vec{}, &OutOfDomainError{Candidate: c, Domain: "plane", Reason: "non-finite"}
	}
	return c, nil
}

func (FullPlane) String() string { return "plane" }

// RayFromPoint confines the free point to the ray leaving Origin along
// Direction. Candidates are projected orthogonally onto the ray's line;
// projections behind Origin are rejected.
type RayFromPoint struct {
	Origin    geom.Vec
	Direction geom.Vec
}

func (d RayFromPoint) Constrain(c geom.Vec) (geom.Vec, error) {
	if !geom.IsFinite(c) {
		return geom.Vec{}, &OutOfDomainError{Candidate: c, Domain: d.String(), Reason: "non-finite"}
	}
	p, t, err := geom.ProjectOntoRay(c, d.Origin, d.Direction)
	if err != nil {
		return geom.Vec{}, &OutOfDomainError{Candidate: c, Domain: d.String(), Reason: err.Error()}
	}
	if t < 0 {
		return geom.Vec{}, &OutOfDomainError{Candidate: c, Domain: d.String(), Reason: "behind ray origin"}
	}
	return p, nil
}

func (d RayFromPoint) String() string {
	return fmt.Sprintf("ray from (%g, %g) toward (%g, %g)", d.Origin.X, d.Origin.Y, d.Direction.X, d.Direction.Y)
}

package engine

import (
	"fmt"

	"github.com/dragpoint/geodrag/internal/geom"
)

// LineKind says how a LineRef is built from its points.
type LineKind int

const (
	// LineThroughPoints is the line through A and B.
	LineThroughPoints LineKind = iota
	// LinePerpendicularAt is the line through At perpendicular to AB.
	LinePerpendicularAt
	// LineParallelAt is the line through At parallel to AB.
	LineParallelAt
)

// LineRef names a line by point ids. It is resolved against the points
// known at the time a rule runs.
type LineRef struct {
	Kind LineKind
	A, B string
	At   string
}

// Through refers to the line through a and b.
func Through(a, b string) LineRef {
	return LineRef{Kind: LineThroughPoints, A: a, B: b}
}

// PerpendicularAt refers to the line through at perpendicular to ab.
func PerpendicularAt(at, a, b string) LineRef {
	return LineRef{Kind: LinePerpendicularAt, A: a, B: b, At: at}
}

// ParallelAt refers to the line through at parallel to ab.
func ParallelAt(at, a, b string) LineRef {
	return LineRef{Kind: LineParallelAt, A: a, B: b, At: at}
}

// Inputs returns the point ids the line depends on.
func (l LineRef) Inputs() []string {
	if l.Kind == LineThroughPoints {
		return []string{l.A, l.B}
	}
	return []string{l.At, l.A, l.B}
}

// Resolve builds the concrete line from resolved points.
func (l LineRef) Resolve(pts Points) (geom.Line, error) {
	base, err := geom.LineFromTwoPoints(pts[l.A], pts[l.B])
	if err != nil {
		return geom.Line{}, fmt.Errorf("line %s: %w", l, err)
	}
	switch l.Kind {
	case LinePerpendicularAt:
		return geom.PerpendicularThrough(base, pts[l.At]), nil
	case LineParallelAt:
		return geom.ParallelThrough(base, pts[l.At]), nil
	default:
		return base, nil
	}
}

func (l LineRef) String() string {
	switch l.Kind {
	case LinePerpendicularAt:
		return fmt.Sprintf("⟂%s%s@%s", l.A, l.B, l.At)
	case LineParallelAt:
		return fmt.Sprintf("∥%s%s@%s", l.A, l.B, l.At)
	default:
		return l.A + l.B
	}
}

package geom

import "fmt"

// DegenerateVectorError reports an operation that needed a non-zero vector
// or a finite result and did not get one.
type DegenerateVectorError struct {
	Op string
}

func (e *DegenerateVectorError) Error() string {
	return "degenerate vector: " + e.Op
}

// ParallelLinesError reports an intersection of two lines that never meet
// or coincide.
type ParallelLinesError struct {
	A, B Line
}

func (e *ParallelLinesError) Error() string {
	if e.A.Vertical && e.B.Vertical {
		return fmt.Sprintf("parallel lines: both vertical (x=%g, x=%g)", e.A.X, e.B.X)
	}
	return fmt.Sprintf("parallel lines: slopes %g and %g", e.A.Slope, e.B.Slope)
}

// UndefinedSlopeError reports a perpendicular slope requested for a
// horizontal or vertical line.
type UndefinedSlopeError struct {
	Reason string
}

func (e *UndefinedSlopeError) Error() string {
	return "undefined slope: " + e.Reason
}

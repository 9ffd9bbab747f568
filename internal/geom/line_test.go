package geom

import (
	"errors"
	"math"
	"testing"
)

func mustLine(t *testing.T, p, q Vec) Line {
	t.Helper()
	l, err := LineFromTwoPoints(p, q)
	if err != nil {
		t.Fatalf("LineFromTwoPoints(%v, %v): %v", p, q, err)
	}
	return l
}

func TestLineFromTwoPoints(t *testing.T) {
	l := mustLine(t, V(0, 4), V(4, 0))
	if l.Vertical || math.Abs(l.Slope+1) > 1e-12 || math.Abs(l.Intercept-4) > 1e-12 {
		t.Errorf("line (0,4)-(4,0) = %v, want y=-x+4", l)
	}

	v := mustLine(t, V(2, -1), V(2, 5))
	if !v.Vertical || v.X != 2 {
		t.Errorf("line (2,-1)-(2,5) = %v, want x=2", v)
	}

	steep := mustLine(t, V(1, 0), V(1+1e-12, 5))
	if !steep.Vertical {
		t.Errorf("near-vertical line = %v, want vertical", steep)
	}

	_, err := LineFromTwoPoints(V(1, 1), V(1, 1))
	var dv *DegenerateVectorError
	if !errors.As(err, &dv) {
		t.Fatalf("coincident points error = %v, want DegenerateVectorError", err)
	}
}

func TestIntersectLines(t *testing.T) {
	tests := []struct {
		name string
		a, b Line
		want Vec
	}{
		{"diagonals", mustLine(t, V(0, 0), V(4, 4)), mustLine(t, V(0, 4), V(4, 0)), V(2, 2)},
		{"vertical and sloped", VerticalLine(3), mustLine(t, V(0, 1), V(1, 2)), V(3, 4)},
		{"sloped and vertical", mustLine(t, V(0, 1), V(1, 2)), VerticalLine(-1), V(-1, 0)},
		{"horizontal and vertical", LineThrough(V(0, 5), 0), VerticalLine(2), V(2, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntersectLines(tt.a, tt.b)
			if err != nil {
				t.Fatalf("IntersectLines: %v", err)
			}
			if !Near(got, tt.want, 1e-9) {
				t.Errorf("IntersectLines = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectParallel(t *testing.T) {
	tests := []struct {
		name string
		a, b Line
	}{
		{"parallel sloped", LineThrough(V(0, 0), 2), LineThrough(V(0, 1), 2)},
		{"coincident", LineThrough(V(0, 0), 2), LineThrough(V(1, 2), 2)},
		{"both vertical", VerticalLine(1), VerticalLine(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IntersectLines(tt.a, tt.b)
			var pe *ParallelLinesError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want ParallelLinesError", err)
			}
		})
	}
}

func TestPerpendicularSlope(t *testing.T) {
	m, err := PerpendicularSlope(LineThrough(V(0, 0), 2))
	if err != nil || m != -0.5 {
		t.Errorf("PerpendicularSlope(2) = %v, %v; want -0.5", m, err)
	}

	var ue *UndefinedSlopeError
	if _, err := PerpendicularSlope(LineThrough(V(0, 3), 0)); !errors.As(err, &ue) {
		t.Errorf("horizontal: error = %v, want UndefinedSlopeError", err)
	}
	if _, err := PerpendicularSlope(VerticalLine(1)); !errors.As(err, &ue) {
		t.Errorf("vertical: error = %v, want UndefinedSlopeError", err)
	}
}

func TestPerpendicularThroughSpecialCases(t *testing.T) {
	p := V(3, -2)

	h := PerpendicularThrough(VerticalLine(7), p)
	if h.Vertical || h.Slope != 0 || h.Intercept != -2 {
		t.Errorf("perpendicular to vertical = %v, want y=-2", h)
	}

	v := PerpendicularThrough(LineThrough(V(0, 1), 0), p)
	if !v.Vertical || v.X != 3 {
		t.Errorf("perpendicular to horizontal = %v, want x=3", v)
	}
}

func TestPerpendicularFoot(t *testing.T) {
	l := mustLine(t, V(0, 4), V(4, 0))
	foot, err := PerpendicularFoot(V(0, 0), l)
	if err != nil {
		t.Fatalf("PerpendicularFoot: %v", err)
	}
	if !Near(foot, V(2, 2), 1e-9) {
		t.Errorf("foot = %v, want (2,2)", foot)
	}
	if !l.Contains(foot, 1e-9) {
		t.Errorf("foot %v not on %v", foot, l)
	}
}

func TestReflect(t *testing.T) {
	got, err := Reflect(V(1, 0), mustLine(t, V(0, 0), V(1, 1)))
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if !Near(got, V(0, 1), 1e-12) {
		t.Errorf("Reflect((1,0), y=x) = %v, want (0,1)", got)
	}

	got, err = Reflect(V(5, 2), VerticalLine(1))
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if !Near(got, V(-3, 2), 1e-12) {
		t.Errorf("Reflect((5,2), x=1) = %v, want (-3,2)", got)
	}
}

func TestProjectOntoRay(t *testing.T) {
	p, tt, err := ProjectOntoRay(V(3, 5), V(1, 1), V(2, 0))
	if err != nil {
		t.Fatalf("ProjectOntoRay: %v", err)
	}
	if !Near(p, V(3, 1), 1e-12) || math.Abs(tt-2) > 1e-12 {
		t.Errorf("ProjectOntoRay = %v, t=%v; want (3,1), t=2", p, tt)
	}

	_, back, _ := ProjectOntoRay(V(-4, 0), V(0, 0), V(1, 0))
	if back >= 0 {
		t.Errorf("point behind origin has t=%v, want negative", back)
	}
}

package drag

import (
	"errors"
	"math"
	"testing"

	"github.com/dragpoint/geodrag/internal/geom"
)

func TestAxisSegmentOpenInterval(t *testing.T) {
	d := AxisSegment{Axis: AxisY, Offset: 0, Min: 0.01, Max: 3.99}
	tests := []struct {
		name string
		in   geom.Vec
		want geom.Vec
		ok   bool
	}{
		{"inside", geom.V(0.3, 2), geom.V(0, 2), true},
		{"lower bound", geom.V(0, 0.01), geom.Vec{}, false},
		{"zero", geom.V(0, 0), geom.Vec{}, false},
		{"upper bound", geom.V(0, 3.99), geom.Vec{}, false},
		{"four", geom.V(0, 4), geom.Vec{}, false},
		{"NaN", geom.V(math.NaN(), 2), geom.Vec{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Constrain(tt.in)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("Constrain(%v) = %v, %v; want %v", tt.in, got, err, tt.want)
				}
				return
			}
			var oe *OutOfDomainError
			if !errors.As(err, &oe) {
				t.Errorf("Constrain(%v) error = %v, want OutOfDomainError", tt.in, err)
			}
		})
	}
}

func TestAxisSegmentClamp(t *testing.T) {
	d := AxisSegment{Axis: AxisX, Min: 4.01, Max: math.Inf(1), Clamp: true}
	got, err := d.Constrain(geom.V(2, 5))
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	if got != geom.V(4.01, 0) {
		t.Errorf("clamped = %v, want (4.01,0)", got)
	}
	got, _ = d.Constrain(geom.V(1e6, -3))
	if got != geom.V(1e6, 0) {
		t.Errorf("unbounded side = %v, want (1e6,0)", got)
	}
}

func TestAxisSegmentUnbounded(t *testing.T) {
	d := AxisSegment{Axis: AxisX, Min: math.Inf(-1), Max: math.Inf(1)}
	for _, x := range []float64{-1e9, 0, 1e9} {
		if got, err := d.Constrain(geom.V(x, 7)); err != nil || got != geom.V(x, 0) {
			t.Errorf("Constrain(%v) = %v, %v", x, got, err)
		}
	}
}

func TestFullPlane(t *testing.T) {
	if got, err := (FullPlane{}).Constrain(geom.V(-3, 8)); err != nil || got != geom.V(-3, 8) {
		t.Errorf("FullPlane = %v, %v", got, err)
	}
	if _, err := (FullPlane{}).Constrain(geom.V(math.Inf(1), 0)); err == nil {
		t.Error("FullPlane accepted infinity")
	}
}

func TestRayFromPoint(t *testing.T) {
	d := RayFromPoint{Origin: geom.V(1, 1), Direction: geom.V(1, 1)}
	got, err := d.Constrain(geom.V(3, 1))
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	if !geom.Near(got, geom.V(2, 2), 1e-12) {
		t.Errorf("projected = %v, want (2,2)", got)
	}
	if _, err := d.Constrain(geom.V(-2, 0)); err == nil {
		t.Error("point behind origin accepted")
	}
	if _, err := (RayFromPoint{Origin: geom.V(0, 0)}).Constrain(geom.V(1, 1)); err == nil {
		t.Error("zero direction accepted")
	}
}

func TestDomainString(t *testing.T) {
	d := AxisSegment{Axis: AxisY, Min: 0.01, Max: 3.99}
	if got := d.String(); got != "x=0, y∈(0.01, 3.99)" {
		t.Errorf("String() = %q", got)
	}
}

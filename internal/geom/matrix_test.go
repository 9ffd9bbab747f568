package geom

import (
	"math"
	"testing"
)

func TestMatrixMultiplyOrder(t *testing.T) {
	// translate first, then scale
	m := Scaling(2, 3).Multiply(Translate(1, 1))
	got := m.Apply(V(1, 1))
	if !Near(got, V(4, 6), 1e-12) {
		t.Errorf("Apply = %v, want (4,6)", got)
	}
}

func TestMatrixRotation(t *testing.T) {
	got := Rotation(math.Pi / 2).Apply(V(1, 0))
	if !Near(got, V(0, 1), 1e-12) {
		t.Errorf("Rotation(π/2)·(1,0) = %v, want (0,1)", got)
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(5, -2).Multiply(Rotation(0.3)).Multiply(Scaling(2, 4))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("Invert reported singular matrix")
	}
	p := V(1.5, -7)
	if got := inv.Apply(m.Apply(p)); !Near(got, p, 1e-9) {
		t.Errorf("inverse round trip = %v, want %v", got, p)
	}

	if _, ok := Scaling(0, 1).Invert(); ok {
		t.Error("singular matrix inverted")
	}
}

func TestViewport(t *testing.T) {
	tests := []struct {
		name  string
		view  Rect
		w, h  float64
		world Vec
		pixel Vec
	}{
		{"square lower-left", R(0, 0, 10, 10), 100, 100, V(0, 0), V(0, 100)},
		{"square upper-right", R(0, 0, 10, 10), 100, 100, V(10, 10), V(100, 0)},
		{"negative origin centre", R(-5, -5, 5, 5), 200, 200, V(0, 0), V(100, 100)},
		{"letterboxed wide canvas", R(0, 0, 10, 10), 200, 100, V(0, 0), V(50, 100)},
		{"letterboxed tall canvas", R(0, 0, 10, 10), 100, 200, V(10, 10), V(100, 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Viewport(tt.view, tt.w, tt.h).Apply(tt.world)
			if !Near(got, tt.pixel, 1e-9) {
				t.Errorf("Viewport·%v = %v, want %v", tt.world, got, tt.pixel)
			}
		})
	}
}

func TestRectInclude(t *testing.T) {
	r := EmptyRect()
	if !r.IsEmpty() {
		t.Fatal("EmptyRect not empty")
	}
	r = r.Include(V(1, 2)).Include(V(-3, 4))
	if r.Min != V(-3, 2) || r.Max != V(1, 4) {
		t.Errorf("Include = %+v", r)
	}
	if !r.Contains(V(0, 3)) || r.Contains(V(2, 3)) {
		t.Errorf("Contains wrong for %+v", r)
	}
	u := r.Union(R(0, 0, 5, 1))
	if u.Min != V(-3, 0) || u.Max != V(5, 4) {
		t.Errorf("Union = %+v", u)
	}
}

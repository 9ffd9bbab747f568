package geom

import "math"

// Matrix2D is a 2D affine transformation.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scaling returns a scale matrix.
func Scaling(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotation returns a counter-clockwise rotation matrix (angle in radians).
func Rotation(radians float64) Matrix2D {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * other, which applies other first and then m.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Apply transforms a point.
func (m Matrix2D) Apply(p Vec) Vec {
	return Vec{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// Determinant returns the determinant of the linear part.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of m. The second result is false when m is
// singular, in which case the identity is returned.
func (m Matrix2D) Invert() (Matrix2D, bool) {
	det := m.Determinant()
	if math.Abs(det) < Tolerance {
		return Identity(), false
	}
	inv := 1.0 / det
	return Matrix2D{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}, true
}

// Viewport returns the transform that maps the world rectangle view onto a
// width×height pixel canvas with y pointing down. Both axes share one scale
// so angles are preserved; the view is centred on the unused axis.
func Viewport(view Rect, width, height float64) Matrix2D {
	w, h := view.Width(), view.Height()
	if w <= 0 || h <= 0 || width <= 0 || height <= 0 {
		return Identity()
	}
	s := math.Min(width/w, height/h)
	ox := (width - w*s) / 2
	oy := (height - h*s) / 2
	// x' = s(x-minX) + ox ; y' = height - (s(y-minY) + oy)
	return Matrix2D{
		s, 0,
		0, -s,
		ox - view.Min.X*s,
		height - oy + view.Min.Y*s,
	}
}

// Rect is an axis-aligned rectangle in world coordinates.
type Rect struct {
	Min, Max Vec
}

// R builds a rectangle from two corners in any order.
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{
		Min: Vec{X: math.Min(x0, x1), Y: math.Min(y0, y1)},
		Max: Vec{X: math.Max(x0, x1), Y: math.Max(y0, y1)},
	}
}

// EmptyRect returns a rectangle that any Include call replaces.
func EmptyRect() Rect {
	inf := math.Inf(1)
	return Rect{Min: Vec{X: inf, Y: inf}, Max: Vec{X: -inf, Y: -inf}}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool {
	return !(r.Width() > 0) || !(r.Height() > 0)
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Include grows r to cover p.
func (r Rect) Include(p Vec) Rect {
	return Rect{
		Min: Vec{X: math.Min(r.Min.X, p.X), Y: math.Min(r.Min.Y, p.Y)},
		Max: Vec{X: math.Max(r.Max.X, p.X), Y: math.Max(r.Max.Y, p.Y)},
	}
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	return r.Include(other.Min).Include(other.Max)
}

// Pad returns r grown by margin on every side.
func (r Rect) Pad(margin float64) Rect {
	return Rect{
		Min: Vec{X: r.Min.X - margin, Y: r.Min.Y - margin},
		Max: Vec{X: r.Max.X + margin, Y: r.Max.Y + margin},
	}
}

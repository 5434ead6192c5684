package geom

import "math"

// BBox is an axis-aligned bounding box in document units.
//
// Invariant: Width >= 0 and Height >= 0. A zero-area box is a valid result
// only for degenerate (single-point) content; it is never used to encode
// "no content found" (see scan.EmptyContentError).
type BBox struct {
	X      float64 `json:"x"`      // Left edge
	Y      float64 `json:"y"`      // Top edge
	Width  float64 `json:"width"`  // Horizontal extent (>= 0)
	Height float64 `json:"height"` // Vertical extent (>= 0)
}

// FromCorners builds a BBox from two opposite corners, in any order.
func FromCorners(x1, y1, x2, y2 float64) BBox {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return BBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// MaxX returns the right edge (X + Width).
func (b BBox) MaxX() float64 { return b.X + b.Width }

// MaxY returns the bottom edge (Y + Height).
func (b BBox) MaxY() float64 { return b.Y + b.Height }

// Union returns the smallest box enclosing both a and b.
// Union is commutative and associative, so folding it over a set of boxes
// yields the same envelope regardless of order.
func Union(a, b BBox) BBox {
	return FromCorners(
		math.Min(a.X, b.X),
		math.Min(a.Y, b.Y),
		math.Max(a.MaxX(), b.MaxX()),
		math.Max(a.MaxY(), b.MaxY()),
	)
}

// UnionAll folds Union over boxes. The second return value is false when
// boxes is empty, since there is no meaningful envelope of nothing.
func UnionAll(boxes []BBox) (BBox, bool) {
	if len(boxes) == 0 {
		return BBox{}, false
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out = Union(out, b)
	}
	return out, true
}

// Intersect returns the overlap of a and b. The second return value is
// false when the boxes do not overlap; a shared edge or corner counts as
// a (zero-area) overlap.
func Intersect(a, b BBox) (BBox, bool) {
	x1 := math.Max(a.X, b.X)
	y1 := math.Max(a.Y, b.Y)
	x2 := math.Min(a.MaxX(), b.MaxX())
	y2 := math.Min(a.MaxY(), b.MaxY())
	if x2 < x1 || y2 < y1 {
		return BBox{}, false
	}
	return BBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// WithMargin expands the box uniformly by m units on every side.
// A negative m is clamped to zero: margins only ever grow a box.
func (b BBox) WithMargin(m float64) BBox {
	if m < 0 {
		m = 0
	}
	return BBox{
		X:      b.X - m,
		Y:      b.Y - m,
		Width:  b.Width + 2*m,
		Height: b.Height + 2*m,
	}
}

// ApproxEqual reports whether the two boxes match within tol on every edge.
func (b BBox) ApproxEqual(other BBox, tol float64) bool {
	return math.Abs(b.X-other.X) <= tol &&
		math.Abs(b.Y-other.Y) <= tol &&
		math.Abs(b.Width-other.Width) <= tol &&
		math.Abs(b.Height-other.Height) <= tol
}

package geom

import (
	"fmt"
	"math"
)

// singularEps is the determinant magnitude below which a matrix is treated
// as non-invertible. Inverting such a matrix would amplify coordinates by
// more than ~1e9, which is numerically meaningless for document units.
const singularEps = 1e-9

// Matrix is a 2D affine transformation in SVG order:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type Matrix struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

// Scale returns a scale by (sx, sy).
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotate returns a rotation by angle radians about the origin.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Mul returns the matrix product m * n, so that applying the result is
// equivalent to applying n first, then m. Composing a child transform onto
// a parent CTM is therefore parent.Mul(child).
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Det returns the determinant of the linear part.
func (m Matrix) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// NonInvertibleTransformError reports an attempt to invert a matrix whose
// determinant is too close to zero.
type NonInvertibleTransformError struct {
	Matrix Matrix
	Det    float64
}

func (e *NonInvertibleTransformError) Error() string {
	return fmt.Sprintf("transform matrix [%g %g %g %g %g %g] is not invertible (det=%g)",
		e.Matrix.A, e.Matrix.B, e.Matrix.C, e.Matrix.D, e.Matrix.E, e.Matrix.F, e.Det)
}

// Invert returns the inverse transform, or a NonInvertibleTransformError
// when |det| < 1e-9. A near-singular matrix is a hard failure, never a
// silently substituted identity: the caller must decide whether to report
// it or fall back to global-only coordinates.
func (m Matrix) Invert() (Matrix, error) {
	det := m.Det()
	if math.Abs(det) < singularEps {
		return Matrix{}, &NonInvertibleTransformError{Matrix: m, Det: det}
	}
	inv := 1 / det
	return Matrix{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, nil
}

// TransformBox maps a box through m by transforming all four corners and
// returning the axis-aligned envelope of the results. Under rotation or
// skew the transformed corners no longer form an axis-aligned rectangle,
// so transforming only origin and size would be wrong.
func TransformBox(b BBox, m Matrix) BBox {
	x1, y1 := m.Apply(b.X, b.Y)
	x2, y2 := m.Apply(b.MaxX(), b.Y)
	x3, y3 := m.Apply(b.X, b.MaxY())
	x4, y4 := m.Apply(b.MaxX(), b.MaxY())

	minX := math.Min(math.Min(x1, x2), math.Min(x3, x4))
	maxX := math.Max(math.Max(x1, x2), math.Max(x3, x4))
	minY := math.Min(math.Min(y1, y2), math.Min(y3, y4))
	maxY := math.Max(math.Max(y1, y2), math.Max(y3, y4))

	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ToGlobal converts a box from an element's local space to the document's
// global space using the element's CTM.
func ToGlobal(local BBox, ctm Matrix) BBox {
	return TransformBox(local, ctm)
}

// ToLocal converts a box from global space back into an element's local
// space. It fails with a NonInvertibleTransformError when the CTM cannot
// be inverted.
func ToLocal(global BBox, ctm Matrix) (BBox, error) {
	inv, err := ctm.Invert()
	if err != nil {
		return BBox{}, err
	}
	return TransformBox(global, inv), nil
}

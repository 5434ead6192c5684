// Package geom provides the geometric primitives for bounding box computation:
// axis-aligned bounding boxes and 2D affine transformation matrices.
//
// # Coordinate Spaces
//
// The engine distinguishes two coordinate spaces:
//
//   - Local space: an element's own user-unit coordinate system, before its
//     cumulative transform (CTM) is applied.
//   - Global space: the root document's coordinate system, after all
//     ancestor transforms have been applied.
//
// Conversion between the two is always done by transforming all four corners
// of a box and taking the axis-aligned envelope of the result. Transforming
// only the origin and width/height silently produces wrong boxes under
// rotation or skew, which is exactly the class of bug this package exists
// to prevent.
//
// # Matrix Convention
//
// Matrix uses the SVG/PostScript column convention:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
//
// which matches the six values of an SVG transform="matrix(a b c d e f)"
// attribute in order.
//
// # Purity
//
// Every function in this package is a pure function over plain numeric
// structs. There is no hidden state, which keeps the transform math
// testable with randomly generated matrices and boxes.
package geom

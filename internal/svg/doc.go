// Package svg parses a practical subset of SVG into a flat document model
// suitable for raster scanning.
//
// # Supported Content
//
// The parser understands the shape elements rect, circle, ellipse, line,
// polyline, polygon and path (with the M/m, L/l, H/h, V/v, C/c, Q/q, Z/z
// commands), grouping via g, and the transform, id, fill, stroke,
// stroke-width and opacity attributes. The root svg element contributes
// width, height and viewBox.
//
// Unknown elements and attributes are skipped rather than rejected, so
// documents produced by drawing tools generally parse even when they use
// features the scanner does not need.
//
// # Flattened Model
//
// Parsing flattens the element tree: every shape becomes one Element
// carrying its cumulative transform (CTM) and resolved paint, in document
// order. Group nesting, transform composition and paint inheritance are
// resolved at parse time, so consumers never walk a tree.
//
// # Errors
//
// Malformed XML, malformed numeric attributes, malformed transform lists
// and malformed path data all produce a *ParseError before any rendering
// or scanning begins.
package svg

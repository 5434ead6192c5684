// Package scan implements the two-pass rasterization bounding-box engine.
//
// The engine computes the visually accurate bounding box of rendered
// vector content: the tight rectangle around every non-background pixel a
// rasterizer actually produces. This differs from the geometric bbox a
// vector API reports, which ignores strokes, anti-aliasing and other
// rendering effects.
//
// # Two-Pass Algorithm
//
// A scan runs two render passes per target:
//
//  1. Coarse pass: the full candidate viewport is rendered at a low
//     sampling density and scanned for the extent of non-background
//     pixels. The discovered extent is padded outward by one coarse
//     sampling cell to guard against aliasing at low density.
//  2. Fine pass: only the padded coarse region is re-rendered at a
//     strictly higher density and re-scanned, pinning the boundary down
//     to sub-unit precision.
//
// Fine-pass edges are conservatively rounded to the nearest half unit,
// minimum edges down and maximum edges up, so a partially covered
// (anti-aliased) boundary pixel is never excluded. Including a fraction
// of a unit too much is always preferred over silently clipping content.
//
// # Densities
//
// Both densities are expressed in samples per document unit: density 2
// means one rendered pixel covers half a unit. The fine density must be
// strictly higher than the coarse density.
//
// # Policies
//
// The full policy (the default) reports the union of all rendered pixels
// regardless of the document's declared viewBox. The clipped policy
// additionally intersects with the viewBox rectangle. Both are computed
// from the same raster data, never by asking the rasterizer to pre-clip,
// so the two policies are always consistent with each other.
//
// # Failure
//
// Content where no pixel exceeds the background threshold fails with
// EmptyContentError; a zero-area box is never returned in its place. All
// failures carry the target id and the pass that failed, and no partial
// bbox accompanies any failure.
package scan

package svg

import (
	"fmt"
	"image/color"
	"math"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
)

// Kind identifies the geometry carried by an Element.
type Kind int

const (
	KindRect Kind = iota
	KindCircle
	KindEllipse
	KindLine
	KindPolyline
	KindPolygon
	KindPath
)

// String returns the SVG element name for the kind.
func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	case KindLine:
		return "line"
	case KindPolyline:
		return "polyline"
	case KindPolygon:
		return "polygon"
	case KindPath:
		return "path"
	}
	return "unknown"
}

// PathCmd is one command of a path's data, with absolute coordinates.
// Relative commands are resolved to absolute during parsing.
type PathCmd struct {
	Op   byte // 'M', 'L', 'C', 'Q' or 'Z'
	Args []float64
}

// Paint holds the resolved fill and stroke for an element. A nil color
// means "none" (not painted), which matters for scanning: an unfilled,
// unstroked shape produces no pixels at all.
type Paint struct {
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth float64
	Opacity     float64
}

// Element is one flattened shape with its cumulative transform applied
// lazily at render time. Geometry fields are in the element's local
// coordinate space; CTM maps local space to the document's global space.
type Element struct {
	ID    string
	Kind  Kind
	CTM   geom.Matrix
	Paint Paint

	// KindRect
	X, Y, W, H float64

	// KindCircle / KindEllipse
	CX, CY, RX, RY float64

	// KindLine
	X1, Y1, X2, Y2 float64

	// KindPolyline / KindPolygon
	Points []geom.Point

	// KindPath
	Path []PathCmd
}

// Document is a parsed SVG document: canvas size, optional viewBox, and
// flattened elements in document order.
type Document struct {
	Width    float64
	Height   float64
	ViewBox  *geom.BBox
	Elements []*Element

	byID map[string]*Element
}

// ClipRect returns the declared viewport-clip rectangle: the viewBox when
// one is declared, otherwise the canvas rectangle at the origin.
func (d *Document) ClipRect() geom.BBox {
	if d.ViewBox != nil {
		return *d.ViewBox
	}
	return geom.BBox{Width: d.Width, Height: d.Height}
}

// ElementByID looks up an element by its id attribute.
func (d *Document) ElementByID(id string) (*Element, bool) {
	el, ok := d.byID[id]
	return el, ok
}

// IDs returns the ids of all identified elements, in document order.
func (d *Document) IDs() []string {
	var ids []string
	for _, el := range d.Elements {
		if el.ID != "" {
			ids = append(ids, el.ID)
		}
	}
	return ids
}

// Select resolves target ids to elements. A nil or empty ids slice selects
// every element (a whole-content scan).
func (d *Document) Select(ids []string) ([]*Element, error) {
	if len(ids) == 0 {
		return d.Elements, nil
	}
	out := make([]*Element, 0, len(ids))
	for _, id := range ids {
		el, ok := d.byID[id]
		if !ok {
			return nil, fmt.Errorf("no element with id %q", id)
		}
		out = append(out, el)
	}
	return out, nil
}

// localBBox returns the element's geometric extent in its own local space,
// ignoring the stroke. Path extents use the hull of all on-curve and
// control points, which over-covers curves but never under-covers them.
func (el *Element) localBBox() (geom.BBox, bool) {
	switch el.Kind {
	case KindRect:
		return geom.BBox{X: el.X, Y: el.Y, Width: el.W, Height: el.H}, true
	case KindCircle, KindEllipse:
		return geom.BBox{X: el.CX - el.RX, Y: el.CY - el.RY, Width: 2 * el.RX, Height: 2 * el.RY}, true
	case KindLine:
		return geom.FromCorners(el.X1, el.Y1, el.X2, el.Y2), true
	case KindPolyline, KindPolygon:
		if len(el.Points) == 0 {
			return geom.BBox{}, false
		}
		minX, minY := el.Points[0].X, el.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range el.Points[1:] {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
		return geom.FromCorners(minX, minY, maxX, maxY), true
	case KindPath:
		first := true
		var minX, minY, maxX, maxY float64
		for _, cmd := range el.Path {
			for i := 0; i+1 < len(cmd.Args); i += 2 {
				x, y := cmd.Args[i], cmd.Args[i+1]
				if first {
					minX, maxX, minY, maxY = x, x, y, y
					first = false
					continue
				}
				minX = math.Min(minX, x)
				minY = math.Min(minY, y)
				maxX = math.Max(maxX, x)
				maxY = math.Max(maxY, y)
			}
		}
		if first {
			return geom.BBox{}, false
		}
		return geom.FromCorners(minX, minY, maxX, maxY), true
	}
	return geom.BBox{}, false
}

// strokeMiterLimit is the rasterizer's default miter limit. A miter join
// at a sharp vertex can extend up to limit * (stroke-width / 2) past the
// vertex, so stroke padding must use the full miter reach, not just the
// half width.
const strokeMiterLimit = 4

// GeometricEnvelope returns a global-space box guaranteed to contain every
// rendered pixel of the selected elements: each element's local extent is
// padded by its stroke's maximum reach (half width times the miter limit,
// covering join overshoot at sharp vertices), then mapped through its CTM,
// then all results are unioned. This is the candidate viewport for the
// coarse scan pass; it deliberately over-covers rather than risking
// clipped content.
//
// The second return value is false when no selected element has any
// geometric extent at all.
func (d *Document) GeometricEnvelope(ids []string) (geom.BBox, bool) {
	els, err := d.Select(ids)
	if err != nil {
		return geom.BBox{}, false
	}
	var boxes []geom.BBox
	for _, el := range els {
		local, ok := el.localBBox()
		if !ok {
			continue
		}
		if el.Paint.Stroke != nil && el.Paint.StrokeWidth > 0 {
			local = local.WithMargin(el.Paint.StrokeWidth / 2 * strokeMiterLimit)
		}
		boxes = append(boxes, geom.ToGlobal(local, el.CTM))
	}
	return geom.UnionAll(boxes)
}

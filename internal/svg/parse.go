package svg

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
)

// ParseError reports malformed input content. It is produced before any
// scan pass begins; a document that parses never fails later for syntax
// reasons.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse svg: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("parse svg: %s", e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(err error, format string, args ...interface{}) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// frame is the inherited parse state for one level of group nesting.
type frame struct {
	ctm   geom.Matrix
	paint Paint
}

// Parse reads an SVG document from r and returns its flattened model.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)

	doc := &Document{
		Width:  300,
		Height: 150,
		byID:   make(map[string]*Element),
	}

	var stack []frame
	rootSeen := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseErrorf(err, "malformed XML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local

			if !rootSeen {
				if name != "svg" {
					if err := dec.Skip(); err != nil {
						return nil, parseErrorf(err, "malformed XML before root")
					}
					continue
				}
				rootSeen = true
				if err := parseRoot(doc, t); err != nil {
					return nil, err
				}
				stack = append(stack, frame{
					ctm:   geom.Identity(),
					paint: defaultPaint(),
				})
				continue
			}

			// The decoder does not enforce a single root, so content
			// following the closed svg element lands here with no frame.
			if len(stack) == 0 {
				return nil, &ParseError{Msg: fmt.Sprintf("content after closed root: <%s>", name)}
			}
			top := stack[len(stack)-1]

			switch name {
			case "g", "svg":
				f, err := childFrame(top, t)
				if err != nil {
					return nil, err
				}
				stack = append(stack, f)
			case "rect", "circle", "ellipse", "line", "polyline", "polygon", "path":
				el, err := parseShape(top, t)
				if err != nil {
					return nil, err
				}
				doc.Elements = append(doc.Elements, el)
				if el.ID != "" {
					doc.byID[el.ID] = el
				}
				if err := dec.Skip(); err != nil {
					return nil, parseErrorf(err, "malformed %s element", name)
				}
			default:
				// Unknown or unsupported element: skip the whole subtree.
				if err := dec.Skip(); err != nil {
					return nil, parseErrorf(err, "malformed %s element", name)
				}
			}

		case xml.EndElement:
			// Shapes and unknowns are consumed by Skip, so end tags seen
			// here close a frame opened for svg or g.
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !rootSeen {
		return nil, &ParseError{Msg: "no svg root element"}
	}
	return doc, nil
}

// parseRoot reads width, height and viewBox off the root svg element.
// Missing width/height fall back to the viewBox size when one is present,
// else to the SVG default canvas of 300x150.
func parseRoot(doc *Document, t xml.StartElement) error {
	var haveW, haveH bool
	for _, a := range t.Attr {
		switch a.Name.Local {
		case "width":
			v, err := parseLength(a.Value)
			if err != nil {
				return parseErrorf(err, "bad width %q", a.Value)
			}
			doc.Width, haveW = v, true
		case "height":
			v, err := parseLength(a.Value)
			if err != nil {
				return parseErrorf(err, "bad height %q", a.Value)
			}
			doc.Height, haveH = v, true
		case "viewBox":
			vb, err := parseViewBox(a.Value)
			if err != nil {
				return err
			}
			doc.ViewBox = &vb
		}
	}
	if doc.ViewBox != nil {
		if !haveW {
			doc.Width = doc.ViewBox.Width
		}
		if !haveH {
			doc.Height = doc.ViewBox.Height
		}
	}
	return nil
}

// childFrame composes a group's transform and paint overrides onto the
// inherited frame.
func childFrame(parent frame, t xml.StartElement) (frame, error) {
	f := parent
	for _, a := range t.Attr {
		switch a.Name.Local {
		case "transform":
			m, err := parseTransform(a.Value)
			if err != nil {
				return frame{}, err
			}
			f.ctm = f.ctm.Mul(m)
		default:
			if err := applyPaintAttr(&f.paint, a); err != nil {
				return frame{}, err
			}
		}
	}
	return f, nil
}

// parseShape builds one flattened Element from a shape start tag.
func parseShape(parent frame, t xml.StartElement) (*Element, error) {
	el := &Element{
		CTM:   parent.ctm,
		Paint: parent.paint,
	}

	switch t.Name.Local {
	case "rect":
		el.Kind = KindRect
	case "circle":
		el.Kind = KindCircle
	case "ellipse":
		el.Kind = KindEllipse
	case "line":
		el.Kind = KindLine
	case "polyline":
		el.Kind = KindPolyline
	case "polygon":
		el.Kind = KindPolygon
	case "path":
		el.Kind = KindPath
	}

	// A line has no interior: the inherited fill must not paint one.
	// With no stroke either, it renders nothing, matching SVG.
	if el.Kind == KindLine {
		el.Paint.Fill = nil
	}

	num := func(a xml.Attr) (float64, error) {
		v, err := parseLength(a.Value)
		if err != nil {
			return 0, parseErrorf(err, "bad %s attribute %q on %s", a.Name.Local, a.Value, t.Name.Local)
		}
		return v, nil
	}

	for _, a := range t.Attr {
		var err error
		switch a.Name.Local {
		case "id":
			el.ID = a.Value
		case "transform":
			var m geom.Matrix
			if m, err = parseTransform(a.Value); err == nil {
				el.CTM = el.CTM.Mul(m)
			}
		case "x":
			el.X, err = num(a)
		case "y":
			el.Y, err = num(a)
		case "width":
			el.W, err = num(a)
		case "height":
			el.H, err = num(a)
		case "cx":
			el.CX, err = num(a)
		case "cy":
			el.CY, err = num(a)
		case "r":
			var r float64
			if r, err = num(a); err == nil {
				el.RX, el.RY = r, r
			}
		case "rx":
			el.RX, err = num(a)
		case "ry":
			el.RY, err = num(a)
		case "x1":
			el.X1, err = num(a)
		case "y1":
			el.Y1, err = num(a)
		case "x2":
			el.X2, err = num(a)
		case "y2":
			el.Y2, err = num(a)
		case "points":
			el.Points, err = parsePoints(a.Value)
		case "d":
			el.Path, err = parsePathData(a.Value)
		default:
			err = applyPaintAttr(&el.Paint, a)
		}
		if err != nil {
			return nil, err
		}
	}
	return el, nil
}

// parseLength parses a numeric attribute, tolerating a px suffix.
// Other units (em, %, mm, ...) are rejected: the scanner works purely in
// user units and cannot resolve relative or physical units.
func parseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	return strconv.ParseFloat(s, 64)
}

func parseViewBox(s string) (geom.BBox, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(fields) != 4 {
		return geom.BBox{}, &ParseError{Msg: fmt.Sprintf("viewBox %q needs 4 values", s)}
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geom.BBox{}, parseErrorf(err, "bad viewBox value %q", f)
		}
		v[i] = n
	}
	if v[2] < 0 || v[3] < 0 {
		return geom.BBox{}, &ParseError{Msg: fmt.Sprintf("viewBox %q has negative size", s)}
	}
	return geom.BBox{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func parsePoints(s string) ([]geom.Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(fields)%2 != 0 {
		return nil, &ParseError{Msg: fmt.Sprintf("points list %q has odd value count", s)}
	}
	pts := make([]geom.Point, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, parseErrorf(err, "bad point value %q", fields[i])
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, parseErrorf(err, "bad point value %q", fields[i+1])
		}
		pts = append(pts, geom.Point{X: x, Y: y})
	}
	return pts, nil
}

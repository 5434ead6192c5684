package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/anthonynsimon/bild/clone"
	"github.com/gogpu/gg"

	"github.com/pixelproof/svgbbox-mcp/internal/svg"
)

// Software is a CPU rasterizer backed by the gg 2D graphics library. Its
// anti-aliased analytic coverage fill is close enough to browser output
// for boundary scanning, and it needs no display or GPU.
//
// Software is stateless; each Render call builds and discards its own
// drawing context. Wrap it in a Session before sharing across goroutines.
type Software struct{}

// NewSoftware returns a software rasterizer.
func NewSoftware() *Software {
	return &Software{}
}

// Render implements Rasterizer.
func (s *Software) Render(ctx context.Context, doc *svg.Document, req Request) (*image.RGBA, error) {
	started := time.Now()

	if req.Density <= 0 {
		return nil, fmt.Errorf("render: density must be positive, got %g", req.Density)
	}
	if req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		return nil, fmt.Errorf("render: empty viewport %+v", req.Viewport)
	}

	els, err := doc.Select(req.Targets)
	if err != nil {
		return nil, err
	}

	w := int(math.Ceil(req.Viewport.Width * req.Density))
	h := int(math.Ceil(req.Viewport.Height * req.Density))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()

	if req.Background.Transparent {
		dc.Clear()
	} else {
		c := req.Background.Color
		dc.ClearWithColor(gg.RGBA{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
			A: float64(c.A) / 255,
		})
	}

	// Device transform: unit coordinates scaled by density, origin moved
	// to the viewport corner.
	view := gg.Matrix{
		A: req.Density, B: 0, C: -req.Viewport.X * req.Density,
		D: 0, E: req.Density, F: -req.Viewport.Y * req.Density,
	}

	for _, el := range els {
		if err := ctx.Err(); err != nil {
			return nil, wrapContextErr(err, started)
		}
		dc.SetTransform(view)
		dc.Transform(ggMatrix(el))
		if err := drawElement(dc, el); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, wrapContextErr(err, started)
	}
	return clone.AsRGBA(dc.Image()), nil
}

// ggMatrix converts an element CTM from SVG column order (x' = a*x + c*y + e)
// to gg's row order (x' = A*x + B*y + C).
func ggMatrix(el *svg.Element) gg.Matrix {
	m := el.CTM
	return gg.Matrix{
		A: m.A, B: m.C, C: m.E,
		D: m.B, E: m.D, F: m.F,
	}
}

// drawElement builds the element's path on dc and paints fill then stroke,
// matching SVG paint order.
func drawElement(dc *gg.Context, el *svg.Element) error {
	switch el.Kind {
	case svg.KindRect:
		if el.W <= 0 || el.H <= 0 {
			return nil
		}
		dc.DrawRectangle(el.X, el.Y, el.W, el.H)
	case svg.KindCircle, svg.KindEllipse:
		if el.RX <= 0 || el.RY <= 0 {
			return nil
		}
		dc.DrawEllipse(el.CX, el.CY, el.RX, el.RY)
	case svg.KindLine:
		dc.MoveTo(el.X1, el.Y1)
		dc.LineTo(el.X2, el.Y2)
	case svg.KindPolyline, svg.KindPolygon:
		if len(el.Points) < 2 {
			return nil
		}
		dc.MoveTo(el.Points[0].X, el.Points[0].Y)
		for _, p := range el.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		if el.Kind == svg.KindPolygon {
			dc.ClosePath()
		}
	case svg.KindPath:
		for _, cmd := range el.Path {
			switch cmd.Op {
			case 'M':
				dc.MoveTo(cmd.Args[0], cmd.Args[1])
			case 'L':
				dc.LineTo(cmd.Args[0], cmd.Args[1])
			case 'C':
				dc.CubicTo(cmd.Args[0], cmd.Args[1], cmd.Args[2], cmd.Args[3], cmd.Args[4], cmd.Args[5])
			case 'Q':
				dc.QuadraticTo(cmd.Args[0], cmd.Args[1], cmd.Args[2], cmd.Args[3])
			case 'Z':
				dc.ClosePath()
			}
		}
	default:
		return fmt.Errorf("render: unsupported element kind %v", el.Kind)
	}

	// Lines and unclosed polylines have no interior worth filling.
	fillable := el.Kind != svg.KindLine && el.Kind != svg.KindPolyline

	if el.Paint.Fill != nil && fillable {
		dc.SetColor(withOpacity(el.Paint.Fill, el.Paint.Opacity))
		if el.Paint.Stroke != nil && el.Paint.StrokeWidth > 0 {
			if err := dc.FillPreserve(); err != nil {
				return fmt.Errorf("render %s: fill: %w", el.Kind, err)
			}
		} else {
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("render %s: fill: %w", el.Kind, err)
			}
		}
	}
	if el.Paint.Stroke != nil && el.Paint.StrokeWidth > 0 {
		dc.SetColor(withOpacity(el.Paint.Stroke, el.Paint.Opacity))
		dc.SetLineWidth(el.Paint.StrokeWidth)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("render %s: stroke: %w", el.Kind, err)
		}
	}
	if el.Paint.Fill == nil && (el.Paint.Stroke == nil || el.Paint.StrokeWidth <= 0) {
		dc.ClearPath()
	}
	return nil
}

// withOpacity scales a color's alpha by the element opacity. The color is
// un-premultiplied first so that scaling only the alpha channel does not
// darken an already semi-transparent base color.
func withOpacity(c color.Color, opacity float64) color.Color {
	if opacity >= 1 {
		return c
	}
	if opacity < 0 {
		opacity = 0
	}
	nc := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	nc.A = uint16(float64(nc.A) * opacity)
	return nc
}

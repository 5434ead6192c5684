package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
	"github.com/pixelproof/svgbbox-mcp/internal/svg"
)

// CropResult contains a rendered crop region as an encoded image.
type CropResult struct {
	// Width and Height are the output image dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Box is the document-unit region the crop covers.
	Box geom.BBox `json:"box"`

	// ImageBase64 is the cropped render encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// CropToBox renders the document and returns the pixels covering box as a
// base64 PNG, optionally rescaled.
//
// The document is rendered once over the union of box and the declared
// viewport, then cropped in pixel space. Cropping an actual full render
// (rather than rendering just the box) keeps the output identical, pixel
// for pixel, to what the same region of a whole-document export contains.
func CropToBox(ctx context.Context, r Rasterizer, doc *svg.Document, box geom.BBox, density, scale float64, bg Background) (*CropResult, error) {
	if box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("crop box must have positive area, got %gx%g", box.Width, box.Height)
	}
	if density <= 0 {
		return nil, fmt.Errorf("crop density must be positive, got %g", density)
	}

	viewport := geom.Union(box, doc.ClipRect())
	img, err := r.Render(ctx, doc, Request{
		Viewport:   viewport,
		Density:    density,
		Background: bg,
	})
	if err != nil {
		return nil, err
	}

	x1 := int(math.Floor((box.X - viewport.X) * density))
	y1 := int(math.Floor((box.Y - viewport.Y) * density))
	x2 := int(math.Ceil((box.MaxX() - viewport.X) * density))
	y2 := int(math.Ceil((box.MaxY() - viewport.Y) * density))

	cropped := imaging.Crop(img, image.Rect(x1, y1, x2, y2))

	if scale > 0 && scale != 1.0 {
		newW := int(float64(cropped.Bounds().Dx()) * scale)
		newH := int(float64(cropped.Bounds().Dy()) * scale)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}
		cropped = imaging.Resize(cropped, newW, newH, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped render: %w", err)
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		Box:         box,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

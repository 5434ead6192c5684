package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
)

func decodeCrop(t *testing.T, res *CropResult) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	return raw
}

func TestCropToBox(t *testing.T) {
	doc := parseDoc(t, `<svg width="100" height="100">
		<rect x="10" y="10" width="40" height="40" fill="#000000"/>
	</svg>`)

	box := geom.BBox{X: 10, Y: 10, Width: 40, Height: 40}
	res, err := CropToBox(context.Background(), NewSoftware(), doc, box, 1, 1, TransparentBackground())
	if err != nil {
		t.Fatalf("CropToBox failed: %v", err)
	}

	if res.Width != 40 || res.Height != 40 {
		t.Errorf("dimensions: got %dx%d, want 40x40", res.Width, res.Height)
	}
	if res.Box != box {
		t.Errorf("box: got %+v, want %+v", res.Box, box)
	}
	if res.MimeType != "image/png" {
		t.Errorf("mime type: got %q", res.MimeType)
	}

	img, err := png.Decode(bytes.NewReader(decodeCrop(t, res)))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 40 {
		t.Errorf("decoded size: got %dx%d, want 40x40", img.Bounds().Dx(), img.Bounds().Dy())
	}
	// The crop frames the rect exactly, so its center is opaque content.
	if _, _, _, a := img.At(20, 20).RGBA(); a != 0xffff {
		t.Errorf("crop center alpha: got %#x, want opaque", a)
	}
}

func TestCropToBox_Density(t *testing.T) {
	doc := parseDoc(t, `<svg width="100" height="100">
		<rect width="100" height="100" fill="#000000"/>
	</svg>`)

	box := geom.BBox{X: 0, Y: 0, Width: 25, Height: 50}
	res, err := CropToBox(context.Background(), NewSoftware(), doc, box, 4, 1, TransparentBackground())
	if err != nil {
		t.Fatalf("CropToBox failed: %v", err)
	}
	if res.Width != 100 || res.Height != 200 {
		t.Errorf("dimensions at density 4: got %dx%d, want 100x200", res.Width, res.Height)
	}
}

func TestCropToBox_Scale(t *testing.T) {
	doc := parseDoc(t, `<svg width="100" height="100">
		<rect width="100" height="100" fill="#ff0000"/>
	</svg>`)

	box := geom.BBox{X: 0, Y: 0, Width: 40, Height: 40}
	res, err := CropToBox(context.Background(), NewSoftware(), doc, box, 1, 0.5, TransparentBackground())
	if err != nil {
		t.Fatalf("CropToBox failed: %v", err)
	}
	if res.Width != 20 || res.Height != 20 {
		t.Errorf("dimensions at scale 0.5: got %dx%d, want 20x20", res.Width, res.Height)
	}
}

func TestCropToBox_OutsideViewport(t *testing.T) {
	// Content overflowing the declared canvas is still renderable when the
	// crop box reaches past the viewport edge.
	doc := parseDoc(t, `<svg width="100" height="100">
		<rect x="80" y="80" width="40" height="40" fill="#000000"/>
	</svg>`)

	box := geom.BBox{X: 80, Y: 80, Width: 40, Height: 40}
	res, err := CropToBox(context.Background(), NewSoftware(), doc, box, 1, 1, TransparentBackground())
	if err != nil {
		t.Fatalf("CropToBox failed: %v", err)
	}
	if res.Width != 40 || res.Height != 40 {
		t.Fatalf("dimensions: got %dx%d, want 40x40", res.Width, res.Height)
	}

	img, err := png.Decode(bytes.NewReader(decodeCrop(t, res)))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	// Bottom-right of the crop is past the canvas but inside the rect.
	if _, _, _, a := img.At(35, 35).RGBA(); a != 0xffff {
		t.Errorf("overflow region alpha: got %#x, want opaque", a)
	}
}

func TestCropToBox_Invalid(t *testing.T) {
	doc := parseDoc(t, `<svg width="10" height="10"></svg>`)
	r := NewSoftware()

	if _, err := CropToBox(context.Background(), r, doc, geom.BBox{Width: 0, Height: 5}, 1, 1, TransparentBackground()); err == nil {
		t.Error("zero-width box should fail")
	}
	if _, err := CropToBox(context.Background(), r, doc, geom.BBox{Width: 5, Height: 5}, 0, 1, TransparentBackground()); err == nil {
		t.Error("zero density should fail")
	}
}

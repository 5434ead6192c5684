package raster

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
	"github.com/pixelproof/svgbbox-mcp/internal/svg"
)

func parseDoc(t *testing.T, src string) *svg.Document {
	t.Helper()
	doc, err := svg.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func fullRequest(doc *svg.Document, density float64) Request {
	return Request{
		Viewport:   doc.ClipRect(),
		Density:    density,
		Background: TransparentBackground(),
	}
}

func TestRender_RectCoverage(t *testing.T) {
	doc := parseDoc(t, `<svg width="100" height="100">
		<rect x="10" y="20" width="60" height="40" fill="#000000"/>
	</svg>`)

	img, err := NewSoftware().Render(context.Background(), doc, fullRequest(doc, 1))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := img.Bounds().Dx(); got != 100 {
		t.Fatalf("width: got %d, want 100", got)
	}

	inside := [][2]int{{11, 21}, {40, 40}, {69, 59}}
	for _, p := range inside {
		if a := img.RGBAAt(p[0], p[1]).A; a != 255 {
			t.Errorf("pixel (%d,%d): alpha %d, want 255", p[0], p[1], a)
		}
	}
	outside := [][2]int{{5, 5}, {9, 40}, {40, 19}, {71, 40}, {40, 61}, {99, 99}}
	for _, p := range outside {
		if a := img.RGBAAt(p[0], p[1]).A; a != 0 {
			t.Errorf("pixel (%d,%d): alpha %d, want 0", p[0], p[1], a)
		}
	}
}

func TestRender_Dimensions(t *testing.T) {
	tests := []struct {
		name     string
		viewport geom.BBox
		density  float64
		w, h     int
	}{
		{"unit density", geom.BBox{Width: 100, Height: 50}, 1, 100, 50},
		{"double density", geom.BBox{Width: 100, Height: 50}, 2, 200, 100},
		{"fractional size rounds up", geom.BBox{Width: 10.4, Height: 10.6}, 1, 11, 11},
		{"tiny viewport clamps to one pixel", geom.BBox{Width: 0.1, Height: 0.1}, 1, 1, 1},
	}

	doc := parseDoc(t, `<svg width="100" height="100"></svg>`)
	r := NewSoftware()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := r.Render(context.Background(), doc, Request{
				Viewport:   tt.viewport,
				Density:    tt.density,
				Background: TransparentBackground(),
			})
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if img.Bounds().Dx() != tt.w || img.Bounds().Dy() != tt.h {
				t.Errorf("got %dx%d, want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), tt.w, tt.h)
			}
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	doc := parseDoc(t, `<svg width="64" height="64">
		<circle cx="32" cy="32" r="20" fill="#ff0000" stroke="#000000" stroke-width="2"/>
	</svg>`)

	r := NewSoftware()
	first, err := r.Render(context.Background(), doc, fullRequest(doc, 2))
	if err != nil {
		t.Fatalf("first Render failed: %v", err)
	}
	second, err := r.Render(context.Background(), doc, fullRequest(doc, 2))
	if err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("identical requests should produce identical pixels")
	}
}

func TestRender_TargetFilter(t *testing.T) {
	doc := parseDoc(t, `<svg width="100" height="100">
		<rect id="left" x="10" y="10" width="20" height="20" fill="#000000"/>
		<rect id="right" x="60" y="60" width="20" height="20" fill="#000000"/>
	</svg>`)

	req := fullRequest(doc, 1)
	req.Targets = []string{"left"}
	img, err := NewSoftware().Render(context.Background(), doc, req)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if a := img.RGBAAt(20, 20).A; a != 255 {
		t.Errorf("target element missing: alpha %d at (20,20)", a)
	}
	if a := img.RGBAAt(70, 70).A; a != 0 {
		t.Errorf("non-target element rendered: alpha %d at (70,70)", a)
	}
}

func TestRender_UnknownTarget(t *testing.T) {
	doc := parseDoc(t, `<svg width="10" height="10"></svg>`)
	req := fullRequest(doc, 1)
	req.Targets = []string{"nope"}
	if _, err := NewSoftware().Render(context.Background(), doc, req); err == nil {
		t.Error("unknown target id should fail")
	}
}

func TestRender_OpaqueBackground(t *testing.T) {
	doc := parseDoc(t, `<svg width="20" height="20">
		<rect x="5" y="5" width="10" height="10" fill="#000000"/>
	</svg>`)

	req := fullRequest(doc, 1)
	req.Background = Background{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}
	img, err := NewSoftware().Render(context.Background(), doc, req)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("backdrop pixel: got %v, want opaque white", got)
	}
	if got := img.RGBAAt(10, 10); got != (color.RGBA{A: 255}) {
		t.Errorf("content pixel: got %v, want opaque black", got)
	}
}

func TestRender_Transform(t *testing.T) {
	doc := parseDoc(t, `<svg width="200" height="200">
		<g transform="translate(50,50)">
			<rect x="10" y="10" width="20" height="20" fill="#000000" transform="scale(2,2)"/>
		</g>
	</svg>`)

	img, err := NewSoftware().Render(context.Background(), doc, fullRequest(doc, 1))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	// The rect lands at (70,70) with size 40x40 after the composed transform.
	if a := img.RGBAAt(90, 90).A; a != 255 {
		t.Errorf("transformed interior: alpha %d, want 255", a)
	}
	if a := img.RGBAAt(60, 60).A; a != 0 {
		t.Errorf("outside transformed rect: alpha %d, want 0", a)
	}
}

func TestRender_ViewportOffset(t *testing.T) {
	doc := parseDoc(t, `<svg width="100" height="100">
		<rect x="40" y="40" width="20" height="20" fill="#000000"/>
	</svg>`)

	req := Request{
		Viewport:   geom.BBox{X: 40, Y: 40, Width: 20, Height: 20},
		Density:    1,
		Background: TransparentBackground(),
	}
	img, err := NewSoftware().Render(context.Background(), doc, req)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Fatalf("got %dx%d, want 20x20", img.Bounds().Dx(), img.Bounds().Dy())
	}
	// The whole output window sits inside the rect.
	if a := img.RGBAAt(10, 10).A; a != 255 {
		t.Errorf("center: alpha %d, want 255", a)
	}
	if a := img.RGBAAt(1, 1).A; a != 255 {
		t.Errorf("offset corner: alpha %d, want 255", a)
	}
}

func TestRender_InvalidRequest(t *testing.T) {
	doc := parseDoc(t, `<svg width="10" height="10"></svg>`)
	r := NewSoftware()

	if _, err := r.Render(context.Background(), doc, Request{
		Viewport: doc.ClipRect(),
		Density:  0,
	}); err == nil {
		t.Error("zero density should fail")
	}
	if _, err := r.Render(context.Background(), doc, Request{
		Viewport: geom.BBox{Width: 0, Height: 10},
		Density:  1,
	}); err == nil {
		t.Error("empty viewport should fail")
	}
}

func TestRender_DeadlineExceeded(t *testing.T) {
	doc := parseDoc(t, `<svg width="100" height="100">
		<rect width="50" height="50" fill="#000000"/>
	</svg>`)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := NewSoftware().Render(ctx, doc, fullRequest(doc, 1))
	if err == nil {
		t.Fatal("expired deadline should fail the render")
	}
	var timeout *RenderTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("got %T (%v), want *RenderTimeoutError", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("timeout should unwrap to context.DeadlineExceeded")
	}
}

func TestRender_Canceled(t *testing.T) {
	doc := parseDoc(t, `<svg width="100" height="100">
		<rect width="50" height="50" fill="#000000"/>
	</svg>`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSoftware().Render(ctx, doc, fullRequest(doc, 1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	var timeout *RenderTimeoutError
	if errors.As(err, &timeout) {
		t.Error("plain cancellation must not be reported as a timeout")
	}
}

func TestWithOpacity(t *testing.T) {
	c := color.NRGBA{R: 1, G: 2, B: 3, A: 4}
	if withOpacity(c, 1) != color.Color(c) {
		t.Error("full opacity should pass the color through unchanged")
	}

	opaque, ok := withOpacity(color.NRGBA{R: 10, G: 20, B: 30, A: 255}, 0.5).(color.NRGBA64)
	if !ok {
		t.Fatal("scaled color type is not NRGBA64")
	}
	if opaque.R != 10*0x101 || opaque.G != 20*0x101 || opaque.B != 30*0x101 {
		t.Errorf("channels changed by opacity: %+v", opaque)
	}
	halfAlpha := float64(0xffff) * 0.5
	if opaque.A != uint16(halfAlpha) {
		t.Errorf("alpha: got %#x, want half of opaque", opaque.A)
	}

	// A semi-transparent base keeps its full channel values; only alpha
	// scales. Premultiplied conversion would halve the red here too.
	semi := withOpacity(color.NRGBA{R: 255, A: 128}, 0.5).(color.NRGBA64)
	if semi.R != 0xffff {
		t.Errorf("red: got %#x, want 0xffff", semi.R)
	}
	if semi.A != uint16(float64(0x8080)*0.5) {
		t.Errorf("alpha: got %#x, want %#x", semi.A, uint16(float64(0x8080)*0.5))
	}
}

func TestSession_Render(t *testing.T) {
	doc := parseDoc(t, `<svg width="20" height="20">
		<rect x="5" y="5" width="10" height="10" fill="#000000"/>
	</svg>`)

	sess := NewSession(NewSoftware())
	img, err := sess.Render(context.Background(), doc, fullRequest(doc, 1))
	if err != nil {
		t.Fatalf("Session.Render failed: %v", err)
	}
	if a := img.RGBAAt(10, 10).A; a != 255 {
		t.Errorf("content pixel alpha %d, want 255", a)
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	var timeout *RenderTimeoutError
	if _, err := sess.Render(ctx, doc, fullRequest(doc, 1)); !errors.As(err, &timeout) {
		t.Errorf("expired session render: got %v, want *RenderTimeoutError", err)
	}
}

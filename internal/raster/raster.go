package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
	"github.com/pixelproof/svgbbox-mcp/internal/svg"
)

// Background describes what the rasterizer paints behind the content.
// The zero value is a fully transparent background, which is the mode the
// scanner prefers: content is then distinguishable by alpha alone.
type Background struct {
	// Transparent renders onto a cleared, zero-alpha surface.
	Transparent bool

	// Color is the opaque backdrop when Transparent is false.
	Color color.NRGBA
}

// TransparentBackground returns the default scanning background.
func TransparentBackground() Background {
	return Background{Transparent: true}
}

// Request describes one render call.
type Request struct {
	// Viewport is the document-unit region to render. Pixel (0,0) of the
	// output corresponds to the viewport's top-left corner.
	Viewport geom.BBox

	// Density is the sampling density in pixels per document unit.
	Density float64

	// Background is what non-content pixels are painted with.
	Background Background

	// Targets restricts rendering to the elements with these ids.
	// Empty means render the whole document.
	Targets []string
}

// Rasterizer renders vector content to a row-major RGBA pixel buffer.
//
// Implementations must be deterministic for unchanged input and must stop
// early with ctx.Err() when the context's deadline passes.
type Rasterizer interface {
	Render(ctx context.Context, doc *svg.Document, req Request) (*image.RGBA, error)
}

// RenderTimeoutError reports a render call that exceeded its deadline.
// The in-flight scan fails; no partial pixel buffer is ever returned.
type RenderTimeoutError struct {
	Elapsed time.Duration
	Err     error
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf("render timed out after %s", e.Elapsed)
}

func (e *RenderTimeoutError) Unwrap() error { return e.Err }

// wrapContextErr converts a context deadline failure into a
// RenderTimeoutError. Plain cancellation passes through untouched.
func wrapContextErr(err error, started time.Time) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &RenderTimeoutError{Elapsed: time.Since(started), Err: err}
	}
	return err
}

// Session grants exclusive ownership of a Rasterizer to one render call at
// a time. Driving a single rendering surface from two scans concurrently
// is undefined behavior at the rasterizer boundary, so Session serializes.
type Session struct {
	mu sync.Mutex
	r  Rasterizer
}

// NewSession wraps r in an exclusive-ownership session.
func NewSession(r Rasterizer) *Session {
	return &Session{r: r}
}

// Render acquires the session and delegates to the wrapped rasterizer.
func (s *Session) Render(ctx context.Context, doc *svg.Document, req Request) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, wrapContextErr(err, time.Now())
	}
	return s.r.Render(ctx, doc, req)
}

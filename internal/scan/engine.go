package scan

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
	"github.com/pixelproof/svgbbox-mcp/internal/raster"
	"github.com/pixelproof/svgbbox-mcp/internal/svg"
)

// passState tracks a scan through its lifecycle:
// Idle -> CoarseScan -> FineScan -> Done | Failed.
// Failed is terminal; retrying is caller policy, never the engine's.
type passState int

const (
	stateIdle passState = iota
	stateCoarseScan
	stateFineScan
	stateDone
	stateFailed
)

func (s passState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCoarseScan:
		return "coarse"
	case stateFineScan:
		return "fine"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// Box is a bounding box tagged with the coordinate space and viewBox
// policy that produced it.
type Box struct {
	Space  string `json:"space"`  // "local" or "global"
	Policy string `json:"policy"` // "full" or "clipped"
	geom.BBox
}

// Result is the outcome of one successful scan.
type Result struct {
	// Target is the scanned element id; empty for a whole-content scan.
	Target string `json:"target,omitempty"`

	// Global is the bbox in the document's global space.
	Global Box `json:"global"`

	// Local is the bbox in the target element's local space. It is only
	// present for single-element targets, and absent when GlobalOnly was
	// requested.
	Local *Box `json:"local,omitempty"`
}

// Engine drives the two-pass scan against one rasterizer session.
//
// A single Engine scans sequentially: the fine pass depends on the coarse
// pass's region, and the underlying session admits one render at a time.
// Scans of independent targets can run concurrently by giving each
// goroutine its own Engine (and thus its own session).
type Engine struct {
	session *raster.Session
}

// New creates an engine that owns a fresh exclusive session over r.
func New(r raster.Rasterizer) *Engine {
	return &Engine{session: raster.NewSession(r)}
}

// Scan computes the visually accurate bounding box of target (an element
// id, or empty for the whole content) in doc. Cancellation and render
// deadlines are carried by ctx.
func (e *Engine) Scan(ctx context.Context, doc *svg.Document, target string, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	s := &scanner{
		engine:  e,
		doc:     doc,
		target:  target,
		opts:    opts,
		matcher: newContentMatcher(opts.Background, opts.BackgroundThreshold),
		state:   stateIdle,
	}
	if target != "" {
		if _, ok := doc.ElementByID(target); !ok {
			return nil, fmt.Errorf("no element with id %q", target)
		}
		s.targets = []string{target}
	}
	return s.run(ctx)
}

// scanner holds the per-invocation state of one target's scan. It is
// created, driven through the state machine, and discarded; nothing is
// cached across invocations.
type scanner struct {
	engine  *Engine
	doc     *svg.Document
	target  string
	targets []string
	opts    Options
	matcher contentMatcher

	state  passState
	coarse geom.BBox // padded region discovered by the coarse pass
	final  geom.BBox // global box after policy and margin
	err    error
}

func (s *scanner) run(ctx context.Context) (*Result, error) {
	s.state = stateCoarseScan
	for {
		switch s.state {
		case stateCoarseScan:
			if err := s.coarsePass(ctx); err != nil {
				s.fail("coarse", err)
				continue
			}
			s.state = stateFineScan

		case stateFineScan:
			if err := s.finePass(ctx); err != nil {
				s.fail("fine", err)
				continue
			}
			s.state = stateDone

		case stateDone:
			return s.result()

		case stateFailed:
			return nil, s.err
		}
	}
}

// fail records err and moves to the terminal Failed state. Errors that do
// not already identify the target and pass get that context attached.
func (s *scanner) fail(pass string, err error) {
	switch err.(type) {
	case *EmptyContentError:
		// Already carries target and pass.
	default:
		err = fmt.Errorf("%s: %s pass: %w", s.describeTarget(), pass, err)
	}
	s.err = err
	s.state = stateFailed
}

func (s *scanner) describeTarget() string {
	if s.target == "" {
		return "whole content"
	}
	return fmt.Sprintf("target %q", s.target)
}

func (s *scanner) render(ctx context.Context, viewport geom.BBox, density float64) (*image.RGBA, error) {
	return s.engine.session.Render(ctx, s.doc, raster.Request{
		Viewport:   viewport,
		Density:    density,
		Background: s.opts.Background,
		Targets:    s.targets,
	})
}

// coarsePass renders the full candidate viewport at the coarse density
// and bounds the content extent, padded one coarse cell outward.
func (s *scanner) coarsePass(ctx context.Context) error {
	density := s.opts.CoarseDensity
	cell := 1 / density

	// The candidate viewport must cover everything the target can paint,
	// including content outside the declared viewBox (the full policy
	// reports it). The geometric envelope over-covers safely; documents
	// with no geometric extent fall back to the viewBox and let the
	// pixel scan decide.
	viewport, ok := s.doc.GeometricEnvelope(s.targets)
	if !ok {
		viewport = s.doc.ClipRect()
	}
	viewport = viewport.WithMargin(cell)
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return &EmptyContentError{Target: s.target, Pass: "coarse"}
	}

	img, err := s.render(ctx, viewport, density)
	if err != nil {
		return err
	}
	ext, found := scanExtent(img, s.matcher)
	if !found {
		return &EmptyContentError{Target: s.target, Pass: "coarse"}
	}

	region := geom.FromCorners(
		viewport.X+float64(ext.Min.X)/density-cell,
		viewport.Y+float64(ext.Min.Y)/density-cell,
		viewport.X+float64(ext.Max.X)/density+cell,
		viewport.Y+float64(ext.Max.Y)/density+cell,
	)
	// The padded region never needs to extend past the rendered viewport:
	// nothing was painted out there.
	if clamped, overlap := geom.Intersect(region, viewport); overlap {
		region = clamped
	}
	s.coarse = region
	return nil
}

// finePass re-renders only the padded coarse region at the fine density,
// re-scans, converts pixel indices back to document units, and applies
// conservative half-unit rounding, viewBox policy, and margin.
func (s *scanner) finePass(ctx context.Context) error {
	density := s.opts.FineDensity

	img, err := s.render(ctx, s.coarse, density)
	if err != nil {
		return err
	}
	ext, found := scanExtent(img, s.matcher)
	if !found {
		return &EmptyContentError{Target: s.target, Pass: "fine"}
	}

	full := geom.BBox{
		X:      floorHalf(s.coarse.X + float64(ext.Min.X)/density),
		Y:      floorHalf(s.coarse.Y + float64(ext.Min.Y)/density),
		Width:  0,
		Height: 0,
	}
	maxX := ceilHalf(s.coarse.X + float64(ext.Max.X)/density)
	maxY := ceilHalf(s.coarse.Y + float64(ext.Max.Y)/density)
	full.Width = maxX - full.X
	full.Height = maxY - full.Y

	box := full
	if s.opts.Mode == ModeClipped {
		clipped, overlap := geom.Intersect(full, s.doc.ClipRect())
		if !overlap {
			return &EmptyContentError{Target: s.target, Pass: "clipped"}
		}
		box = clipped
	}
	s.final = box.WithMargin(s.opts.MarginUnits)
	return nil
}

// result assembles the final Result, converting to the target's local
// space when applicable.
func (s *scanner) result() (*Result, error) {
	policy := s.opts.Mode.String()
	res := &Result{
		Target: s.target,
		Global: Box{Space: "global", Policy: policy, BBox: s.final},
	}

	if s.target != "" && !s.opts.GlobalOnly {
		el, _ := s.doc.ElementByID(s.target)
		local, err := geom.ToLocal(s.final, el.CTM)
		if err != nil {
			// The caller can retry with GlobalOnly to fall back to
			// global-only coordinates.
			return nil, fmt.Errorf("%s: %w", s.describeTarget(), err)
		}
		res.Local = &Box{Space: "local", Policy: policy, BBox: local}
	}
	return res, nil
}

// floorHalf rounds down to the nearest half unit.
func floorHalf(v float64) float64 { return math.Floor(v*2) / 2 }

// ceilHalf rounds up to the nearest half unit.
func ceilHalf(v float64) float64 { return math.Ceil(v*2) / 2 }

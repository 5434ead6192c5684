package scan

import (
	"fmt"

	"github.com/pixelproof/svgbbox-mcp/internal/raster"
)

// Mode selects the viewBox policy for a scan.
type Mode int

const (
	// ModeFull reports the union of all rendered pixels, ignoring any
	// declared viewBox clip. This is the default and recommended mode.
	ModeFull Mode = iota

	// ModeClipped intersects the full result with the document's declared
	// viewBox rectangle.
	ModeClipped
)

// String returns the policy tag used in results: "full" or "clipped".
func (m Mode) String() string {
	if m == ModeClipped {
		return "clipped"
	}
	return "full"
}

// ParseMode converts a policy tag back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "full":
		return ModeFull, nil
	case "clipped":
		return ModeClipped, nil
	}
	return 0, fmt.Errorf("unknown scan mode %q (want full or clipped)", s)
}

// Options configures one scan invocation. Options are immutable per
// invocation and every default is explicit; nothing depends on the
// environment.
type Options struct {
	// Mode is the viewBox policy. Default ModeFull.
	Mode Mode

	// CoarseDensity is the first-pass sampling density in samples per
	// document unit. Default 2.
	CoarseDensity float64

	// FineDensity is the second-pass sampling density in samples per
	// document unit. Must be strictly greater than CoarseDensity.
	// Default 10.
	FineDensity float64

	// MarginUnits expands the final box uniformly on every side, in
	// document units, after all scanning and clipping. Must be >= 0.
	// Default 0.
	MarginUnits float64

	// Background is what the rasterizer paints behind content. Default
	// transparent, which lets the scanner discriminate by alpha.
	Background raster.Background

	// BackgroundThreshold is how far a pixel must differ from the
	// background to count as content, on a 0-255 scale. For transparent
	// backgrounds it is compared against the alpha channel; for opaque
	// backgrounds, against perceptual (Lab) color distance scaled to the
	// same range. Default 8.
	BackgroundThreshold uint8

	// GlobalOnly skips the local-space conversion of single-element
	// results. Set it to fall back to global-only coordinates when a
	// target's CTM is known to be non-invertible. Default false.
	GlobalOnly bool
}

// DefaultOptions returns the documented defaults: full policy, coarse
// density 2, fine density 10, no margin, transparent background,
// background threshold 8.
func DefaultOptions() Options {
	return Options{
		Mode:                ModeFull,
		CoarseDensity:       2,
		FineDensity:         10,
		MarginUnits:         0,
		Background:          raster.TransparentBackground(),
		BackgroundThreshold: 8,
	}
}

// validate rejects option combinations the engine cannot honor.
func (o Options) validate() error {
	if o.CoarseDensity <= 0 {
		return fmt.Errorf("coarse density must be positive, got %g", o.CoarseDensity)
	}
	if o.FineDensity <= o.CoarseDensity {
		return fmt.Errorf("fine density %g must be strictly greater than coarse density %g",
			o.FineDensity, o.CoarseDensity)
	}
	if o.MarginUnits < 0 {
		return fmt.Errorf("margin must be >= 0, got %g", o.MarginUnits)
	}
	return nil
}

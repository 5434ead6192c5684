package scan

import (
	"image"
	"sync"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pixelproof/svgbbox-mcp/internal/raster"
)

// contentMatcher decides whether a pixel counts as content or background.
//
// With a transparent background the test is purely on alpha. With an
// opaque background color the test is perceptual Lab distance from that
// color, with the 0-255 threshold mapped onto the Lab distance range
// (a full Lab unit of distance corresponds to 255).
type contentMatcher struct {
	transparent bool
	alphaMin    uint8
	bg          colorful.Color
	distMin     float64
}

func newContentMatcher(bg raster.Background, threshold uint8) contentMatcher {
	m := contentMatcher{
		transparent: bg.Transparent,
		alphaMin:    threshold,
		distMin:     float64(threshold) / 255,
	}
	if !bg.Transparent {
		m.bg = colorful.Color{
			R: float64(bg.Color.R) / 255,
			G: float64(bg.Color.G) / 255,
			B: float64(bg.Color.B) / 255,
		}
	}
	return m
}

// matches reports whether the pixel at offset i of row is content.
func (m contentMatcher) matches(row []uint8, i int) bool {
	if m.transparent {
		return row[i+3] > m.alphaMin
	}
	c := colorful.Color{
		R: float64(row[i]) / 255,
		G: float64(row[i+1]) / 255,
		B: float64(row[i+2]) / 255,
	}
	return m.bg.DistanceLab(c) > m.distMin
}

// scanExtent finds the pixel-space rectangle enclosing every content
// pixel of img. Rows are scanned in parallel stripes; within a row only
// the first and last content pixel matter, so interior pixels of wide
// content are skipped.
//
// The second return value is false when no pixel matches, which the
// caller must surface as EmptyContentError rather than a zero box.
func scanExtent(img *image.RGBA, m contentMatcher) (image.Rectangle, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}

	var mu sync.Mutex
	minX, minY := w, h
	maxX, maxY := -1, -1

	parallel.Line(h, func(start, end int) {
		sMinX, sMinY := w, h
		sMaxX, sMaxY := -1, -1

		for y := start; y < end; y++ {
			off := img.PixOffset(b.Min.X, b.Min.Y+y)
			row := img.Pix[off : off+w*4]

			first := -1
			for x := 0; x < w; x++ {
				if m.matches(row, x*4) {
					first = x
					break
				}
			}
			if first < 0 {
				continue
			}
			last := first
			for x := w - 1; x > first; x-- {
				if m.matches(row, x*4) {
					last = x
					break
				}
			}

			if first < sMinX {
				sMinX = first
			}
			if last > sMaxX {
				sMaxX = last
			}
			if y < sMinY {
				sMinY = y
			}
			if y > sMaxY {
				sMaxY = y
			}
		}

		if sMaxX < 0 {
			return
		}
		mu.Lock()
		if sMinX < minX {
			minX = sMinX
		}
		if sMinY < minY {
			minY = sMinY
		}
		if sMaxX > maxX {
			maxX = sMaxX
		}
		if sMaxY > maxY {
			maxY = sMaxY
		}
		mu.Unlock()
	})

	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

package scan

import (
	"image"
	"image/color"
	"testing"

	"github.com/pixelproof/svgbbox-mcp/internal/raster"
)

func transparentMatcher() contentMatcher {
	return newContentMatcher(raster.TransparentBackground(), 8)
}

func TestScanExtent_Transparent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	img.SetRGBA(3, 2, color.RGBA{A: 255})
	img.SetRGBA(15, 7, color.RGBA{A: 255})

	ext, found := scanExtent(img, transparentMatcher())
	if !found {
		t.Fatal("content exists but was not found")
	}
	if want := image.Rect(3, 2, 16, 8); ext != want {
		t.Errorf("extent: got %v, want %v", ext, want)
	}
}

func TestScanExtent_SinglePixel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.SetRGBA(4, 4, color.RGBA{A: 255})

	ext, found := scanExtent(img, transparentMatcher())
	if !found {
		t.Fatal("single pixel not found")
	}
	if want := image.Rect(4, 4, 5, 5); ext != want {
		t.Errorf("extent: got %v, want %v", ext, want)
	}
}

func TestScanExtent_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	if _, found := scanExtent(img, transparentMatcher()); found {
		t.Error("blank image should report no content")
	}
}

func TestScanExtent_AlphaThreshold(t *testing.T) {
	m := newContentMatcher(raster.TransparentBackground(), 8)

	at := image.NewRGBA(image.Rect(0, 0, 4, 1))
	at.SetRGBA(1, 0, color.RGBA{A: 8}) // at threshold: not content
	if _, found := scanExtent(at, m); found {
		t.Error("alpha equal to threshold should not count as content")
	}

	above := image.NewRGBA(image.Rect(0, 0, 4, 1))
	above.SetRGBA(1, 0, color.RGBA{A: 9})
	ext, found := scanExtent(above, m)
	if !found || ext != image.Rect(1, 0, 2, 1) {
		t.Errorf("alpha above threshold: found=%v ext=%v", found, ext)
	}
}

func TestScanExtent_NonZeroOrigin(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 32, 32))
	base.SetRGBA(12, 14, color.RGBA{A: 255})
	sub := base.SubImage(image.Rect(10, 10, 30, 30)).(*image.RGBA)

	ext, found := scanExtent(sub, transparentMatcher())
	if !found {
		t.Fatal("content inside sub-image not found")
	}
	// Coordinates are relative to the buffer origin, matching how the
	// engine maps pixel indices back onto the rendered viewport.
	if want := image.Rect(2, 4, 3, 5); ext != want {
		t.Errorf("extent: got %v, want %v", ext, want)
	}
}

func TestScanExtent_OpaqueBackground(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	m := newContentMatcher(raster.Background{Color: white}, 8)

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	// A near-white pixel stays under the perceptual threshold.
	img.SetRGBA(1, 1, color.RGBA{R: 254, G: 254, B: 254, A: 255})
	// Gray and black are clearly content.
	img.SetRGBA(3, 3, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	img.SetRGBA(7, 6, color.RGBA{A: 255})

	ext, found := scanExtent(img, m)
	if !found {
		t.Fatal("content on opaque background not found")
	}
	if want := image.Rect(3, 3, 8, 7); ext != want {
		t.Errorf("extent: got %v, want %v", ext, want)
	}
}

func TestScanExtent_FullCoverage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	ext, found := scanExtent(img, transparentMatcher())
	if !found || ext != image.Rect(0, 0, 6, 4) {
		t.Errorf("full coverage: found=%v ext=%v", found, ext)
	}
}

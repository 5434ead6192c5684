package svg

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// namedColors covers the handful of CSS keywords that show up in
// hand-written and tool-generated test documents. Anything else must use
// hex notation.
var namedColors = map[string]color.NRGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"magenta": {255, 0, 255, 255},
	"cyan":    {0, 255, 255, 255},
	"orange":  {255, 165, 0, 255},
}

// ParseColor parses a fill/stroke value. "none" and "transparent" return a
// nil color, meaning the property does not paint.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none", "transparent":
		return nil, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		if len(s) == 4 {
			// #rgb shorthand, expanded before handing to colorful.
			s = fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3])
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, parseErrorf(err, "bad color %q", s)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	}
	return nil, &ParseError{Msg: fmt.Sprintf("unsupported color %q", s)}
}

// defaultPaint mirrors SVG initial values: black fill, no stroke,
// stroke-width 1, fully opaque.
func defaultPaint() Paint {
	return Paint{
		Fill:        color.NRGBA{A: 255},
		StrokeWidth: 1,
		Opacity:     1,
	}
}

// applyPaintAttr folds one presentation attribute into p. Attributes that
// are not paint-related are ignored.
func applyPaintAttr(p *Paint, a xml.Attr) error {
	switch a.Name.Local {
	case "fill":
		c, err := ParseColor(a.Value)
		if err != nil {
			return err
		}
		p.Fill = c
	case "stroke":
		c, err := ParseColor(a.Value)
		if err != nil {
			return err
		}
		p.Stroke = c
	case "stroke-width":
		w, err := parseLength(a.Value)
		if err != nil {
			return parseErrorf(err, "bad stroke-width %q", a.Value)
		}
		p.StrokeWidth = w
	case "opacity", "fill-opacity":
		o, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
		if err != nil {
			return parseErrorf(err, "bad opacity %q", a.Value)
		}
		if o < 0 {
			o = 0
		}
		if o > 1 {
			o = 1
		}
		p.Opacity *= o
	}
	return nil
}

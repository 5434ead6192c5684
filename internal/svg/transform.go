package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
)

// parseTransform parses an SVG transform list such as
// "translate(50,50) scale(2)" into a single composed matrix. Functions are
// composed left to right, matching SVG semantics where the leftmost
// function is applied last to points.
func parseTransform(s string) (geom.Matrix, error) {
	m := geom.Identity()
	rest := strings.TrimSpace(s)

	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return geom.Matrix{}, &ParseError{Msg: fmt.Sprintf("transform %q: missing '('", s)}
		}
		close := strings.IndexByte(rest, ')')
		if close < open {
			return geom.Matrix{}, &ParseError{Msg: fmt.Sprintf("transform %q: missing ')'", s)}
		}

		name := strings.TrimSpace(rest[:open])
		args, err := parseTransformArgs(rest[open+1 : close])
		if err != nil {
			return geom.Matrix{}, parseErrorf(err, "transform %q", s)
		}

		fn, err := transformFunc(name, args)
		if err != nil {
			return geom.Matrix{}, err
		}
		m = m.Mul(fn)

		rest = strings.TrimSpace(rest[close+1:])
		rest = strings.TrimPrefix(rest, ",")
		rest = strings.TrimSpace(rest)
	}
	return m, nil
}

func parseTransformArgs(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	args := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad argument %q: %w", f, err)
		}
		args = append(args, v)
	}
	return args, nil
}

func transformFunc(name string, args []float64) (geom.Matrix, error) {
	bad := func() (geom.Matrix, error) {
		return geom.Matrix{}, &ParseError{
			Msg: fmt.Sprintf("transform function %s with %d arguments", name, len(args)),
		}
	}

	switch name {
	case "translate":
		switch len(args) {
		case 1:
			return geom.Translate(args[0], 0), nil
		case 2:
			return geom.Translate(args[0], args[1]), nil
		}
		return bad()
	case "scale":
		switch len(args) {
		case 1:
			return geom.Scale(args[0], args[0]), nil
		case 2:
			return geom.Scale(args[0], args[1]), nil
		}
		return bad()
	case "rotate":
		switch len(args) {
		case 1:
			return geom.Rotate(args[0] * math.Pi / 180), nil
		case 3:
			// rotate(a, cx, cy) = translate(cx,cy) rotate(a) translate(-cx,-cy)
			return geom.Translate(args[1], args[2]).
				Mul(geom.Rotate(args[0] * math.Pi / 180)).
				Mul(geom.Translate(-args[1], -args[2])), nil
		}
		return bad()
	case "skewX":
		if len(args) == 1 {
			return geom.Matrix{A: 1, D: 1, C: math.Tan(args[0] * math.Pi / 180)}, nil
		}
		return bad()
	case "skewY":
		if len(args) == 1 {
			return geom.Matrix{A: 1, D: 1, B: math.Tan(args[0] * math.Pi / 180)}, nil
		}
		return bad()
	case "matrix":
		if len(args) == 6 {
			return geom.Matrix{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]}, nil
		}
		return bad()
	}
	return geom.Matrix{}, &ParseError{Msg: fmt.Sprintf("unknown transform function %q", name)}
}

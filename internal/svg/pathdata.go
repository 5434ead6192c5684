package svg

import (
	"fmt"
	"strconv"
	"strings"
)

// parsePathData parses an SVG path d attribute into absolute commands.
// Supported: M/m, L/l, H/h, V/v, C/c, Q/q, Z/z. The arc (A) and shorthand
// (S, T) commands are rejected; documents that need them should be
// pre-flattened by the producing tool.
func parsePathData(s string) ([]PathCmd, error) {
	lex := pathLexer{src: s}
	var cmds []PathCmd

	var cx, cy float64         // current point
	var startX, startY float64 // subpath start, for Z
	haveStart := false

	for {
		op, ok := lex.nextOp()
		if !ok {
			break
		}
		rel := op >= 'a' && op <= 'z'
		abs := func(dx, dy, x, y float64) (float64, float64) {
			if rel {
				return dx + x, dy + y
			}
			return x, y
		}

		switch op {
		case 'M', 'm':
			first := true
			for lex.hasNumber() {
				x, y, err := lex.pair(op)
				if err != nil {
					return nil, err
				}
				x, y = abs(cx, cy, x, y)
				cx, cy = x, y
				if first {
					cmds = append(cmds, PathCmd{Op: 'M', Args: []float64{x, y}})
					startX, startY = x, y
					haveStart = true
					first = false
				} else {
					// Extra coordinate pairs after a moveto are implicit linetos.
					cmds = append(cmds, PathCmd{Op: 'L', Args: []float64{x, y}})
				}
			}
			if first {
				return nil, &ParseError{Msg: "path: moveto without coordinates"}
			}

		case 'L', 'l':
			for lex.hasNumber() {
				x, y, err := lex.pair(op)
				if err != nil {
					return nil, err
				}
				x, y = abs(cx, cy, x, y)
				cx, cy = x, y
				cmds = append(cmds, PathCmd{Op: 'L', Args: []float64{x, y}})
			}

		case 'H', 'h':
			for lex.hasNumber() {
				x, err := lex.number(op)
				if err != nil {
					return nil, err
				}
				if rel {
					x += cx
				}
				cx = x
				cmds = append(cmds, PathCmd{Op: 'L', Args: []float64{cx, cy}})
			}

		case 'V', 'v':
			for lex.hasNumber() {
				y, err := lex.number(op)
				if err != nil {
					return nil, err
				}
				if rel {
					y += cy
				}
				cy = y
				cmds = append(cmds, PathCmd{Op: 'L', Args: []float64{cx, cy}})
			}

		case 'C', 'c':
			for lex.hasNumber() {
				x1, y1, err := lex.pair(op)
				if err != nil {
					return nil, err
				}
				x2, y2, err := lex.pair(op)
				if err != nil {
					return nil, err
				}
				x, y, err := lex.pair(op)
				if err != nil {
					return nil, err
				}
				x1, y1 = abs(cx, cy, x1, y1)
				x2, y2 = abs(cx, cy, x2, y2)
				x, y = abs(cx, cy, x, y)
				cx, cy = x, y
				cmds = append(cmds, PathCmd{Op: 'C', Args: []float64{x1, y1, x2, y2, x, y}})
			}

		case 'Q', 'q':
			for lex.hasNumber() {
				x1, y1, err := lex.pair(op)
				if err != nil {
					return nil, err
				}
				x, y, err := lex.pair(op)
				if err != nil {
					return nil, err
				}
				x1, y1 = abs(cx, cy, x1, y1)
				x, y = abs(cx, cy, x, y)
				cx, cy = x, y
				cmds = append(cmds, PathCmd{Op: 'Q', Args: []float64{x1, y1, x, y}})
			}

		case 'Z', 'z':
			if haveStart {
				cx, cy = startX, startY
			}
			cmds = append(cmds, PathCmd{Op: 'Z'})

		default:
			return nil, &ParseError{Msg: fmt.Sprintf("path: unsupported command %q", string(op))}
		}
	}

	if lex.err != nil {
		return nil, lex.err
	}
	return cmds, nil
}

// pathLexer tokenizes SVG path data: single-letter commands and numbers
// separated by whitespace or commas.
type pathLexer struct {
	src string
	pos int
	err error
}

func (l *pathLexer) skipSeparators() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		return
	}
}

func (l *pathLexer) nextOp() (byte, bool) {
	l.skipSeparators()
	if l.pos >= len(l.src) || l.err != nil {
		return 0, false
	}
	c := l.src[l.pos]
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		l.pos++
		return c, true
	}
	l.err = &ParseError{Msg: fmt.Sprintf("path: expected command at %q", l.src[l.pos:])}
	return 0, false
}

func (l *pathLexer) hasNumber() bool {
	l.skipSeparators()
	if l.pos >= len(l.src) || l.err != nil {
		return false
	}
	c := l.src[l.pos]
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func (l *pathLexer) number(op byte) (float64, error) {
	l.skipSeparators()
	start := l.pos
	if l.pos < len(l.src) && (l.src[l.pos] == '-' || l.src[l.pos] == '+') {
		l.pos++
	}
	seenDot := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c >= '0' && c <= '9' {
			l.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			l.pos++
			continue
		}
		if (c == 'e' || c == 'E') && l.pos > start {
			l.pos++
			if l.pos < len(l.src) && (l.src[l.pos] == '-' || l.src[l.pos] == '+') {
				l.pos++
			}
			continue
		}
		break
	}
	text := l.src[start:l.pos]
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, &ParseError{
			Msg: fmt.Sprintf("path: command %q: bad number %q", string(op), text),
			Err: err,
		}
	}
	return v, nil
}

func (l *pathLexer) pair(op byte) (float64, float64, error) {
	x, err := l.number(op)
	if err != nil {
		return 0, 0, err
	}
	y, err := l.number(op)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

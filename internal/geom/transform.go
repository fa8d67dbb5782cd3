package geom

import (
	"strconv"
	"strings"
)

// Transform is a translate plus scale applied to a visual node.
type Transform struct {
	X, Y           float64
	ScaleX, ScaleY float64
}

// Identity returns a transform that leaves a node untouched.
func Identity() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Translate returns a pure translation transform.
func Translate(p Point) Transform {
	return Transform{X: p.X, Y: p.Y, ScaleX: 1, ScaleY: 1}
}

// IsIdentity returns true if the transform neither moves nor scales.
func (t Transform) IsIdentity() bool {
	return t.X == 0 && t.Y == 0 && t.ScaleX == 1 && t.ScaleY == 1
}

// Apply returns the rect as it appears after the transform, scaling from
// the rect's top-left corner.
func (t Transform) Apply(r Rect) Rect {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return Rect{Left: r.Left + t.X, Top: r.Top + t.Y, Width: r.Width * sx, Height: r.Height * sy}
}

// String renders the transform as a CSS transform value.
func (t Transform) String() string {
	var b strings.Builder
	b.WriteString("translate3d(")
	b.WriteString(strconv.FormatFloat(t.X, 'f', -1, 64))
	b.WriteString("px, ")
	b.WriteString(strconv.FormatFloat(t.Y, 'f', -1, 64))
	b.WriteString("px, 0) scaleX(")
	b.WriteString(strconv.FormatFloat(t.ScaleX, 'f', -1, 64))
	b.WriteString(") scaleY(")
	b.WriteString(strconv.FormatFloat(t.ScaleY, 'f', -1, 64))
	b.WriteString(")")
	return b.String()
}

// ParseTransform parses a computed CSS transform in matrix(a, b, c, d, e, f)
// or matrix3d(16 values) form. The second return is false for "none", empty
// or malformed values.
func ParseTransform(s string) (Transform, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "matrix3d(") && strings.HasSuffix(s, ")"):
		v, ok := parseFloats(s[len("matrix3d("):len(s)-1], 16)
		if !ok {
			return Transform{}, false
		}
		return Transform{X: v[12], Y: v[13], ScaleX: v[0], ScaleY: v[5]}, true
	case strings.HasPrefix(s, "matrix(") && strings.HasSuffix(s, ")"):
		v, ok := parseFloats(s[len("matrix("):len(s)-1], 6)
		if !ok {
			return Transform{}, false
		}
		return Transform{X: v[4], Y: v[5], ScaleX: v[0], ScaleY: v[3]}, true
	}
	return Transform{}, false
}

// ParseOrigin parses a computed transform-origin such as "12px 30.5px".
// Missing or malformed components are zero.
func ParseOrigin(s string) Point {
	fields := strings.Fields(s)
	var p Point
	if len(fields) > 0 {
		p.X = parseLength(fields[0])
	}
	if len(fields) > 1 {
		p.Y = parseLength(fields[1])
	}
	return p
}

// InverseTransform undoes a translate+scale transform applied around origin,
// returning the rect the node occupies in layout before the transform.
func InverseTransform(r Rect, t Transform, origin Point) Rect {
	left := r.Left - t.X - (1-t.ScaleX)*origin.X
	top := r.Top - t.Y - (1-t.ScaleY)*origin.Y
	width := r.Width
	if t.ScaleX != 0 {
		width = r.Width / t.ScaleX
	}
	height := r.Height
	if t.ScaleY != 0 {
		height = r.Height / t.ScaleY
	}
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

func parseFloats(s string, n int) ([]float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func parseLength(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

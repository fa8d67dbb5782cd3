package geom

// Rect represents a rectangle in client coordinates.
// Left and Top are the top-left corner; Width and Height are dimensions.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// NewRect creates a new Rect with the given position and dimensions.
func NewRect(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the area of the rectangle.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Contains returns true if the point (x, y) is inside the rectangle.
// Points on all four edges are inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right() && y >= r.Top && y <= r.Bottom()
}

// Translate returns a new Rect moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Width: r.Width, Height: r.Height}
}

// Offset returns a new Rect moved by the point delta.
func (r Rect) Offset(delta Point) Rect {
	return r.Translate(delta.X, delta.Y)
}

// Intersect returns the intersection of two rectangles.
// If the rectangles don't overlap, returns an empty Rect.
func (r Rect) Intersect(other Rect) Rect {
	left := max(r.Left, other.Left)
	top := max(r.Top, other.Top)
	right := min(r.Right(), other.Right())
	bottom := min(r.Bottom(), other.Bottom())

	width := right - left
	height := bottom - top
	if width <= 0 || height <= 0 {
		return Rect{}
	}
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// Union returns the smallest rectangle that contains both rectangles.
// If either rectangle is empty, returns the other rectangle.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	left := min(r.Left, other.Left)
	top := min(r.Top, other.Top)
	right := max(r.Right(), other.Right())
	bottom := max(r.Bottom(), other.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Intersects returns true if the two rectangles overlap.
// Touching edges do not count as overlapping.
func (r Rect) Intersects(other Rect) bool {
	return !r.Intersect(other).IsEmpty()
}

// IntersectionRatio returns the intersection area divided by the union area
// of the two rectangles (their IoU), in [0, 1].
func (r Rect) IntersectionRatio(other Rect) float64 {
	inter := r.Intersect(other).Area()
	if inter == 0 {
		return 0
	}
	union := r.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Center returns the centroid of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Corners returns the four corners in the order top-left, top-right,
// bottom-left, bottom-right.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.Left, Y: r.Top},
		{X: r.Right(), Y: r.Top},
		{X: r.Left, Y: r.Bottom()},
		{X: r.Right(), Y: r.Bottom()},
	}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Delta returns the top/left difference between r and other (r - other).
// A non-zero delta between two measurements of the same node means its
// layout shifted.
func Delta(r, other Rect) Point {
	return Point{X: r.Left - other.Left, Y: r.Top - other.Top}
}

// PointRect returns a zero-size rect at p.
func PointRect(p Point) Rect {
	return Rect{Left: p.X, Top: p.Y}
}

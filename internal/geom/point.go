package geom

import "math"

// Point represents an (X, Y) coordinate in pixels.
type Point struct {
	X, Y float64
}

// Add returns a new Point offset by other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns a new Point with other subtracted.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns a new Point with both components multiplied by k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Distance returns the Euclidean distance between p and other.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Length returns the Euclidean length of the point treated as a vector.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// IsZero returns true if both components are zero.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// In returns true if the point is inside the given rectangle.
func (p Point) In(r Rect) bool {
	return r.Contains(p.X, p.Y)
}

// ExceedsDistance reports whether the delta p has moved further than the
// threshold. A threshold with one zero axis checks only the other axis, a
// threshold with both axes set checks each axis independently.
func (p Point) ExceedsDistance(threshold Point) bool {
	dx := math.Abs(p.X)
	dy := math.Abs(p.Y)
	switch {
	case threshold.X > 0 && threshold.Y > 0:
		return dx > threshold.X || dy > threshold.Y
	case threshold.X > 0:
		return dx > threshold.X
	case threshold.Y > 0:
		return dy > threshold.Y
	}
	return false
}

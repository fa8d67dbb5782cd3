// geometry.go re-exports geometry types from internal/geom.
// Any changes to internal/geom types must be mirrored here.
package dnd

import "github.com/grindlemire/go-dnd/internal/geom"

// Rect represents a rectangle in client coordinates.
type Rect = geom.Rect

// Point represents an (X, Y) coordinate.
type Point = geom.Point

// Transform is a translate plus scale applied to a visual node.
type Transform = geom.Transform

// ScrollRect is a measured rect that stays correct while ancestors scroll.
type ScrollRect = geom.ScrollRect

// NewRect creates a new Rect with the given position and dimensions.
func NewRect(left, top, width, height float64) Rect {
	return geom.NewRect(left, top, width, height)
}

// IdentityTransform returns a transform that leaves a node untouched.
func IdentityTransform() Transform {
	return geom.Identity()
}

// RectDelta returns the top/left difference between two measurements of a node.
func RectDelta(current, previous Rect) Point {
	return geom.Delta(current, previous)
}

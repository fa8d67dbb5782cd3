package dnd

import "math"

// DeltaModifier adjusts the drag delta before collision detection and
// before the proxy transform is published.
type DeltaModifier func(delta Point) Point

// RestrictToVerticalAxis drops horizontal movement.
func RestrictToVerticalAxis(delta Point) Point {
	return Point{Y: delta.Y}
}

// RestrictToHorizontalAxis drops vertical movement.
func RestrictToHorizontalAxis(delta Point) Point {
	return Point{X: delta.X}
}

// SnapToGrid rounds movement to multiples of size.
func SnapToGrid(size float64) DeltaModifier {
	return func(delta Point) Point {
		if size <= 0 {
			return delta
		}
		return Point{
			X: math.Round(delta.X/size) * size,
			Y: math.Round(delta.Y/size) * size,
		}
	}
}

func applyModifiers(mods []DeltaModifier, delta Point) Point {
	for _, mod := range mods {
		delta = mod(delta)
	}
	return delta
}

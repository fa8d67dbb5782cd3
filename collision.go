package dnd

import (
	"math"
	"slices"
)

// CollisionCandidate is a drop target with its current rect.
type CollisionCandidate struct {
	ID   string
	Rect Rect
}

// Collision is a ranked drop target. Value is the metric the detector
// sorted by: a distance for the closest-* detectors, an overlap ratio for
// RectIntersection.
type Collision struct {
	ID    string
	Value float64
}

// CollisionArgs is the input to a CollisionDetector.
type CollisionArgs struct {
	// Dragged is the rect of the dragged proxy.
	Dragged Rect
	// Pointer is the pointer position; nil for keyboard sessions.
	Pointer *Point
	// Candidates are the eligible drop targets in registration order.
	Candidates []CollisionCandidate
}

// CollisionDetector ranks candidates; the first result is the drop target.
// Detectors are pure and keep candidates with equal metrics in input order.
type CollisionDetector func(args CollisionArgs) []Collision

// ClosestCenter ranks candidates by the distance between their centroid
// and the dragged rect's centroid, ascending.
func ClosestCenter(args CollisionArgs) []Collision {
	center := args.Dragged.Center()
	out := make([]Collision, 0, len(args.Candidates))
	for _, c := range args.Candidates {
		out = append(out, Collision{ID: c.ID, Value: center.Distance(c.Rect.Center())})
	}
	sortAscending(out)
	return out
}

// ClosestCorners ranks candidates by the mean distance between their four
// corners and the matching corners of the dragged rect, ascending.
func ClosestCorners(args CollisionArgs) []Collision {
	dragged := args.Dragged.Corners()
	out := make([]Collision, 0, len(args.Candidates))
	for _, c := range args.Candidates {
		out = append(out, Collision{ID: c.ID, Value: meanCornerDistance(dragged, c.Rect.Corners())})
	}
	sortAscending(out)
	return out
}

// RectIntersection ranks candidates by intersection area over union area,
// descending. Candidates that do not overlap the dragged rect are omitted.
func RectIntersection(args CollisionArgs) []Collision {
	out := make([]Collision, 0, len(args.Candidates))
	for _, c := range args.Candidates {
		ratio := args.Dragged.IntersectionRatio(c.Rect)
		if ratio > 0 {
			out = append(out, Collision{ID: c.ID, Value: ratio})
		}
	}
	sortDescending(out)
	return out
}

// PointerWithin ranks the candidates that contain the pointer by mean
// corner distance to the dragged rect, ascending. Without a pointer it
// falls back to RectIntersection.
func PointerWithin(args CollisionArgs) []Collision {
	if args.Pointer == nil {
		return RectIntersection(args)
	}
	dragged := args.Dragged.Corners()
	out := make([]Collision, 0, len(args.Candidates))
	for _, c := range args.Candidates {
		if c.Rect.Contains(args.Pointer.X, args.Pointer.Y) {
			out = append(out, Collision{ID: c.ID, Value: meanCornerDistance(dragged, c.Rect.Corners())})
		}
	}
	sortAscending(out)
	return out
}

func meanCornerDistance(a, b [4]Point) float64 {
	var sum float64
	for i := range a {
		sum += a[i].Distance(b[i])
	}
	return sum / float64(len(a))
}

func sortAscending(c []Collision) {
	slices.SortStableFunc(c, func(a, b Collision) int {
		return compareFloat(a.Value, b.Value)
	})
}

func sortDescending(c []Collision) {
	slices.SortStableFunc(c, func(a, b Collision) int {
		return compareFloat(b.Value, a.Value)
	})
}

// compareFloat orders NaN after every number so a bad rect never wins.
func compareFloat(a, b float64) int {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0
	case math.IsNaN(a):
		return 1
	case math.IsNaN(b):
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

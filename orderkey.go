package dnd

import "math"

// DefaultRenumberEpsilon is the smallest gap tolerated between adjacent
// keys before a container is renumbered.
const DefaultRenumberEpsilon = 1e-6

// OrderKeyAt returns the key for an item inserted at index into a
// container whose remaining keys are siblings, in ascending order. It
// never rewrites siblings: an empty container gets 1, the front gets
// first-1, the end gets last+1 and anything else the midpoint of its
// neighbours.
func OrderKeyAt(siblings []float64, index int) float64 {
	n := len(siblings)
	switch {
	case n == 0:
		return 1
	case index <= 0:
		return siblings[0] - 1
	case index >= n:
		return siblings[n-1] + 1
	default:
		return (siblings[index-1] + siblings[index]) / 2
	}
}

// NeedsRenumber reports whether any two adjacent keys are closer than
// epsilon. Keys must be sorted ascending.
func NeedsRenumber(keys []float64, epsilon float64) bool {
	if epsilon <= 0 {
		epsilon = DefaultRenumberEpsilon
	}
	for i := 1; i < len(keys); i++ {
		if math.Abs(keys[i]-keys[i-1]) < epsilon {
			return true
		}
	}
	return false
}

// RenumberedKeys returns the keys 1..n.
func RenumberedKeys(n int) []float64 {
	keys := make([]float64, n)
	for i := range keys {
		keys[i] = float64(i + 1)
	}
	return keys
}

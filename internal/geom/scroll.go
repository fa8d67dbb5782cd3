package geom

// OffsetFunc reports the current summed scroll offset of a node's
// scrollable ancestors.
type OffsetFunc func() Point

// ScrollRect is a rect measured once whose accessors stay correct while
// ancestors scroll: every read subtracts the scroll delta accumulated since
// the measurement was taken.
type ScrollRect struct {
	measured Rect
	initial  Point
	offsets  OffsetFunc
}

// NewScrollRect captures r together with the ancestors' offsets at the time
// of measurement. A nil offsets func yields a static rect.
func NewScrollRect(r Rect, offsets OffsetFunc) ScrollRect {
	sr := ScrollRect{measured: r, offsets: offsets}
	if offsets != nil {
		sr.initial = offsets()
	}
	return sr
}

// ScrollDelta returns how far the ancestors have scrolled since measurement.
func (s ScrollRect) ScrollDelta() Point {
	if s.offsets == nil {
		return Point{}
	}
	return s.offsets().Sub(s.initial)
}

// Left returns the scroll-adjusted left edge.
func (s ScrollRect) Left() float64 { return s.measured.Left - s.ScrollDelta().X }

// Top returns the scroll-adjusted top edge.
func (s ScrollRect) Top() float64 { return s.measured.Top - s.ScrollDelta().Y }

// Right returns the scroll-adjusted right edge.
func (s ScrollRect) Right() float64 { return s.Left() + s.measured.Width }

// Bottom returns the scroll-adjusted bottom edge.
func (s ScrollRect) Bottom() float64 { return s.Top() + s.measured.Height }

// Width returns the measured width.
func (s ScrollRect) Width() float64 { return s.measured.Width }

// Height returns the measured height.
func (s ScrollRect) Height() float64 { return s.measured.Height }

// Measured returns the rect as it was at measurement time.
func (s ScrollRect) Measured() Rect { return s.measured }

// Rect returns the current scroll-adjusted rect.
func (s ScrollRect) Rect() Rect {
	d := s.ScrollDelta()
	return s.measured.Translate(-d.X, -d.Y)
}

package dnd

import (
	"math"
	"slices"
	"time"
)

// AutoScrollActivator selects what is tested against the edge bands.
type AutoScrollActivator uint8

const (
	// ActivateOnDraggableRect uses the dragged rect.
	ActivateOnDraggableRect AutoScrollActivator = iota
	// ActivateOnPointer uses the pointer coordinates.
	ActivateOnPointer
)

// TraversalOrder is the order scroll ancestors are tried in.
type TraversalOrder uint8

const (
	// TreeOrder tries the closest ancestor first.
	TreeOrder TraversalOrder = iota
	// ReversedTreeOrder tries the outermost ancestor first.
	ReversedTreeOrder
)

// ScrollDirection is the scroll direction along one axis.
type ScrollDirection int8

const (
	ScrollBackward ScrollDirection = -1
	ScrollNone     ScrollDirection = 0
	ScrollForward  ScrollDirection = 1
)

// AutoScrollOptions configures edge auto-scrolling.
type AutoScrollOptions struct {
	Enabled   bool
	Activator AutoScrollActivator
	Order     TraversalOrder
	// Threshold is the edge band as a fraction of the container's size.
	Threshold Point
	// Acceleration is the speed in pixels per tick at full penetration.
	Acceleration float64
	Interval     time.Duration
}

// DefaultAutoScrollOptions returns a 20% band, acceleration 10 and a 5ms
// tick.
func DefaultAutoScrollOptions() AutoScrollOptions {
	return AutoScrollOptions{
		Enabled:      true,
		Activator:    ActivateOnDraggableRect,
		Order:        TreeOrder,
		Threshold:    Point{X: 0.2, Y: 0.2},
		Acceleration: 10,
		Interval:     5 * time.Millisecond,
	}
}

// ScrollVector is a direction and speed on each axis.
type ScrollVector struct {
	X, Y           ScrollDirection
	SpeedX, SpeedY float64
}

// IsZero reports whether nothing needs scrolling.
func (v ScrollVector) IsZero() bool {
	return v.X == ScrollNone && v.Y == ScrollNone
}

// Delta returns the scroll amount for one tick.
func (v ScrollVector) Delta() Point {
	return Point{X: float64(v.X) * v.SpeedX, Y: float64(v.Y) * v.SpeedY}
}

// ScrollDirectionAndSpeed computes how container should scroll while
// target sits in its edge bands. A direction is only reported if the
// container can still scroll that way. Speed grows linearly with how deep
// target is inside the band.
func ScrollDirectionAndSpeed(container Rect, offset, maxScroll Point, target Rect, acceleration float64, threshold Point) ScrollVector {
	var v ScrollVector
	band := Point{X: container.Width * threshold.X, Y: container.Height * threshold.Y}

	if band.Y > 0 {
		switch {
		case offset.Y > 0 && target.Top <= container.Top+band.Y:
			v.Y = ScrollBackward
			v.SpeedY = acceleration * math.Abs((container.Top+band.Y-target.Top)/band.Y)
		case offset.Y < maxScroll.Y && target.Bottom() >= container.Bottom()-band.Y:
			v.Y = ScrollForward
			v.SpeedY = acceleration * math.Abs((container.Bottom()-band.Y-target.Bottom())/band.Y)
		}
	}
	if band.X > 0 {
		switch {
		case offset.X > 0 && target.Left <= container.Left+band.X:
			v.X = ScrollBackward
			v.SpeedX = acceleration * math.Abs((container.Left+band.X-target.Left)/band.X)
		case offset.X < maxScroll.X && target.Right() >= container.Right()-band.X:
			v.X = ScrollForward
			v.SpeedX = acceleration * math.Abs((container.Right()-band.X-target.Right())/band.X)
		}
	}
	return v
}

// scrollIntent is the last non-zero movement direction on each axis.
type scrollIntent struct {
	x, y ScrollDirection
}

func (i *scrollIntent) track(change Point) {
	if d := signOf(change.X); d != ScrollNone {
		i.x = d
	}
	if d := signOf(change.Y); d != ScrollNone {
		i.y = d
	}
}

// filter drops axes whose direction disagrees with the intent.
func (i scrollIntent) filter(v ScrollVector) ScrollVector {
	if v.X != i.x {
		v.X, v.SpeedX = ScrollNone, 0
	}
	if v.Y != i.y {
		v.Y, v.SpeedY = ScrollNone, 0
	}
	return v
}

func signOf(f float64) ScrollDirection {
	switch {
	case f > 0:
		return ScrollForward
	case f < 0:
		return ScrollBackward
	default:
		return ScrollNone
	}
}

// autoScroller scrolls ancestors while the dragged rect sits in an edge
// band. It runs a recurring timer only while something needs scrolling.
type autoScroller struct {
	c         *Coordinator
	opts      AutoScrollOptions
	ancestors []Scrollable
	intent    scrollIntent
	timer     Timer
}

func (a *autoScroller) setAncestors(ancestors []Scrollable) {
	if a.opts.Order == ReversedTreeOrder {
		ancestors = slices.Clone(ancestors)
		slices.Reverse(ancestors)
	}
	a.ancestors = ancestors
}

// next returns the first ancestor that should scroll and by how much.
func (a *autoScroller) next() (Scrollable, Point, bool) {
	s := a.c.session
	if s == nil {
		return nil, Point{}, false
	}
	target := s.draggedRect()
	if a.opts.Activator == ActivateOnPointer {
		target = NewRect(s.coords.X, s.coords.Y, 0, 0)
	}
	for _, sc := range a.ancestors {
		v := ScrollDirectionAndSpeed(sc.Rect(), sc.ScrollOffset(), sc.MaxScroll(), target, a.opts.Acceleration, a.opts.Threshold)
		v = a.intent.filter(v)
		if !v.IsZero() {
			return sc, v.Delta(), true
		}
	}
	return nil, Point{}, false
}

// update starts the ticker when an ancestor needs scrolling.
func (a *autoScroller) update() {
	if a.timer != nil {
		return
	}
	if _, _, ok := a.next(); !ok {
		return
	}
	a.timer = a.c.sched.Every(a.opts.Interval, a.tick)
}

func (a *autoScroller) tick() {
	sc, delta, ok := a.next()
	if !ok {
		a.stop()
		return
	}
	a.c.callHost("autoscroll", func() { sc.ScrollBy(delta) })
	a.c.refresh()
}

func (a *autoScroller) stop() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

package dnd

import "github.com/grindlemire/go-dnd/internal/geom"

// SortingArgs is the input to a SortingStrategy for one item.
type SortingArgs struct {
	// Rects are the measured rects of the list, in order.
	Rects []Rect
	// ActiveIndex is the active item's index, or len(Rects) when the
	// active item comes from another list.
	ActiveIndex int
	OverIndex   int
	Index       int
	// ActiveRect is the active item's rect, used when it is not in Rects.
	ActiveRect Rect
}

func (a SortingArgs) activeRect() Rect {
	if a.ActiveIndex >= 0 && a.ActiveIndex < len(a.Rects) {
		return a.Rects[a.ActiveIndex]
	}
	return a.ActiveRect
}

// SortingStrategy returns the preview transform for the item at
// args.Index while the active item hovers at args.OverIndex.
type SortingStrategy func(args SortingArgs) Transform

// VerticalListSorting shifts items between the active and over indices by
// the active item's height plus the gap to their neighbour.
func VerticalListSorting(args SortingArgs) Transform {
	return listSorting(args, func(r Rect) (float64, float64) {
		return r.Top, r.Height
	}, func(v float64) Point { return Point{Y: v} })
}

// HorizontalListSorting is VerticalListSorting along the x axis.
func HorizontalListSorting(args SortingArgs) Transform {
	return listSorting(args, func(r Rect) (float64, float64) {
		return r.Left, r.Width
	}, func(v float64) Point { return Point{X: v} })
}

func listSorting(args SortingArgs, axis func(Rect) (float64, float64), out func(float64) Point) Transform {
	active := args.activeRect()
	activeStart, activeSize := axis(active)
	idx, a, o := args.Index, args.ActiveIndex, args.OverIndex

	if idx == a {
		if o < 0 || o >= len(args.Rects) {
			return IdentityTransform()
		}
		overStart, overSize := axis(args.Rects[o])
		if a < o {
			return geom.Translate(out(overStart + overSize - (activeStart + activeSize)))
		}
		return geom.Translate(out(overStart - activeStart))
	}

	gap := itemGap(args.Rects, idx, a, axis)
	switch {
	case idx > a && idx <= o:
		return geom.Translate(out(-activeSize - gap))
	case idx < a && idx >= o:
		return geom.Translate(out(activeSize + gap))
	}
	return IdentityTransform()
}

// itemGap is the space between the item at index and the neighbour on the
// side the active item comes from.
func itemGap(rects []Rect, index, activeIndex int, axis func(Rect) (float64, float64)) float64 {
	if index < 0 || index >= len(rects) {
		return 0
	}
	start, size := axis(rects[index])
	before := func() (float64, bool) {
		if index == 0 {
			return 0, false
		}
		ps, pz := axis(rects[index-1])
		return start - (ps + pz), true
	}
	after := func() (float64, bool) {
		if index+1 >= len(rects) {
			return 0, false
		}
		ns, _ := axis(rects[index+1])
		return ns - (start + size), true
	}
	first, second := after, before
	if activeIndex < index {
		first, second = before, after
	}
	if g, ok := first(); ok {
		return g
	}
	g, _ := second()
	return g
}

// RectSorting previews a grid reorder: every item slides to the slot it
// would occupy after the move, scaling to that slot's size.
func RectSorting(args SortingArgs) Transform {
	n := len(args.Rects)
	if args.ActiveIndex < 0 || args.ActiveIndex >= n || args.OverIndex < 0 || args.OverIndex >= n {
		return IdentityTransform()
	}
	// Slot i after the move holds the item that was at order[i].
	order := arrayMove(indices(n), args.ActiveIndex, args.OverIndex)
	for slot, from := range order {
		if from == args.Index {
			return slide(args.Rects[from], args.Rects[slot])
		}
	}
	return IdentityTransform()
}

// RectSwapping swaps only the active and over items.
func RectSwapping(args SortingArgs) Transform {
	n := len(args.Rects)
	if args.ActiveIndex < 0 || args.ActiveIndex >= n || args.OverIndex < 0 || args.OverIndex >= n {
		return IdentityTransform()
	}
	switch args.Index {
	case args.ActiveIndex:
		return slide(args.Rects[args.ActiveIndex], args.Rects[args.OverIndex])
	case args.OverIndex:
		return slide(args.Rects[args.OverIndex], args.Rects[args.ActiveIndex])
	}
	return IdentityTransform()
}

func slide(from, to Rect) Transform {
	t := Transform{X: to.Left - from.Left, Y: to.Top - from.Top, ScaleX: 1, ScaleY: 1}
	if from.Width > 0 {
		t.ScaleX = to.Width / from.Width
	}
	if from.Height > 0 {
		t.ScaleY = to.Height / from.Height
	}
	return t
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// arrayMove returns a copy of s with the element at from moved to to.
func arrayMove[T any](s []T, from, to int) []T {
	out := make([]T, 0, len(s))
	out = append(out, s[:from]...)
	out = append(out, s[from+1:]...)
	v := s[from]
	out = append(out[:to], append([]T{v}, out[to:]...)...)
	return out
}

// SortableContext tracks one list's preview transforms during a drag. It
// caches transforms and on each change of active or over index recomputes
// only the items whose index lies in the old or new affected span.
type SortableContext struct {
	id       string
	items    []string
	strategy SortingStrategy

	rects      []Rect
	activeRect Rect
	active     int
	over       int
	transforms map[string]Transform
	recomputed int
}

// NewSortableContext creates a context for the container id whose items
// are listed in display order. A nil strategy uses VerticalListSorting.
func NewSortableContext(id string, items []string, strategy SortingStrategy) *SortableContext {
	if strategy == nil {
		strategy = VerticalListSorting
	}
	return &SortableContext{
		id:         id,
		items:      append([]string(nil), items...),
		strategy:   strategy,
		active:     -1,
		over:       -1,
		transforms: make(map[string]Transform),
	}
}

// ID returns the container id the context sorts.
func (sc *SortableContext) ID() string {
	return sc.id
}

// SetItems replaces the list. Cached transforms are dropped.
func (sc *SortableContext) SetItems(items []string) {
	sc.items = append(sc.items[:0], items...)
	sc.reset()
}

// Items returns the list in display order.
func (sc *SortableContext) Items() []string {
	return append([]string(nil), sc.items...)
}

// Transform returns the preview transform for id.
func (sc *SortableContext) Transform(id string) Transform {
	if t, ok := sc.transforms[id]; ok {
		return t
	}
	return IdentityTransform()
}

// Recomputed returns how many item transforms the last update evaluated.
func (sc *SortableContext) Recomputed() int {
	return sc.recomputed
}

func (sc *SortableContext) indexOf(id string) int {
	for i, item := range sc.items {
		if item == id {
			return i
		}
	}
	return -1
}

// begin prepares the context for a drag of activeID. Rects for the list
// come from measure.
func (sc *SortableContext) begin(activeID string, activeRect Rect, measure func(id string) (Rect, bool)) {
	sc.reset()
	sc.activeRect = activeRect
	sc.rects = make([]Rect, len(sc.items))
	for i, id := range sc.items {
		if r, ok := measure(id); ok {
			sc.rects[i] = r
		}
	}
	sc.active = sc.indexOf(activeID)
	if sc.active < 0 {
		sc.active = len(sc.items)
	}
}

// setOver updates the over index. overID may be an item of this list, the
// list's own container id (treated as the end) or anything else (no
// preview in this list).
func (sc *SortableContext) setOver(overID string) {
	if sc.active < 0 {
		return
	}
	over := sc.indexOf(overID)
	if over < 0 && overID == sc.id {
		// Dropping on the list appends.
		over = len(sc.items)
		if sc.active < len(sc.items) {
			over = len(sc.items) - 1
		}
	}
	if over < 0 {
		over = sc.active
	}
	if over == sc.over {
		sc.recomputed = 0
		return
	}
	lo, hi := span(sc.active, sc.over, over)
	sc.over = over
	sc.recomputed = 0
	for i := lo; i <= hi && i < len(sc.items); i++ {
		sc.recomputed++
		t := sc.strategy(SortingArgs{
			Rects:       sc.rects,
			ActiveIndex: sc.active,
			OverIndex:   sc.over,
			Index:       i,
			ActiveRect:  sc.activeRect,
		})
		if t.IsIdentity() {
			delete(sc.transforms, sc.items[i])
		} else {
			sc.transforms[sc.items[i]] = t
		}
	}
}

// span returns the inclusive index range covered by the old and new
// (active, over) pairs. A negative old over index is ignored.
func span(active, oldOver, newOver int) (int, int) {
	lo, hi := min(active, newOver), max(active, newOver)
	if oldOver >= 0 {
		lo, hi = min(lo, oldOver), max(hi, oldOver)
	}
	return max(lo, 0), hi
}

func (sc *SortableContext) reset() {
	sc.active = -1
	sc.over = -1
	sc.rects = nil
	sc.recomputed = 0
	clear(sc.transforms)
}

package dnd

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeScroll is a scroll container that clamps like a browser would.
type fakeScroll struct {
	rect   Rect
	offset Point
	max    Point
}

func (s *fakeScroll) Rect() Rect          { return s.rect }
func (s *fakeScroll) ScrollOffset() Point { return s.offset }
func (s *fakeScroll) MaxScroll() Point    { return s.max }

func (s *fakeScroll) ScrollBy(d Point) {
	s.offset.X = min(max(s.offset.X+d.X, 0), s.max.X)
	s.offset.Y = min(max(s.offset.Y+d.Y, 0), s.max.Y)
}

// fakeNode is a node whose layout rect is in content coordinates; its
// bounding rect moves as its ancestors scroll.
type fakeNode struct {
	layout    Rect
	transform string
	origin    string
	ancestors []Scrollable
	err       error
	panics    bool
}

func (n *fakeNode) BoundingRect() (Rect, error) {
	if n.panics {
		panic("node exploded")
	}
	if n.err != nil {
		return Rect{}, n.err
	}
	r := n.layout
	for _, a := range n.ancestors {
		r = r.Offset(a.ScrollOffset().Scale(-1))
	}
	return r, nil
}

func (n *fakeNode) ComputedTransform() (string, string) {
	if n.transform == "" {
		return "none", n.origin
	}
	return n.transform, n.origin
}

func (n *fakeNode) ScrollAncestors() []Scrollable {
	return n.ancestors
}

type fakeSuppressor struct {
	selection bool
	menu      bool
	toggles   int
}

func (s *fakeSuppressor) SuppressSelection(on bool) {
	s.selection = on
	s.toggles++
}

func (s *fakeSuppressor) SuppressContextMenu(on bool) {
	s.menu = on
	s.toggles++
}

// fakePersister records every durable call. Calls for an id listed in
// hold block until the channel is closed; failNext fails the next call
// for an id; fail fails every call for an id.
type fakePersister struct {
	mu       sync.Mutex
	calls    []Op
	started  map[string]int
	hold     map[string]chan struct{}
	failNext map[string]error
	fail     map[string]error
}

func newFakePersister() *fakePersister {
	return &fakePersister{
		started:  make(map[string]int),
		hold:     make(map[string]chan struct{}),
		failNext: make(map[string]error),
		fail:     make(map[string]error),
	}
}

func (p *fakePersister) do(ctx context.Context, op Op) error {
	p.mu.Lock()
	p.started[op.Item.ID]++
	gate, held := p.hold[op.Item.ID]
	delete(p.hold, op.Item.ID)
	p.mu.Unlock()

	if held {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, op)
	if err, ok := p.failNext[op.Item.ID]; ok {
		delete(p.failNext, op.Item.ID)
		return err
	}
	return p.fail[op.Item.ID]
}

func (p *fakePersister) MoveItem(ctx context.Context, id, containerID string, key float64) error {
	return p.do(ctx, Op{Kind: OpMove, Item: Item{ID: id, ContainerID: containerID, OrderKey: key}})
}

func (p *fakePersister) DeleteItem(ctx context.Context, id string) error {
	return p.do(ctx, Op{Kind: OpDelete, Item: Item{ID: id}})
}

func (p *fakePersister) RestoreItem(ctx context.Context, item Item) error {
	return p.do(ctx, Op{Kind: OpRestore, Item: item})
}

func (p *fakePersister) Calls() []Op {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Op(nil), p.calls...)
}

func (p *fakePersister) Started(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started[id]
}

// fakeBatchPersister applies batches atomically: a failing batch records
// nothing.
type fakeBatchPersister struct {
	*fakePersister
	batches   [][]Op
	failBatch error
}

func (p *fakeBatchPersister) ApplyBatch(_ context.Context, ops []Op) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failBatch != nil {
		return p.failBatch
	}
	p.batches = append(p.batches, append([]Op(nil), ops...))
	return nil
}

// recorder captures every lifecycle event.
type recorder struct {
	events []DragEvent
}

func record(c *Coordinator) *recorder {
	r := &recorder{}
	c.Events().Subscribe(func(ev DragEvent) {
		r.events = append(r.events, ev)
	})
	return r
}

func eventsOf[T DragEvent](r *recorder) []T {
	var out []T
	for _, ev := range r.events {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

// Board layout used by the harness: three 180px columns 200px apart.
// Items are 40px tall with a 10px gap.
//
//	todo:  a(1) b(2) c(3)
//	doing: d(1) e(2)
//	done:  (empty)
var testColumns = []string{"todo", "doing", "done"}

func newTestBoard() *Board {
	b := NewBoard(testColumns...)
	items := []Item{
		{ID: "a", ContainerID: "todo", OrderKey: 1},
		{ID: "b", ContainerID: "todo", OrderKey: 2},
		{ID: "c", ContainerID: "todo", OrderKey: 3},
		{ID: "d", ContainerID: "doing", OrderKey: 1},
		{ID: "e", ContainerID: "doing", OrderKey: 2},
	}
	for _, item := range items {
		if err := b.Put(item); err != nil {
			panic(err)
		}
	}
	return b
}

func columnX(col string) float64 {
	for i, c := range testColumns {
		if c == col {
			return float64(i * 200)
		}
	}
	panic(fmt.Sprintf("unknown column %q", col))
}

type harness struct {
	t       *testing.T
	sched   *ManualScheduler
	board   *Board
	persist *fakePersister
	mut     *Mutator
	c       *Coordinator
	rec     *recorder
	nodes   map[string]*fakeNode
	scrolls map[string]*fakeScroll
}

// newHarness wires a coordinator to the test board. Auto-scroll is off
// unless opts turn it back on.
func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	sched := NewManualScheduler(time.Unix(0, 0))
	board := newTestBoard()
	persist := newFakePersister()
	mut := NewMutator(board, persist, sched)

	base := []Option{
		WithScheduler(sched),
		WithMutator(mut),
		WithoutAutoScroll(),
	}
	c, err := NewCoordinator(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewCoordinator() error = %v", err)
	}

	h := &harness{
		t:       t,
		sched:   sched,
		board:   board,
		persist: persist,
		mut:     mut,
		c:       c,
		nodes:   make(map[string]*fakeNode),
		scrolls: make(map[string]*fakeScroll),
	}
	for _, col := range testColumns {
		x := columnX(col)
		scroll := &fakeScroll{rect: NewRect(x, 0, 180, 600)}
		h.scrolls[col] = scroll
		node := &fakeNode{layout: NewRect(x, 0, 180, 600)}
		h.nodes[col] = node
		mustNil(t, c.RegisterDroppable(Droppable{ID: col, Kind: DroppableContainer, Node: node}))

		for i, item := range board.Items(col) {
			node := &fakeNode{
				layout:    NewRect(x, float64(i*50), 180, 40),
				ancestors: []Scrollable{scroll},
			}
			h.nodes[item.ID] = node
			mustNil(t, c.RegisterDraggable(Draggable{ID: item.ID, Node: node}))
			mustNil(t, c.RegisterDroppable(Droppable{ID: item.ID, Kind: DroppableItem, ContainerID: col, Node: node}))
		}
	}
	h.rec = record(c)
	return h
}

// center returns the current centre of an item's node.
func (h *harness) center(id string) Point {
	r, err := h.nodes[id].BoundingRect()
	if err != nil {
		h.t.Fatalf("BoundingRect(%q) error = %v", id, err)
	}
	return r.Center()
}

// settle waits for in-flight durable calls and runs their results.
func (h *harness) settle() {
	h.mut.Wait()
	h.sched.RunPending()
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// waitFor polls cond, running posted callbacks, until it holds.
func waitFor(t *testing.T, sched *ManualScheduler, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sched.RunPending()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func mouseDown(id string, p Point) PointerEvent {
	return PointerEvent{Type: PointerMouse, Action: PointerDown, Button: MouseLeft, Point: p, Target: id}
}

func mouseMove(p Point) PointerEvent {
	return PointerEvent{Type: PointerMouse, Action: PointerMove, Button: MouseNone, Point: p}
}

func mouseUp(p Point) PointerEvent {
	return PointerEvent{Type: PointerMouse, Action: PointerUp, Button: MouseLeft, Point: p}
}

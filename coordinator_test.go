package dnd

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestCoordinator_ConcurrentStartRejected(t *testing.T) {
	h := newHarness(t)
	mustNil(t, h.c.Start("a", h.center("a")))

	type tc struct {
		start func() error
	}

	tests := map[string]tc{
		"programmatic start": {start: func() error { return h.c.Start("b", h.center("b")) }},
		"pointer press":      {start: func() error { return h.c.HandleEvent(mouseDown("b", h.center("b"))) }},
		"keyboard start":     {start: func() error { return h.c.HandleEvent(KeyEvent{Key: KeySpace, Target: "b"}) }},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if err := tt.start(); !errors.Is(err, ErrConcurrentSession) {
				t.Errorf("second start error = %v, want ErrConcurrentSession", err)
			}
			s, ok := h.c.Session()
			if !ok || s.ActiveID != "a" {
				t.Errorf("Session() = %+v, %v; want the original session for a", s, ok)
			}
		})
	}

	if got := eventsOf[DragStartEvent](h.rec); len(got) != 1 {
		t.Errorf("got %d start events, want 1", len(got))
	}
}

func TestCoordinator_OverTransitionOnce(t *testing.T) {
	h := newHarness(t)
	mustNil(t, h.c.Start("a", h.center("a")))

	mustNil(t, h.c.Move(Point{X: 290, Y: 20}))
	mustNil(t, h.c.Move(Point{X: 291, Y: 21}))
	mustNil(t, h.c.Move(Point{X: 292, Y: 22}))

	want := []DragOverEvent{
		{Previous: "", Over: "a"},
		{Previous: "a", Over: "d"},
	}
	got := eventsOf[DragOverEvent](h.rec)
	for i := range got {
		got[i].SessionID = ""
		got[i].ActiveID = ""
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("over transitions mismatch (-want +got):\n%s", diff)
	}
	if moves := eventsOf[DragMoveEvent](h.rec); len(moves) != 3 || moves[2].Over != "d" {
		t.Errorf("move events = %+v, want three ending over d", moves)
	}
}

func TestCoordinator_Drop(t *testing.T) {
	type tc struct {
		opts      []Option
		active    string
		to        Point
		want      Placement
		wantMoved bool
		wantOrder map[string][]string
	}

	tests := map[string]tc{
		"onto an item in another column inserts before it": {
			active:    "a",
			to:        Point{X: 290, Y: 20},
			want:      Placement{ContainerID: "doing", Index: 0, OrderKey: 0},
			wantMoved: true,
			wantOrder: map[string][]string{"todo": {"b", "c"}, "doing": {"a", "d", "e"}},
		},
		"below the centre of another column's item inserts after it": {
			active:    "a",
			to:        Point{X: 290, Y: 25},
			want:      Placement{ContainerID: "doing", Index: 1, OrderKey: 1.5},
			wantMoved: true,
			wantOrder: map[string][]string{"todo": {"b", "c"}, "doing": {"d", "a", "e"}},
		},
		"within the same column takes the target slot": {
			active:    "a",
			to:        Point{X: 90, Y: 120},
			want:      Placement{ContainerID: "todo", Index: 2, OrderKey: 4},
			wantMoved: true,
			wantOrder: map[string][]string{"todo": {"b", "c", "a"}},
		},
		"onto an empty column appends": {
			opts:      []Option{WithCollisionDetection(RectIntersection)},
			active:    "d",
			to:        Point{X: 490, Y: 20},
			want:      Placement{ContainerID: "done", Index: 0, OrderKey: 1},
			wantMoved: true,
			wantOrder: map[string][]string{"doing": {"e"}, "done": {"d"}},
		},
		"onto itself changes nothing": {
			active:    "b",
			to:        Point{X: 92, Y: 72},
			want:      Placement{ContainerID: "todo", Index: 1, OrderKey: 2},
			wantMoved: false,
			wantOrder: map[string][]string{"todo": {"a", "b", "c"}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, tt.opts...)
			mustNil(t, h.c.Start(tt.active, h.center(tt.active)))
			mustNil(t, h.c.Move(tt.to))
			mustNil(t, h.c.End())

			ends := eventsOf[DragEndEvent](h.rec)
			if len(ends) != 1 {
				t.Fatalf("got %d end events, want 1", len(ends))
			}
			if diff := cmp.Diff(tt.want, ends[0].Placement); diff != "" {
				t.Errorf("placement mismatch (-want +got):\n%s", diff)
			}
			if ends[0].Moved != tt.wantMoved {
				t.Errorf("Moved = %v, want %v", ends[0].Moved, tt.wantMoved)
			}
			for col, want := range tt.wantOrder {
				if diff := cmp.Diff(want, itemIDs(h.board.Items(col))); diff != "" {
					t.Errorf("%s order mismatch (-want +got):\n%s", col, diff)
				}
			}

			h.settle()
			calls := h.persist.Calls()
			if !tt.wantMoved {
				if len(calls) != 0 {
					t.Errorf("persister calls = %v, want none", calls)
				}
				return
			}
			want := []Op{{Kind: OpMove, Item: Item{ID: tt.active, ContainerID: tt.want.ContainerID, OrderKey: tt.want.OrderKey}}}
			if diff := cmp.Diff(want, calls); diff != "" {
				t.Errorf("persister calls mismatch (-want +got):\n%s", diff)
			}
			if h.c.Dragging() {
				t.Error("session still open after drop")
			}
		})
	}
}

func itemIDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestCoordinator_ConfirmDrop(t *testing.T) {
	type tc struct {
		confirm    ConfirmDropFunc
		wantEnd    bool
		wantColumn string
	}

	tests := map[string]tc{
		"approved": {
			confirm: func(_ context.Context, d Drop) (bool, error) {
				return d.Moved && d.Placement.ContainerID == "doing", nil
			},
			wantEnd:    true,
			wantColumn: "doing",
		},
		"vetoed": {
			confirm:    func(context.Context, Drop) (bool, error) { return false, nil },
			wantColumn: "todo",
		},
		"hook error vetoes": {
			confirm:    func(context.Context, Drop) (bool, error) { return true, errors.New("backend down") },
			wantColumn: "todo",
		},
		"hook panic vetoes": {
			confirm:    func(context.Context, Drop) (bool, error) { panic("hook bug") },
			wantColumn: "todo",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, WithConfirmDrop(tt.confirm, time.Second))
			mustNil(t, h.c.Start("a", h.center("a")))
			mustNil(t, h.c.Move(Point{X: 290, Y: 20}))
			mustNil(t, h.c.End())

			if !h.c.Dragging() {
				t.Fatal("session closed before the confirm hook answered")
			}
			if err := h.c.Start("b", h.center("b")); !errors.Is(err, ErrConcurrentSession) {
				t.Errorf("Start() while confirming error = %v, want ErrConcurrentSession", err)
			}
			waitFor(t, h.sched, func() bool { return !h.c.Dragging() })

			ends := eventsOf[DragEndEvent](h.rec)
			cancels := eventsOf[DragCancelEvent](h.rec)
			if tt.wantEnd {
				if len(ends) != 1 || len(cancels) != 0 {
					t.Errorf("ends = %d, cancels = %d; want 1 end", len(ends), len(cancels))
				}
			} else {
				if len(ends) != 0 || len(cancels) != 1 || cancels[0].Reason != CancelVetoed {
					t.Errorf("ends = %+v, cancels = %+v; want one vetoed cancel", ends, cancels)
				}
			}
			item, _ := h.board.Item("a")
			if item.ContainerID != tt.wantColumn {
				t.Errorf("a is in %q, want %q", item.ContainerID, tt.wantColumn)
			}
			h.settle()
		})
	}
}

func TestCoordinator_CancelWhileConfirming(t *testing.T) {
	returned := make(chan struct{})
	confirm := func(ctx context.Context, _ Drop) (bool, error) {
		defer close(returned)
		<-ctx.Done()
		return false, ctx.Err()
	}
	h := newHarness(t, WithConfirmDrop(confirm, time.Minute))
	before := h.board.Snapshot()

	mustNil(t, h.c.Start("a", h.center("a")))
	mustNil(t, h.c.Move(Point{X: 290, Y: 20}))
	mustNil(t, h.c.End())
	mustNil(t, h.c.Cancel())
	<-returned
	waitFor(t, h.sched, func() bool { return true })

	cancels := eventsOf[DragCancelEvent](h.rec)
	if len(cancels) != 1 || cancels[0].Reason != CancelUser {
		t.Errorf("cancels = %+v, want one user cancel", cancels)
	}
	if diff := cmp.Diff(before, h.board.Snapshot()); diff != "" {
		t.Errorf("board changed (-before +after):\n%s", diff)
	}
	mustNil(t, h.c.Start("b", h.center("b")))
}

func TestCoordinator_HandlerPanicCancels(t *testing.T) {
	h := newHarness(t)
	h.c.Events().Subscribe(func(ev DragEvent) {
		if _, ok := ev.(DragMoveEvent); ok {
			panic("host bug")
		}
	})

	mustNil(t, h.c.Start("a", h.center("a")))
	mustNil(t, h.c.Move(Point{X: 100, Y: 30}))
	h.sched.RunPending()

	cancels := eventsOf[DragCancelEvent](h.rec)
	if len(cancels) != 1 || cancels[0].Reason != CancelFault {
		t.Fatalf("cancels = %+v, want one fault cancel", cancels)
	}
	if h.c.Dragging() {
		t.Error("session still open after a handler panic")
	}
}

func TestCoordinator_MeasurementUnavailable(t *testing.T) {
	h := newHarness(t)
	h.nodes["a"].err = ErrMeasurementUnavailable

	err := h.c.Start("a", Point{})
	if !errors.Is(err, ErrMeasurementUnavailable) {
		t.Fatalf("Start() error = %v, want ErrMeasurementUnavailable", err)
	}
	if h.c.Dragging() {
		t.Fatal("session opened without a measurable active node")
	}
	if aborts := eventsOf[DragAbortEvent](h.rec); len(aborts) != 1 {
		t.Errorf("got %d abort events, want 1", len(aborts))
	}
	mustNil(t, h.c.Start("b", h.center("b")))
}

func TestCoordinator_DisconnectedDroppableKeepsLastRect(t *testing.T) {
	h := newHarness(t)
	mustNil(t, h.c.Start("a", h.center("a")))

	h.nodes["d"].err = ErrMeasurementUnavailable
	h.c.InvalidateLayout()
	h.sched.Advance(100 * time.Millisecond)
	mustNil(t, h.c.Move(Point{X: 290, Y: 20}))

	s, _ := h.c.Session()
	if s.Over != "d" {
		t.Errorf("Over = %q, want d from its last known rect", s.Over)
	}
}

func TestCoordinator_LayoutShiftAdjustsTransform(t *testing.T) {
	h := newHarness(t)
	mustNil(t, h.c.Start("a", h.center("a")))
	mustNil(t, h.c.Move(h.center("a").Add(Point{Y: 10})))

	h.nodes["a"].layout.Top = 50
	h.c.InvalidateLayout()
	h.sched.Advance(100 * time.Millisecond)

	want := Transform{X: 0, Y: 10 - 50, ScaleX: 1, ScaleY: 1}
	if got := h.c.Transform("a"); got != want {
		t.Errorf("Transform(a) = %v, want %v", got, want)
	}
}

func TestCoordinator_ScrollMovesDroppables(t *testing.T) {
	h := newHarness(t)
	scroll := h.scrolls["todo"]
	scroll.max = Point{Y: 400}
	start := h.center("a")
	mustNil(t, h.c.Start("a", start))

	scroll.ScrollBy(Point{Y: 100})
	mustNil(t, h.c.Move(start))

	s, _ := h.c.Session()
	if s.Over != "c" {
		t.Errorf("Over = %q, want c which scrolled under the item", s.Over)
	}
	want := Transform{Y: 100, ScaleX: 1, ScaleY: 1}
	if s.Transform != want {
		t.Errorf("Transform = %v, want %v to keep the node under the pointer", s.Transform, want)
	}
}

func TestCoordinator_AcceptsFiltersTargets(t *testing.T) {
	h := newHarness(t)
	mustNil(t, h.c.RegisterDroppable(Droppable{
		ID:          "d",
		Kind:        DroppableItem,
		ContainerID: "doing",
		Node:        h.nodes["d"],
		Accepts:     func(active Item) bool { return active.ContainerID == "doing" },
	}))

	mustNil(t, h.c.Start("a", h.center("a")))
	mustNil(t, h.c.Move(Point{X: 290, Y: 20}))

	s, _ := h.c.Session()
	if s.Over != "e" {
		t.Errorf("Over = %q, want e since d rejects items from todo", s.Over)
	}
}

func TestCoordinator_Modifiers(t *testing.T) {
	type tc struct {
		mods []DeltaModifier
		want Point
	}

	tests := map[string]tc{
		"none":            {want: Point{X: 37, Y: 52}},
		"vertical axis":   {mods: []DeltaModifier{RestrictToVerticalAxis}, want: Point{Y: 52}},
		"horizontal axis": {mods: []DeltaModifier{RestrictToHorizontalAxis}, want: Point{X: 37}},
		"grid":            {mods: []DeltaModifier{SnapToGrid(25)}, want: Point{X: 25, Y: 50}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, WithModifiers(tt.mods...))
			start := h.center("a")
			mustNil(t, h.c.Start("a", start))
			mustNil(t, h.c.Move(start.Add(Point{X: 37, Y: 52})))

			s, _ := h.c.Session()
			if s.Delta != tt.want {
				t.Errorf("Delta = %v, want %v", s.Delta, tt.want)
			}
		})
	}
}

func TestCoordinator_DisabledDraggable(t *testing.T) {
	h := newHarness(t)
	mustNil(t, h.c.RegisterDraggable(Draggable{ID: "a", Node: h.nodes["a"], Disabled: true}))

	err := h.c.HandleEvent(mouseDown("a", h.center("a")))
	if !errors.Is(err, ErrActivationRejected) {
		t.Errorf("HandleEvent() error = %v, want ErrActivationRejected", err)
	}
}

func TestCoordinator_UnregisterActiveCancels(t *testing.T) {
	h := newHarness(t)
	mustNil(t, h.c.Start("a", h.center("a")))
	h.c.UnregisterDraggable("a")

	cancels := eventsOf[DragCancelEvent](h.rec)
	if len(cancels) != 1 || cancels[0].Reason != CancelMeasurement {
		t.Errorf("cancels = %+v, want one measurement cancel", cancels)
	}
}

func TestCoordinator_SessionErrors(t *testing.T) {
	h := newHarness(t)
	if err := h.c.Move(Point{}); !errors.Is(err, ErrNoSession) {
		t.Errorf("Move() error = %v, want ErrNoSession", err)
	}
	if err := h.c.End(); !errors.Is(err, ErrNoSession) {
		t.Errorf("End() error = %v, want ErrNoSession", err)
	}
	if err := h.c.Cancel(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Cancel() error = %v, want ErrNoSession", err)
	}
	if err := h.c.Start("missing", Point{}); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("Start() error = %v, want ErrUnknownItem", err)
	}
}

// Random drags, drops and cancels never lose or duplicate an item, and
// keys stay strictly increasing within every column.
func TestCoordinator_RandomDragsConserveItems(t *testing.T) {
	h := newHarness(t)
	rng := rand.New(rand.NewPCG(1, 2))
	want := h.board.IDs()

	for i := 0; i < 200; i++ {
		ids := h.board.IDs()
		id := ids[rng.IntN(len(ids))]
		mustNil(t, h.c.Start(id, h.center(id)))
		for j := 0; j < 3; j++ {
			mustNil(t, h.c.Move(Point{X: rng.Float64() * 600, Y: rng.Float64() * 300}))
		}
		if rng.IntN(4) == 0 {
			mustNil(t, h.c.Cancel())
		} else {
			mustNil(t, h.c.End())
		}
		h.settle()

		if diff := cmp.Diff(want, h.board.IDs()); diff != "" {
			t.Fatalf("iteration %d: ids changed (-want +got):\n%s", i, diff)
		}
		for _, col := range h.board.Containers() {
			keys := h.board.Keys(col)
			for k := 1; k < len(keys); k++ {
				if keys[k] <= keys[k-1] {
					t.Fatalf("iteration %d: %s keys not strictly increasing: %v", i, col, keys)
				}
			}
		}
	}
}

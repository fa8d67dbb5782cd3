package dnd

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func press(t *testing.T, c *Coordinator, key Key, target string) {
	t.Helper()
	mustNil(t, c.HandleEvent(KeyEvent{Key: key, Target: target}))
}

func TestKeyboardSensor_StepsFromTopLeft(t *testing.T) {
	h := newHarness(t)
	press(t, h.c, KeySpace, "b")

	starts := eventsOf[DragStartEvent](h.rec)
	if len(starts) != 1 || starts[0].Sensor != SensorKeyboard {
		t.Fatalf("starts = %+v, want one keyboard start", starts)
	}
	if want := (Point{X: 0, Y: 50}); starts[0].Initial != want {
		t.Errorf("Initial = %v, want the top-left corner %v", starts[0].Initial, want)
	}

	press(t, h.c, KeyRight, "b")
	press(t, h.c, KeyDown, "b")
	press(t, h.c, KeyLeft, "b")
	press(t, h.c, KeyUp, "b")
	press(t, h.c, KeyUp, "b")

	var got []Point
	for _, m := range eventsOf[DragMoveEvent](h.rec) {
		got = append(got, m.Delta)
	}
	want := []Point{{X: 25}, {X: 25, Y: 25}, {Y: 25}, {}, {Y: -25}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("deltas mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyboardSensor_ScrollsBeforeMoving(t *testing.T) {
	type tc struct {
		maxScroll  float64
		wantMoves  int
		wantDelta  Point
		wantOffset Point
	}

	tests := map[string]tc{
		// The third step would leave the viewport; scrolling absorbs it.
		"scroll absorbs the whole step": {
			maxScroll:  400,
			wantMoves:  2,
			wantDelta:  Point{Y: 50},
			wantOffset: Point{Y: 25},
		},
		// Only 10px of scroll is left; the remaining 15px move the item.
		"scroll absorbs part of the step": {
			maxScroll:  10,
			wantMoves:  3,
			wantDelta:  Point{Y: 65},
			wantOffset: Point{Y: 10},
		},
		"nothing to scroll": {
			maxScroll:  0,
			wantMoves:  3,
			wantDelta:  Point{Y: 75},
			wantOffset: Point{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			scroll := h.scrolls["todo"]
			scroll.rect = NewRect(0, 0, 180, 200)
			scroll.max = Point{Y: tt.maxScroll}

			press(t, h.c, KeyEnter, "c")
			for i := 0; i < 3; i++ {
				press(t, h.c, KeyDown, "c")
			}

			if moves := eventsOf[DragMoveEvent](h.rec); len(moves) != tt.wantMoves {
				t.Errorf("got %d move events, want %d", len(moves), tt.wantMoves)
			}
			s, _ := h.c.Session()
			if s.Delta != tt.wantDelta {
				t.Errorf("Delta = %v, want %v", s.Delta, tt.wantDelta)
			}
			if scroll.offset != tt.wantOffset {
				t.Errorf("scroll offset = %v, want %v", scroll.offset, tt.wantOffset)
			}
		})
	}
}

func TestKeyboardSensor_DropAndCancel(t *testing.T) {
	type tc struct {
		finish    Key
		wantOrder []string
		wantEnd   bool
	}

	tests := map[string]tc{
		"enter drops": {finish: KeyEnter, wantOrder: []string{"b", "a", "c"}, wantEnd: true},
		"space drops": {finish: KeySpace, wantOrder: []string{"b", "a", "c"}, wantEnd: true},
		"tab drops":   {finish: KeyTab, wantOrder: []string{"b", "a", "c"}, wantEnd: true},
		"escape cancels": {
			finish:    KeyEscape,
			wantOrder: []string{"a", "b", "c"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			press(t, h.c, KeySpace, "a")
			press(t, h.c, KeyDown, "a")
			press(t, h.c, KeyDown, "a")
			press(t, h.c, tt.finish, "a")

			if diff := cmp.Diff(tt.wantOrder, itemIDs(h.board.Items("todo"))); diff != "" {
				t.Errorf("todo order mismatch (-want +got):\n%s", diff)
			}
			if got := len(eventsOf[DragEndEvent](h.rec)) == 1; got != tt.wantEnd {
				t.Errorf("ended = %v, want %v", got, tt.wantEnd)
			}
			if h.c.Dragging() {
				t.Error("session still open")
			}
			h.settle()
		})
	}
}

func TestKeyboardSensor_NoAutoScroll(t *testing.T) {
	h := newHarness(t, WithAutoScroll(DefaultAutoScrollOptions()))
	scroll := h.scrolls["todo"]
	scroll.rect = NewRect(0, 0, 180, 200)
	scroll.max = Point{Y: 400}

	press(t, h.c, KeySpace, "c")
	press(t, h.c, KeyDown, "c")
	h.sched.Advance(50 * time.Millisecond)

	if scroll.offset != (Point{}) {
		t.Errorf("scroll offset = %v, want keyboard sessions not to auto-scroll", scroll.offset)
	}
}

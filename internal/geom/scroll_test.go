package geom

import "testing"

func TestScrollRect_TracksAncestorScroll(t *testing.T) {
	offset := Point{X: 0, Y: 100}
	sr := NewScrollRect(NewRect(10, 200, 50, 20), func() Point { return offset })

	if got := sr.Top(); got != 200 {
		t.Fatalf("Top() before scroll = %v, want 200", got)
	}

	offset = Point{X: 5, Y: 160}

	if got := sr.Top(); got != 140 {
		t.Errorf("Top() after scroll = %v, want 140", got)
	}
	if got := sr.Left(); got != 5 {
		t.Errorf("Left() after scroll = %v, want 5", got)
	}
	if got := sr.Bottom(); got != 160 {
		t.Errorf("Bottom() after scroll = %v, want 160", got)
	}
	if got, want := sr.Rect(), NewRect(5, 140, 50, 20); got != want {
		t.Errorf("Rect() = %+v, want %+v", got, want)
	}
	if got := sr.Measured(); got != NewRect(10, 200, 50, 20) {
		t.Errorf("Measured() changed: %+v", got)
	}
}

func TestScrollRect_NilOffsets(t *testing.T) {
	sr := NewScrollRect(NewRect(1, 2, 3, 4), nil)
	if got := sr.ScrollDelta(); !got.IsZero() {
		t.Errorf("ScrollDelta() = %+v, want zero", got)
	}
}

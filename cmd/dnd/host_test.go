package main

import (
	"errors"
	"testing"

	dnd "github.com/grindlemire/go-dnd"
)

func TestLayout(t *testing.T) {
	l := newLayout(80, 24, []string{"todo", "doing", "done"})
	if l.colWidth != 25 {
		t.Fatalf("colWidth = %d, want 25", l.colWidth)
	}
	if got := l.bodyRows(); got != 20 {
		t.Errorf("bodyRows() = %d, want 20", got)
	}

	tests := map[string]struct {
		x    int
		want int
	}{
		"first column":  {x: 0, want: 0},
		"last cell":     {x: 24, want: 0},
		"gap":           {x: 25, want: -1},
		"second column": {x: 27, want: 1},
		"third column":  {x: 60, want: 2},
		"past the end":  {x: 81, want: -1},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := l.columnAt(tc.x); got != tc.want {
				t.Errorf("columnAt(%d) = %d, want %d", tc.x, got, tc.want)
			}
		})
	}
}

func TestLayout_SlotRect(t *testing.T) {
	l := newLayout(80, 24, []string{"todo", "doing"})

	got := l.slotRect(1, 2, 16)
	want := dnd.NewRect(float64(l.columnX(1))*cellW, (headerRows+2*cardRows)*cellH-16, float64(l.colWidth)*cellW, cardRows*cellH)
	if got != want {
		t.Errorf("slotRect() = %+v, want %+v", got, want)
	}
}

func TestCardNode(t *testing.T) {
	m, _ := newTestModel(t)

	r, err := cardNode{host: m, id: "c"}.BoundingRect()
	if err != nil {
		t.Fatalf("BoundingRect() error = %v", err)
	}
	if want := m.layout.slotRect(0, 2, 0); r != want {
		t.Errorf("BoundingRect() = %+v, want %+v", r, want)
	}

	_, err = cardNode{host: m, id: "gone"}.BoundingRect()
	if !errors.Is(err, dnd.ErrMeasurementUnavailable) {
		t.Errorf("BoundingRect() error = %v, want ErrMeasurementUnavailable", err)
	}
}

func TestColumnScroll(t *testing.T) {
	m, _ := newTestModel(t)
	// Shrink the window so the four todo cards overflow by 6 rows.
	m.resize(80, 10)

	s := m.scrolls[0]
	if got, want := s.MaxScroll().Y, 6*cellH; got != want {
		t.Fatalf("MaxScroll().Y = %v, want %v", got, want)
	}

	s.ScrollBy(dnd.Point{Y: 1000})
	if s.y != 6*cellH {
		t.Errorf("ScrollBy past max: y = %v, want %v", s.y, 6*cellH)
	}
	if got := m.cardAt(0, headerRows); got != "c" {
		t.Errorf("cardAt() after scroll = %q, want %q", got, "c")
	}

	s.ScrollBy(dnd.Point{Y: -1000})
	if s.y != 0 {
		t.Errorf("ScrollBy past zero: y = %v, want 0", s.y)
	}

	if got := m.scrolls[1].MaxScroll().Y; got != 0 {
		t.Errorf("empty column MaxScroll().Y = %v, want 0", got)
	}
}

func TestCardAt(t *testing.T) {
	m, _ := newTestModel(t)

	tests := map[string]struct {
		x, y int
		want string
	}{
		"header":         {x: 3, y: 0, want: ""},
		"first card":     {x: 3, y: 2, want: "a"},
		"first card end": {x: 3, y: 4, want: "a"},
		"second card":    {x: 3, y: 5, want: "b"},
		"below cards":    {x: 3, y: 15, want: ""},
		"empty column":   {x: 30, y: 2, want: ""},
		"gap":            {x: 26, y: 2, want: ""},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := m.cardAt(tc.x, tc.y); got != tc.want {
				t.Errorf("cardAt(%d, %d) = %q, want %q", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

package geom

import (
	"math"
	"testing"
)

func TestRect_RightBottom(t *testing.T) {
	type tc struct {
		rect   Rect
		right  float64
		bottom float64
	}

	tests := map[string]tc{
		"standard rect": {
			rect:   NewRect(5, 10, 20, 15),
			right:  25,
			bottom: 25,
		},
		"negative position": {
			rect:   NewRect(-5, -5, 10, 10),
			right:  5,
			bottom: 5,
		},
		"zero size": {
			rect:   NewRect(5, 5, 0, 0),
			right:  5,
			bottom: 5,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.rect.Right(); got != tt.right {
				t.Errorf("Right() = %v, want %v", got, tt.right)
			}
			if got := tt.rect.Bottom(); got != tt.bottom {
				t.Errorf("Bottom() = %v, want %v", got, tt.bottom)
			}
		})
	}
}

func TestRect_Intersect(t *testing.T) {
	type tc struct {
		a, b     Rect
		expected Rect
	}

	tests := map[string]tc{
		"overlapping rects": {
			a:        NewRect(0, 0, 20, 20),
			b:        NewRect(10, 10, 20, 20),
			expected: NewRect(10, 10, 10, 10),
		},
		"one inside other": {
			a:        NewRect(0, 0, 100, 100),
			b:        NewRect(10, 10, 5, 5),
			expected: NewRect(10, 10, 5, 5),
		},
		"touching edges": {
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(10, 0, 10, 10),
			expected: Rect{},
		},
		"disjoint": {
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(50, 50, 10, 10),
			expected: Rect{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.expected {
				t.Errorf("Intersect() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestRect_Union(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 5, 10, 10)
	want := NewRect(0, 0, 30, 15)
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty.Union(b) = %+v, want %+v", got, b)
	}
}

func TestRect_IntersectionRatio(t *testing.T) {
	type tc struct {
		a, b Rect
		want float64
	}

	tests := map[string]tc{
		"identical": {
			a:    NewRect(0, 0, 10, 10),
			b:    NewRect(0, 0, 10, 10),
			want: 1,
		},
		"half overlap": {
			a:    NewRect(0, 0, 10, 10),
			b:    NewRect(5, 0, 10, 10),
			want: 50.0 / 150.0,
		},
		"no overlap": {
			a:    NewRect(0, 0, 10, 10),
			b:    NewRect(20, 20, 10, 10),
			want: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := tt.a.IntersectionRatio(tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IntersectionRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRect_CenterCorners(t *testing.T) {
	r := NewRect(10, 20, 40, 60)
	if got, want := r.Center(), (Point{X: 30, Y: 50}); got != want {
		t.Errorf("Center() = %+v, want %+v", got, want)
	}
	corners := r.Corners()
	want := [4]Point{{10, 20}, {50, 20}, {10, 80}, {50, 80}}
	if corners != want {
		t.Errorf("Corners() = %+v, want %+v", corners, want)
	}
}

func TestDelta(t *testing.T) {
	before := NewRect(10, 10, 5, 5)
	after := NewRect(14, 7, 5, 5)
	if got, want := Delta(after, before), (Point{X: 4, Y: -3}); got != want {
		t.Errorf("Delta() = %+v, want %+v", got, want)
	}
}

func TestPoint_ExceedsDistance(t *testing.T) {
	type tc struct {
		delta     Point
		threshold Point
		want      bool
	}

	tests := map[string]tc{
		"x only within":    {delta: Point{X: 3, Y: 50}, threshold: Point{X: 5}, want: false},
		"x only exceeded":  {delta: Point{X: -6}, threshold: Point{X: 5}, want: true},
		"both axes y over": {delta: Point{X: 1, Y: 9}, threshold: Point{X: 5, Y: 8}, want: true},
		"zero threshold":   {delta: Point{X: 100}, threshold: Point{}, want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.delta.ExceedsDistance(tt.threshold); got != tt.want {
				t.Errorf("ExceedsDistance(%+v) = %v, want %v", tt.threshold, got, tt.want)
			}
		})
	}
}

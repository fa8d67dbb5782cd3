package geom

import "testing"

func TestParseTransform(t *testing.T) {
	type tc struct {
		in   string
		want Transform
		ok   bool
	}

	tests := map[string]tc{
		"2d matrix": {
			in:   "matrix(1.5, 0, 0, 2, 10, -4)",
			want: Transform{X: 10, Y: -4, ScaleX: 1.5, ScaleY: 2},
			ok:   true,
		},
		"3d matrix": {
			in:   "matrix3d(2, 0, 0, 0, 0, 3, 0, 0, 0, 0, 1, 0, 7, 8, 0, 1)",
			want: Transform{X: 7, Y: 8, ScaleX: 2, ScaleY: 3},
			ok:   true,
		},
		"none":           {in: "none"},
		"empty":          {in: ""},
		"wrong arity":    {in: "matrix(1, 0, 0, 1)"},
		"bad number":     {in: "matrix(1, 0, 0, 1, x, 0)"},
		"unknown syntax": {in: "translate(10px, 10px)"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := ParseTransform(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseTransform(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseTransform(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInverseTransform(t *testing.T) {
	layout := NewRect(100, 50, 40, 20)
	tr := Transform{X: 30, Y: -10, ScaleX: 2, ScaleY: 0.5}
	origin := Point{X: 20, Y: 10}

	// Forward: scale around origin, then translate.
	transformed := Rect{
		Left:   layout.Left + tr.X + (1-tr.ScaleX)*origin.X,
		Top:    layout.Top + tr.Y + (1-tr.ScaleY)*origin.Y,
		Width:  layout.Width * tr.ScaleX,
		Height: layout.Height * tr.ScaleY,
	}

	if got := InverseTransform(transformed, tr, origin); got != layout {
		t.Errorf("InverseTransform() = %+v, want %+v", got, layout)
	}
}

func TestParseOrigin(t *testing.T) {
	if got, want := ParseOrigin("12px 30.5px"), (Point{X: 12, Y: 30.5}); got != want {
		t.Errorf("ParseOrigin() = %+v, want %+v", got, want)
	}
	if got := ParseOrigin(""); !got.IsZero() {
		t.Errorf("ParseOrigin(\"\") = %+v, want zero", got)
	}
}

package easel

import (
	"math"
	"testing"
)

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", NewRect(0, 0, 10, 10), NewRect(5, 5, 10, 10), NewRect(5, 5, 5, 5)},
		{"contained", NewRect(0, 0, 10, 10), NewRect(2, 3, 4, 5), NewRect(2, 3, 4, 5)},
		{"disjoint", NewRect(0, 0, 5, 5), NewRect(10, 10, 5, 5), Rect{}},
		{"touching edges", NewRect(0, 0, 5, 5), NewRect(5, 0, 5, 5), Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := NewRect(0, 0, 4, 4)
	b := NewRect(6, 6, 2, 2)
	want := NewRect(0, 0, 8, 8)
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %v, want %v", got, want)
	}
	// Empty rectangles are the identity.
	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union(empty) = %v, want %v", got, a)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty.Union() = %v, want %v", got, b)
	}
}

func TestRectIntBounds(t *testing.T) {
	tests := []struct {
		name           string
		r              Rect
		w, h           int
		x0, y0, x1, y1 int
		ok             bool
	}{
		{"whole", NewRect(0, 0, 8, 8), 8, 8, 0, 0, 8, 8, true},
		{"fractional expands", NewRect(1.2, 1.7, 2, 2), 8, 8, 1, 1, 4, 4, true},
		{"clamped", NewRect(-3, -3, 20, 20), 8, 8, 0, 0, 8, 8, true},
		{"outside", NewRect(10, 10, 4, 4), 8, 8, 8, 8, 8, 8, false},
		{"empty", Rect{}, 8, 8, 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x0, y0, x1, y1, ok := tt.r.IntBounds(tt.w, tt.h)
			if ok != tt.ok {
				t.Fatalf("IntBounds() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if x0 != tt.x0 || y0 != tt.y0 || x1 != tt.x1 || y1 != tt.y1 {
				t.Errorf("IntBounds() = (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					x0, y0, x1, y1, tt.x0, tt.y0, tt.x1, tt.y1)
			}
		})
	}
}

func TestRectOutset(t *testing.T) {
	r := NewRect(5, 5, 10, 10).Outset(2)
	want := NewRect(3, 3, 14, 14)
	if r != want {
		t.Errorf("Outset() = %v, want %v", r, want)
	}
}

func TestPointLerpDist(t *testing.T) {
	p := Pt(0, 0)
	q := Pt(6, 8)
	if d := p.Dist(q); math.Abs(d-10) > 1e-12 {
		t.Errorf("Dist() = %v, want 10", d)
	}
	mid := p.Lerp(q, 0.5)
	if mid != Pt(3, 4) {
		t.Errorf("Lerp(0.5) = %v, want (3,4)", mid)
	}
	if got := p.Lerp(q, 0); got != p {
		t.Errorf("Lerp(0) = %v, want %v", got, p)
	}
	if got := p.Lerp(q, 1); got != q {
		t.Errorf("Lerp(1) = %v, want %v", got, q)
	}
}

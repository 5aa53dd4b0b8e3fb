package model

import (
	"errors"
	"testing"
)

func TestSquareMapRoundTrip(t *testing.T) {
	for _, size := range []float64{1, 0.5, 2.25} {
		g := DefaultGeometry()
		g.SquareSize = size
		m := NewSquareMap(g)
		for _, sq := range AllSquares() {
			center, ok := m.ToWorld(sq)
			if !ok {
				t.Fatalf("size %v: no center for %s", size, sq)
			}
			back, ok := m.FromWorld(center)
			if !ok || back != sq {
				t.Fatalf("size %v: %s -> %+v -> %s (ok=%v)", size, sq, center, back, ok)
			}
		}
	}
}

func TestSquareMapOrientation(t *testing.T) {
	m := NewSquareMap(DefaultGeometry())

	a1, _ := m.ToWorld(mustSquare(t, "a1"))
	if a1.X != -3.5 || a1.Z != 3.5 {
		t.Fatalf("a1 at %+v", a1)
	}
	h8, _ := m.ToWorld(mustSquare(t, "h8"))
	if h8.X != 3.5 || h8.Z != -3.5 {
		t.Fatalf("h8 at %+v", h8)
	}
}

func TestSquareMapFromWorldSnapsAndRejects(t *testing.T) {
	m := NewSquareMap(DefaultGeometry())

	tests := []struct {
		name string
		p    Vec3
		want string
		ok   bool
	}{
		{name: "NearE4", p: Vec3{X: 0.7, Z: 0.3}, want: "e4", ok: true},
		{name: "InsideA1Corner", p: Vec3{X: -3.9, Z: 3.9}, want: "a1", ok: true},
		{name: "PastAFile", p: Vec3{X: -4.1, Z: 0}, ok: false},
		{name: "PastRank8", p: Vec3{X: 0, Z: -4.6}, ok: false},
		{name: "FarAway", p: Vec3{X: 40, Z: -40}, ok: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sq, ok := m.FromWorld(tt.p)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (square %s)", ok, tt.ok, sq)
			}
			if ok && sq.String() != tt.want {
				t.Fatalf("got %s, want %s", sq, tt.want)
			}
		})
	}
}

func TestSquareMapRejectsInvalidSquare(t *testing.T) {
	m := NewSquareMap(DefaultGeometry())
	if _, ok := m.ToWorld(NoSquare); ok {
		t.Fatalf("NoSquare should have no center")
	}
	if _, ok := m.ToWorld(Square(64)); ok {
		t.Fatalf("square 64 should have no center")
	}
}

func TestParseSquare(t *testing.T) {
	for _, s := range []string{"a1", "h8", "e4"} {
		sq, err := ParseSquare(s)
		if err != nil || sq.String() != s {
			t.Fatalf("ParseSquare(%q) = %s, %v", s, sq, err)
		}
	}
	for _, s := range []string{"", "i1", "a9", "a0", "e44", "E4"} {
		if _, err := ParseSquare(s); !errors.Is(err, ErrSquareOutOfRange) {
			t.Fatalf("ParseSquare(%q): expected ErrSquareOutOfRange, got %v", s, err)
		}
	}
}

package model

import "math"

// SquareMap maps squares to tile centers on the board plane and back. The
// a-file is at -X, rank 8 at -Z; file/rank index 3.5 sits on the origin.
type SquareMap struct {
	size    float64
	centers [64]Vec3
}

func NewSquareMap(g BoardGeometry) *SquareMap {
	m := &SquareMap{size: g.SquareSize}
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			m.centers[rank*8+file] = Vec3{
				X: (float64(file) - 3.5) * g.SquareSize,
				Z: (3.5 - float64(rank)) * g.SquareSize,
			}
		}
	}
	return m
}

// ToWorld returns the tile center at y = 0.
func (m *SquareMap) ToWorld(s Square) (Vec3, bool) {
	if !s.Valid() {
		return Vec3{}, false
	}
	return m.centers[s], true
}

// FromWorld snaps a planar point to the nearest tile. Points that round
// outside the 8x8 grid are not on a square; that is how a release off the
// board is detected, not an error.
func (m *SquareMap) FromWorld(p Vec3) (Square, bool) {
	if math.IsNaN(p.X) || math.IsNaN(p.Z) {
		return NoSquare, false
	}
	file := int(math.Round(p.X/m.size + 3.5))
	rank := int(math.Round(3.5 - p.Z/m.size))
	return NewSquare(file, rank)
}

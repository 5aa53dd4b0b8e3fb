package model

import "math"

// Random is the subset of *rand.Rand the placement policy samples from.
type Random interface {
	Float64() float64
}

const restingAttempts = 20

// TablePolicy finds resting spots on the table for pieces that leave the
// board. It never consults occupancy, so it always succeeds.
type TablePolicy struct {
	geo BoardGeometry
	rng Random
}

func NewTablePolicy(g BoardGeometry, rng Random) *TablePolicy {
	return &TablePolicy{geo: g, rng: rng}
}

// RandomPoint samples the table inside its margin and keeps the first point
// that is past the board base on at least one axis. After a bounded number
// of misses it falls back to a point just beyond the +X edge of the base.
func (tp *TablePolicy) RandomPoint() Vec3 {
	limX := tp.geo.tableHalfX() - tp.geo.TableMargin
	limZ := tp.geo.tableHalfZ() - tp.geo.TableMargin
	half := tp.geo.BaseHalfExtent()
	for i := 0; i < restingAttempts; i++ {
		x := (tp.rng.Float64()*2 - 1) * limX
		z := (tp.rng.Float64()*2 - 1) * limZ
		if math.Abs(x) > half || math.Abs(z) > half {
			return tp.Snap(Vec3{X: x, Z: z})
		}
	}
	return tp.Snap(Vec3{X: half + tp.geo.TableMargin})
}

// Snap moves p onto the table surface: clamped inside the table margin and,
// if it lands on the board base, pushed out across the nearer base edge.
func (tp *TablePolicy) Snap(p Vec3) Vec3 {
	limX := tp.geo.tableHalfX() - tp.geo.TableMargin
	limZ := tp.geo.tableHalfZ() - tp.geo.TableMargin
	out := Vec3{
		X: clamp(p.X, -limX, limX),
		Y: tp.geo.TableSurfaceY,
		Z: clamp(p.Z, -limZ, limZ),
	}
	half := tp.geo.BaseHalfExtent()
	if math.Abs(out.X) <= half && math.Abs(out.Z) <= half {
		edge := half + tp.geo.TableMargin
		if math.Abs(out.X) > math.Abs(out.Z) {
			out.X = sign(out.X) * edge
		} else {
			out.Z = sign(out.Z) * edge
		}
	}
	return out
}

// OffBoard reports whether p is clear of the board base.
func (tp *TablePolicy) OffBoard(p Vec3) bool {
	half := tp.geo.BaseHalfExtent()
	return math.Abs(p.X) > half || math.Abs(p.Z) > half
}

// OnTable reports whether p is inside the table margin.
func (tp *TablePolicy) OnTable(p Vec3) bool {
	return math.Abs(p.X) <= tp.geo.tableHalfX()-tp.geo.TableMargin &&
		math.Abs(p.Z) <= tp.geo.tableHalfZ()-tp.geo.TableMargin
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

package model

import "math"

// Vec3 is a world-space point. Y is up; the board lies in the XZ plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

// Lerp moves from v toward o by t, unclamped.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t, v.Z + (o.Z-v.Z)*t}
}

// Ray is a pointer ray in world space as produced by the renderer's camera.
type Ray struct {
	Origin    Vec3 `json:"origin"`
	Direction Vec3 `json:"direction"`
}

// IntersectHorizontal returns where the ray crosses the plane y = height.
// Rays parallel to the plane or pointing away from it miss.
func (r Ray) IntersectHorizontal(height float64) (Vec3, bool) {
	if math.Abs(r.Direction.Y) < 1e-9 {
		return Vec3{}, false
	}
	t := (height - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return Vec3{}, false
	}
	p := r.Origin.Add(r.Direction.Scale(t))
	p.Y = height
	return p, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

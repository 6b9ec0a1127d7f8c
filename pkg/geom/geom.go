// Package geom holds the rigid transform shared by the render and physics
// ports.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a position plus an orientation. Orientation is a unit
// quaternion so that interpolation can take the shortest arc.
type Transform struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
}

// Identity is the transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// At returns an unrotated transform at p.
func At(p mgl64.Vec3) Transform {
	return Transform{Position: p, Rotation: mgl64.QuatIdent()}
}

// Interpolate blends from a to b: linear in position, spherical (shortest
// path) in orientation. t is clamped to [0,1].
func Interpolate(a, b Transform, t float64) Transform {
	t = math.Max(0, math.Min(1, t))
	if t == 1 {
		return b
	}
	ra, rb := a.Rotation, b.Rotation
	if ra.Dot(rb) < 0 {
		rb = rb.Scale(-1)
	}
	return Transform{
		Position: a.Position.Add(b.Position.Sub(a.Position).Mul(t)),
		Rotation: mgl64.QuatSlerp(ra, rb, t).Normalize(),
	}
}

// ApproxEqual compares positions component-wise within eps and orientations
// up to sign, since q and -q describe the same rotation.
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	if !t.Position.ApproxEqualThreshold(o.Position, eps) {
		return false
	}
	return math.Abs(math.Abs(t.Rotation.Dot(o.Rotation))-1) <= eps
}

// WorldExtents returns the half-size of the axis-aligned box enclosing a box
// of half-extents h rotated by q.
func WorldExtents(h mgl64.Vec3, q mgl64.Quat) mgl64.Vec3 {
	m := q.Normalize().Mat4()
	var out mgl64.Vec3
	for i := range 3 {
		out[i] = math.Abs(m.At(i, 0))*h[0] + math.Abs(m.At(i, 1))*h[1] + math.Abs(m.At(i, 2))*h[2]
	}
	return out
}

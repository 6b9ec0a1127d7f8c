package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/jengatower/pkg/geom"
	"github.com/matzehuels/jengatower/pkg/tower/blocks"
)

// Pick returns the block whose bounding box the ray hits first. Boxes are
// the world-axis-aligned bounds of each rotated brick, which is exact for
// the tower's quarter-turn layers.
func Pick(m *blocks.Manager, origin, dir mgl64.Vec3) (blocks.ID, bool) {
	half := m.Brick().Size().Mul(0.5)
	var (
		best  blocks.ID
		bestT = math.Inf(1)
		found bool
	)
	for _, id := range m.IDs() {
		t, ok := m.Transform(id)
		if !ok {
			continue
		}
		ext := geom.WorldExtents(half, t.Rotation)
		if d, hit := intersectAABB(origin, dir, t.Position.Sub(ext), t.Position.Add(ext)); hit && d < bestT {
			best, bestT, found = id, d, true
		}
	}
	return best, found
}

// intersectAABB is the slab test. It returns the entry distance along dir.
func intersectAABB(origin, dir, lo, hi mgl64.Vec3) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := range 3 {
		if math.Abs(dir[i]) < 1e-12 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return max(tmin, 0), true
}

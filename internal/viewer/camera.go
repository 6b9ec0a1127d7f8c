// Package viewer holds the window-independent parts of the desktop viewer:
// camera presets and orbit math, input actions, block picking and HUD text.
// The raylib window in the window subpackage drives them.
package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Preset is a named camera placement.
type Preset struct {
	Name     string
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

// Presets are selected with the number keys, in order.
var Presets = []Preset{
	{Name: "Untitled", Position: mgl64.Vec3{-110.15, 31.36, -79.78}, Target: mgl64.Vec3{4.81, 13.52, -4.62}},
	{Name: "Against", Position: mgl64.Vec3{98.5, 40.00, -61.2}, Target: mgl64.Vec3{0.3, 15.2, 7.67}},
	{Name: "Frontal", Position: mgl64.Vec3{-118.08, 45.50, -3.64}, Target: mgl64.Vec3{2.73, 11.70, -3.32}},
	{Name: "Immersive", Position: mgl64.Vec3{-58.62, 62.64, -1.58}, Target: mgl64.Vec3{8.97, 32.43, -1.26}},
}

const (
	minDistance = 10
	maxDistance = 400
	maxPitch    = math.Pi/2 - 0.05
)

// Orbit is a camera circling a target point.
type Orbit struct {
	Target   mgl64.Vec3
	Yaw      float64
	Pitch    float64
	Distance float64
}

// OrbitFrom converts a preset into orbit parameters.
func OrbitFrom(p Preset) Orbit {
	d := p.Position.Sub(p.Target)
	dist := d.Len()
	o := Orbit{Target: p.Target, Distance: dist}
	if dist > 0 {
		o.Yaw = math.Atan2(d[0], d[2])
		o.Pitch = math.Asin(d[1] / dist)
	}
	o.clamp()
	return o
}

// Position returns the eye position.
func (o Orbit) Position() mgl64.Vec3 {
	cp := math.Cos(o.Pitch)
	return o.Target.Add(mgl64.Vec3{
		o.Distance * cp * math.Sin(o.Yaw),
		o.Distance * math.Sin(o.Pitch),
		o.Distance * cp * math.Cos(o.Yaw),
	})
}

// Rotate turns the camera by the given angles in radians.
func (o *Orbit) Rotate(dyaw, dpitch float64) {
	o.Yaw += dyaw
	o.Pitch += dpitch
	o.clamp()
}

// Zoom scales the distance; factors below one move closer.
func (o *Orbit) Zoom(factor float64) {
	o.Distance *= factor
	o.clamp()
}

// Pan moves the target vertically, e.g. to follow a growing tower.
func (o *Orbit) Pan(dy float64) {
	o.Target[1] += dy
}

func (o *Orbit) clamp() {
	o.Pitch = mgl64.Clamp(o.Pitch, -maxPitch, maxPitch)
	o.Distance = mgl64.Clamp(o.Distance, minDistance, maxDistance)
}

// AxisAngle converts a rotation to an axis and an angle in degrees, the form
// immediate-mode renderers expect.
func AxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	q = q.Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	s := math.Sqrt(1 - q.W*q.W)
	if s < 1e-9 {
		return mgl64.Vec3{0, 1, 0}, 0
	}
	return q.V.Mul(1 / s), mgl64.RadToDeg(2 * math.Acos(q.W))
}

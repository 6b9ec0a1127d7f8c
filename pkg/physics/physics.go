// Package physics defines the rigid-body world the tower is simulated in.
//
// The engine itself is a collaborator: anything that can add and remove box
// bodies, advance time and report per-body transforms satisfies [World].
// Package memory provides a small deterministic implementation used for
// headless runs and tests.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/jengatower/pkg/geom"
)

// BodyID identifies a body within one World. Zero is never issued.
type BodyID uint64

// Standard tuning for tower bricks.
const (
	DefaultFriction             = 0.5
	DefaultRestitution          = 0.4
	DefaultLinearDamping        = 0.01
	DefaultAngularDamping       = 0.4
	DefaultCCDMotionThreshold   = 0.1
	DefaultCCDSweptSphereRadius = 0.05
	DefaultLinearSleep          = 0.01
	DefaultAngularSleep         = 0.01
	DefaultMargin               = 0.001

	DefaultGravity     = -9.8
	DefaultMaxSubSteps = 100
)

// BodyParams describes a box rigid body.
type BodyParams struct {
	HalfExtents mgl64.Vec3
	// Mass of zero makes the body static.
	Mass  float64
	Start geom.Transform

	Friction       float64
	Restitution    float64
	LinearDamping  float64
	AngularDamping float64

	// Continuous collision detection kicks in above this per-step motion.
	CCDMotionThreshold   float64
	CCDSweptSphereRadius float64

	LinearSleep  float64
	AngularSleep float64
	Margin       float64
}

// BoxParams returns the standard brick parameters for a box of full size
// `size` and the given mass, starting at t.
func BoxParams(size mgl64.Vec3, mass float64, t geom.Transform) BodyParams {
	return BodyParams{
		HalfExtents:          size.Mul(0.5),
		Mass:                 mass,
		Start:                t,
		Friction:             DefaultFriction,
		Restitution:          DefaultRestitution,
		LinearDamping:        DefaultLinearDamping,
		AngularDamping:       DefaultAngularDamping,
		CCDMotionThreshold:   DefaultCCDMotionThreshold,
		CCDSweptSphereRadius: DefaultCCDSweptSphereRadius,
		LinearSleep:          DefaultLinearSleep,
		AngularSleep:         DefaultAngularSleep,
		Margin:               DefaultMargin,
	}
}

// World is the simulation collaborator.
type World interface {
	AddBody(p BodyParams) (BodyID, error)
	// RemoveBody detaches a body. Unknown ids are ignored.
	RemoveBody(id BodyID)
	// Step advances the world by dt seconds using at most maxSubSteps
	// internal fixed steps.
	Step(dt float64, maxSubSteps int)
	// MotionState reports the body's current world transform; ok is false
	// for unknown bodies.
	MotionState(id BodyID) (t geom.Transform, ok bool)
	SetTransform(id BodyID, t geom.Transform)
	ZeroVelocity(id BodyID)
	// Activate wakes a sleeping body.
	Activate(id BodyID)
	BodyCount() int
}

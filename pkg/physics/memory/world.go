// Package memory is a deterministic in-process physics world.
//
// It integrates gravity and linear damping at a fixed internal step and
// resolves only vertical support: a box rests on the ground plane or on any
// box below it whose horizontal footprint overlaps its own. Orientation is
// never integrated. That is enough for a tower to settle, for blocks to fall
// when their support is removed and for headless runs to be reproducible.
package memory

import (
	"cmp"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/geom"
	"github.com/matzehuels/jengatower/pkg/physics"
)

const (
	defaultFixedStep = 1.0 / 60.0
	// Bounces slower than this stop dead instead of jittering forever.
	restingSpeed = 0.3
	// Seconds a body must stay below its sleep thresholds before it sleeps.
	sleepDelay = 0.5
	// Horizontal velocity lost per second of contact, per unit friction.
	frictionRate = 20.0
)

type body struct {
	params   physics.BodyParams
	t        geom.Transform
	vel      mgl64.Vec3
	sleeping bool
	idle     float64
}

func (b *body) static() bool { return b.params.Mass <= 0 }

func (b *body) extents() mgl64.Vec3 {
	return geom.WorldExtents(b.params.HalfExtents, b.t.Rotation)
}

// World implements physics.World.
type World struct {
	gravity   float64
	fixedStep float64
	groundY   float64
	accum     float64
	steps     int

	nextID physics.BodyID
	bodies map[physics.BodyID]*body
	order  []physics.BodyID
}

type Option func(*World)

func WithGravity(g float64) Option {
	return func(w *World) { w.gravity = g }
}

// WithFixedStep sets the internal integration step in seconds.
func WithFixedStep(h float64) Option {
	return func(w *World) {
		if h > 0 {
			w.fixedStep = h
		}
	}
}

func WithGround(y float64) Option {
	return func(w *World) { w.groundY = y }
}

func New(opts ...Option) *World {
	w := &World{
		gravity:   physics.DefaultGravity,
		fixedStep: defaultFixedStep,
		bodies:    make(map[physics.BodyID]*body),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) AddBody(p physics.BodyParams) (physics.BodyID, error) {
	h := p.HalfExtents
	if h[0] <= 0 || h[1] <= 0 || h[2] <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "body half-extents must be positive, got %v", h)
	}
	if p.Mass < 0 || math.IsNaN(p.Mass) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "body mass must be >= 0, got %v", p.Mass)
	}
	t := p.Start
	if t.Rotation.Len() == 0 {
		t.Rotation = mgl64.QuatIdent()
	}

	w.nextID++
	id := w.nextID
	w.bodies[id] = &body{params: p, t: t}
	w.order = append(w.order, id)
	return id, nil
}

func (w *World) RemoveBody(id physics.BodyID) {
	if _, ok := w.bodies[id]; !ok {
		return
	}
	delete(w.bodies, id)
	w.order = slices.DeleteFunc(w.order, func(o physics.BodyID) bool { return o == id })
}

// Step follows the usual fixed-step contract: time accumulates, whole
// internal steps are taken, and steps beyond maxSubSteps are dropped.
func (w *World) Step(dt float64, maxSubSteps int) {
	if dt <= 0 || math.IsNaN(dt) {
		return
	}
	maxSubSteps = max(maxSubSteps, 1)
	w.accum += dt
	n := int(w.accum / w.fixedStep)
	w.accum -= float64(n) * w.fixedStep
	for range min(n, maxSubSteps) {
		w.integrate(w.fixedStep)
	}
}

func (w *World) integrate(h float64) {
	w.steps++
	for _, id := range w.order {
		b := w.bodies[id]
		if b.static() || b.sleeping {
			continue
		}
		b.vel[1] += w.gravity * h
		b.vel = b.vel.Mul(math.Pow(1-b.params.LinearDamping, h))
		b.t.Position = b.t.Position.Add(b.vel.Mul(h))
	}

	// Resolve bottom-up so each box sees its supports already placed.
	sorted := slices.Clone(w.order)
	slices.SortStableFunc(sorted, func(a, c physics.BodyID) int {
		return cmp.Compare(w.bottom(w.bodies[a]), w.bottom(w.bodies[c]))
	})

	placed := make([]*body, 0, len(sorted))
	for _, id := range sorted {
		b := w.bodies[id]
		ext := b.extents()
		floor := w.support(b, ext, placed)
		bottom := b.t.Position[1] - ext[1]

		switch {
		case b.static():
		case bottom < floor:
			b.t.Position[1] = floor + ext[1]
			if b.vel[1] < 0 {
				b.vel[1] = -b.vel[1] * b.params.Restitution
				if b.vel[1] < restingSpeed {
					b.vel[1] = 0
				}
			}
			damp := math.Max(0, 1-b.params.Friction*frictionRate*h)
			b.vel[0] *= damp
			b.vel[2] *= damp
		case b.sleeping && bottom > floor+2*math.Max(b.params.Margin, 1e-6):
			b.sleeping = false
			b.idle = 0
		}
		placed = append(placed, b)
		w.updateSleep(b, h)
	}
}

func (w *World) bottom(b *body) float64 {
	return b.t.Position[1] - b.extents()[1]
}

// support returns the highest surface under b among the ground and the
// already placed bodies whose footprint overlaps b's.
func (w *World) support(b *body, ext mgl64.Vec3, placed []*body) float64 {
	floor := w.groundY
	for _, o := range placed {
		if o.t.Position[1] >= b.t.Position[1] {
			continue
		}
		oe := o.extents()
		if math.Abs(o.t.Position[0]-b.t.Position[0]) >= ext[0]+oe[0]-1e-9 {
			continue
		}
		if math.Abs(o.t.Position[2]-b.t.Position[2]) >= ext[2]+oe[2]-1e-9 {
			continue
		}
		floor = math.Max(floor, o.t.Position[1]+oe[1])
	}
	return floor
}

func (w *World) updateSleep(b *body, h float64) {
	if b.static() || b.sleeping {
		return
	}
	if b.vel.Len() < b.params.LinearSleep {
		b.idle += h
		if b.idle >= sleepDelay {
			b.sleeping = true
			b.vel = mgl64.Vec3{}
		}
		return
	}
	b.idle = 0
}

func (w *World) MotionState(id physics.BodyID) (geom.Transform, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return geom.Transform{}, false
	}
	return b.t, true
}

func (w *World) SetTransform(id physics.BodyID, t geom.Transform) {
	if b, ok := w.bodies[id]; ok {
		b.t = t
		b.sleeping = false
		b.idle = 0
	}
}

func (w *World) ZeroVelocity(id physics.BodyID) {
	if b, ok := w.bodies[id]; ok {
		b.vel = mgl64.Vec3{}
	}
}

func (w *World) Activate(id physics.BodyID) {
	if b, ok := w.bodies[id]; ok {
		b.sleeping = false
		b.idle = 0
	}
}

func (w *World) BodyCount() int { return len(w.bodies) }

// Velocity reports a body's linear velocity.
func (w *World) Velocity(id physics.BodyID) (mgl64.Vec3, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return b.vel, true
}

// SetVelocity sets a body's linear velocity and wakes it.
func (w *World) SetVelocity(id physics.BodyID, v mgl64.Vec3) {
	if b, ok := w.bodies[id]; ok {
		b.vel = v
		b.sleeping = false
		b.idle = 0
	}
}

// Sleeping reports whether a body is asleep.
func (w *World) Sleeping(id physics.BodyID) bool {
	b, ok := w.bodies[id]
	return ok && b.sleeping
}

// Params returns the parameters a body was created with.
func (w *World) Params(id physics.BodyID) (physics.BodyParams, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return physics.BodyParams{}, false
	}
	return b.params, true
}

// Steps returns the number of internal steps taken so far.
func (w *World) Steps() int { return w.steps }

var _ physics.World = (*World)(nil)

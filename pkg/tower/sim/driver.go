// Package sim advances the physics world once per frame and copies body
// transforms back onto block meshes.
package sim

import (
	"time"

	"github.com/matzehuels/jengatower/pkg/physics"
	"github.com/matzehuels/jengatower/pkg/tower/blocks"
)

// Time divisors: simulated time is frame time divided by the active
// divisor, so a larger value reads as slow motion.
const (
	DefaultTimeDivisor = 2
	BoostedTimeDivisor = 4
)

// Driver is the steady-state loop. It is the only writer of mesh
// transforms while it is enabled.
type Driver struct {
	world       physics.World
	blocks      *blocks.Manager
	enabled     bool
	boosted     bool
	divisor     float64
	boostedDiv  float64
	maxSubSteps int
	ticks       int
}

type Option func(*Driver)

func WithTimeDivisor(normal, boosted float64) Option {
	return func(d *Driver) {
		if normal > 0 {
			d.divisor = normal
		}
		if boosted > 0 {
			d.boostedDiv = boosted
		}
	}
}

func WithMaxSubSteps(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.maxSubSteps = n
		}
	}
}

// New returns an enabled driver.
func New(world physics.World, m *blocks.Manager, opts ...Option) *Driver {
	d := &Driver{
		world:       world,
		blocks:      m,
		enabled:     true,
		divisor:     DefaultTimeDivisor,
		boostedDiv:  BoostedTimeDivisor,
		maxSubSteps: physics.DefaultMaxSubSteps,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tick steps the world by frameDelta/divisor and syncs meshes. It does
// nothing while disabled and reports whether it stepped.
func (d *Driver) Tick(frameDelta time.Duration) bool {
	if !d.enabled {
		return false
	}
	d.world.Step(frameDelta.Seconds()/d.TimeDivisor(), d.maxSubSteps)
	d.Sync()
	d.ticks++
	return true
}

// Sync copies every attached body's motion state onto its mesh.
func (d *Driver) Sync() {
	for _, id := range d.blocks.IDs() {
		body, ok := d.blocks.Body(id)
		if !ok {
			continue
		}
		if t, ok := d.world.MotionState(body); ok {
			d.blocks.SetMeshTransform(id, t)
		}
	}
}

func (d *Driver) SetEnabled(on bool) { d.enabled = on }

func (d *Driver) Enabled() bool { return d.enabled }

// Boost switches between the normal and the boosted divisor.
func (d *Driver) Boost(on bool) { d.boosted = on }

func (d *Driver) Boosted() bool { return d.boosted }

// TimeDivisor returns the divisor in effect.
func (d *Driver) TimeDivisor() float64 {
	if d.boosted {
		return d.boostedDiv
	}
	return d.divisor
}

// Ticks counts the frames that actually stepped.
func (d *Driver) Ticks() int { return d.ticks }

// Package reconfig moves a live tower from one layout to another.
//
// A cycle runs Idle → Matching → Animating → Rebuilding → Idle. Matching
// pairs live blocks with the new targets, Animating eases every pair
// towards its target over a fixed duration with physics stepping off, and
// Rebuilding disposes blocks left without a target, creates blocks for
// targets left without one and gives every survivor a fresh body.
//
// The controller has no clock. Callers drive it with [Controller.Advance]
// once per frame, which makes every phase observable in tests.
package reconfig

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jengatower/pkg/geom"
	"github.com/matzehuels/jengatower/pkg/observability"
	"github.com/matzehuels/jengatower/pkg/tower/blocks"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
	"github.com/matzehuels/jengatower/pkg/tower/sim"
)

// DefaultDuration is the length of the Animating phase.
const DefaultDuration = 2 * time.Second

type Phase int

const (
	Idle Phase = iota
	Matching
	Animating
	Rebuilding
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Matching:
		return "matching"
	case Animating:
		return "animating"
	case Rebuilding:
		return "rebuilding"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for _, q := range []Phase{Idle, Matching, Animating, Rebuilding} {
		if q.String() == string(b) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Layouter produces the target layout for a sort key.
type Layouter func(key layout.SortKey) []layout.BlockSpec

// Summary describes a finished cycle.
type Summary struct {
	Key        layout.SortKey `json:"key"`
	Kept       int            `json:"kept"`
	Reassigned int            `json:"reassigned"`
	Removed    int            `json:"removed"`
	Created    int            `json:"created"`
	Targets    int            `json:"targets"`
	Duration   time.Duration  `json:"duration"`
	// Failures counts blocks whose body or mesh could not be rebuilt.
	Failures int `json:"failures,omitempty"`
}

// Controller runs one reconfiguration at a time.
type Controller struct {
	blocks   *blocks.Manager
	driver   *sim.Driver
	generate Layouter
	duration time.Duration
	logger   *log.Logger

	phase    Phase
	key      layout.SortKey
	plan     Plan
	starts   map[blocks.ID]geom.Transform
	elapsed  time.Duration
	progress float64
	last     Summary
	cycles   int
}

type Option func(*Controller)

func WithDuration(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.duration = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func New(m *blocks.Manager, driver *sim.Driver, generate Layouter, opts ...Option) *Controller {
	c := &Controller{
		blocks:   m,
		driver:   driver,
		generate: generate,
		duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// Trigger starts a cycle towards the layout for key. It returns false and
// changes nothing unless the controller is Idle.
func (c *Controller) Trigger(key layout.SortKey) bool {
	if c.phase != Idle {
		observability.Engine().OnTriggerRefused(c.phase.String())
		c.logger.Debug("reconfiguration refused", "phase", c.phase, "key", key)
		return false
	}
	c.setPhase(Matching)
	c.key = key

	ids := c.blocks.IDs()
	current := make([]Current, 0, len(ids))
	c.starts = make(map[blocks.ID]geom.Transform, len(ids))
	for _, id := range ids {
		meta, _ := c.blocks.Meta(id)
		current = append(current, Current{ID: id, Code: meta.Code})
		if t, ok := c.blocks.Transform(id); ok {
			c.starts[id] = t
		}
	}
	c.plan = Match(current, c.generate(key))
	c.driver.SetEnabled(false)
	// Orphans stay visible until Rebuilding but leave the physics world now.
	for _, id := range c.plan.Orphans {
		c.blocks.DetachBody(id)
	}

	c.elapsed = 0
	c.progress = 0
	c.setPhase(Animating)
	c.logger.Debug("reconfiguration started",
		"key", key, "pairs", len(c.plan.Pairs), "orphans", len(c.plan.Orphans), "new", len(c.plan.Unassigned))
	return true
}

// Advance moves the animation forward by delta. When progress reaches 1
// it runs the rebuild and returns to Idle within the same call. It
// returns the phase after the call.
func (c *Controller) Advance(delta time.Duration) Phase {
	if c.phase != Animating {
		return c.phase
	}
	c.elapsed += max(delta, 0)
	t := 1.0
	if c.duration > 0 {
		t = math.Min(1, float64(c.elapsed)/float64(c.duration))
	}
	c.progress = Ease(t)

	for _, p := range c.plan.Pairs {
		target := c.plan.Targets[p.Target].Transform
		c.blocks.SetMeshTransform(p.Block, geom.Interpolate(c.starts[p.Block], target, c.progress))
	}
	if t < 1 {
		return c.phase
	}

	c.finish()
	return c.phase
}

// Ease is the cubic ease-out curve.
func Ease(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return 1 - math.Pow(1-t, 3)
}

func (c *Controller) finish() {
	s := Summary{Key: c.key, Targets: len(c.plan.Targets), Duration: c.elapsed}
	// Kept blocks are retargeted too: their layer and slot changed.
	for _, p := range c.plan.Pairs {
		if err := c.blocks.Retarget(p.Block, c.plan.Targets[p.Target]); err != nil {
			c.logger.Warn("retarget failed", "block", p.Block, "err", err)
			s.Failures++
			continue
		}
		if p.Kept {
			s.Kept++
		} else {
			s.Reassigned++
		}
	}

	c.setPhase(Rebuilding)
	for _, id := range c.plan.Orphans {
		c.blocks.Remove(id)
		s.Removed++
	}
	for _, i := range c.plan.Unassigned {
		if _, err := c.blocks.Add(c.plan.Targets[i]); err != nil {
			c.logger.Warn("create block failed", "country", c.plan.Targets[i].Record.Code, "err", err)
			s.Failures++
			continue
		}
		s.Created++
	}
	for _, p := range c.plan.Pairs {
		if err := c.blocks.RebuildBody(p.Block); err != nil {
			c.logger.Warn("rebuild body failed", "block", p.Block, "err", err)
			s.Failures++
		}
	}
	c.driver.SetEnabled(true)

	c.last = s
	c.cycles++
	c.plan = Plan{}
	c.starts = nil
	c.setPhase(Idle)
	observability.Engine().OnReconfigComplete(s.Kept, s.Removed, s.Created, s.Duration)
	c.logger.Info("reconfigured", "key", s.Key, "kept", s.Kept, "reassigned", s.Reassigned,
		"removed", s.Removed, "created", s.Created)
}

func (c *Controller) setPhase(p Phase) {
	if p == c.phase {
		return
	}
	observability.Engine().OnPhaseChange(c.phase.String(), p.String())
	c.phase = p
}

func (c *Controller) Phase() Phase { return c.phase }

// Progress is the eased progress of the current animation, 0 when idle.
func (c *Controller) Progress() float64 {
	if c.phase == Idle {
		return 0
	}
	return c.progress
}

// Busy reports whether a cycle is in flight.
func (c *Controller) Busy() bool { return c.phase != Idle }

// Key returns the sort key of the current or last cycle.
func (c *Controller) Key() layout.SortKey { return c.key }

// Last summarizes the most recently completed cycle; ok is false before
// the first one.
func (c *Controller) Last() (Summary, bool) { return c.last, c.cycles > 0 }

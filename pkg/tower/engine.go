package tower

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/physics"
	"github.com/matzehuels/jengatower/pkg/render"
	"github.com/matzehuels/jengatower/pkg/tower/blocks"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
	"github.com/matzehuels/jengatower/pkg/tower/reconfig"
	"github.com/matzehuels/jengatower/pkg/tower/sim"
)

// Engine owns one tower. It is not safe for concurrent use.
type Engine struct {
	scene  render.Scene
	world  physics.World
	ds     *dataset.Dataset
	opts   Options
	logger *log.Logger

	blocks *blocks.Manager
	driver *sim.Driver
	ctrl   *reconfig.Controller

	key layout.SortKey
	// physics is the user's choice; the driver may be off regardless
	// while a drag or a reconfiguration is in progress.
	physics bool
	drag    *blocks.ID
}

func New(scene render.Scene, world physics.World, ds *dataset.Dataset, opts ...Option) *Engine {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	o.SetDefaults()
	logger := o.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	e := &Engine{
		scene:   scene,
		world:   world,
		ds:      ds,
		opts:    o,
		logger:  logger,
		key:     layout.DefaultSortKey(),
		physics: true,
	}
	e.blocks = blocks.New(scene, world,
		blocks.WithBrick(o.Layout.Brick),
		blocks.WithNeighbors(blocks.DatasetNeighbors(ds)),
		blocks.WithLogger(logger),
	)
	e.driver = sim.New(world, e.blocks,
		sim.WithTimeDivisor(o.TimeDivisor, o.BoostedDivisor),
		sim.WithMaxSubSteps(o.MaxSubSteps),
	)
	e.ctrl = reconfig.New(e.blocks, e.driver, e.Layout,
		reconfig.WithDuration(o.ReconfigDuration),
		reconfig.WithLogger(logger),
	)
	return e
}

// Layout generates the block specs for key from the engine's dataset.
func (e *Engine) Layout(key layout.SortKey) []layout.BlockSpec {
	return layout.Generate(e.ds.Results(), key, layout.WithOptions(e.opts.Layout))
}

// Build replaces the tower with a fresh one for key, bypassing any
// animation. It is refused while a reconfiguration is in flight.
func (e *Engine) Build(key layout.SortKey) error {
	if e.ctrl.Busy() {
		return errors.New(errors.ErrCodeReconfigBusy, "cannot rebuild during %s", e.ctrl.Phase())
	}
	e.drag = nil
	e.blocks.Clear()
	specs := e.Layout(key)
	if _, err := e.blocks.Populate(specs); err != nil {
		return err
	}
	e.key = key
	e.driver.SetEnabled(e.physics)
	e.logger.Info("tower built", "key", key, "layers", len(layout.Layers(specs)), "blocks", len(specs))
	return nil
}

// Tick advances the engine by one frame.
func (e *Engine) Tick(delta time.Duration) {
	if e.ctrl.Busy() {
		if e.ctrl.Advance(delta) == reconfig.Idle {
			e.driver.SetEnabled(e.physics)
		}
		return
	}
	e.driver.Tick(delta)
}

// Reconfigure starts an animated transition to key. It returns false when
// a transition is already running. An active drag is released first.
func (e *Engine) Reconfigure(key layout.SortKey) bool {
	if e.ctrl.Busy() {
		return e.ctrl.Trigger(key)
	}
	if e.drag != nil {
		_ = e.EndDrag(*e.drag)
	}
	if !e.ctrl.Trigger(key) {
		return false
	}
	e.key = key
	return true
}

// TogglePhysics flips the user's physics setting and returns it. While a
// reconfiguration runs the setting takes effect once it completes.
func (e *Engine) TogglePhysics() bool {
	e.SetPhysics(!e.physics)
	return e.physics
}

func (e *Engine) SetPhysics(on bool) {
	e.physics = on
	if !e.ctrl.Busy() && e.drag == nil {
		e.driver.SetEnabled(on)
	}
}

// Physics reports the user's physics setting.
func (e *Engine) Physics() bool { return e.physics }

// SetSlowMotion selects the boosted time divisor.
func (e *Engine) SetSlowMotion(on bool) { e.driver.Boost(on) }

func (e *Engine) Key() layout.SortKey { return e.key }

func (e *Engine) Phase() reconfig.Phase { return e.ctrl.Phase() }

// LastReconfig summarizes the most recent completed transition.
func (e *Engine) LastReconfig() (reconfig.Summary, bool) { return e.ctrl.Last() }

func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

func (e *Engine) Blocks() *blocks.Manager { return e.blocks }

// Close disposes every block.
func (e *Engine) Close() {
	e.drag = nil
	e.blocks.Clear()
}

package tower

import (
	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/geom"
	"github.com/matzehuels/jengatower/pkg/tower/blocks"
)

// BeginDrag pauses physics so that id can be placed by hand. Only one
// block is dragged at a time and never during a reconfiguration.
func (e *Engine) BeginDrag(id blocks.ID) error {
	if e.ctrl.Busy() {
		return errors.New(errors.ErrCodeDragRefused, "reconfiguration in progress")
	}
	if !e.blocks.Has(id) {
		return errors.New(errors.ErrCodeBlockNotFound, "block %s", id)
	}
	if e.drag != nil && *e.drag != id {
		return errors.New(errors.ErrCodeDragRefused, "block %s is already being dragged", *e.drag)
	}
	e.drag = &id
	e.driver.SetEnabled(false)
	return nil
}

// DragTo moves the dragged block and clears its velocity.
func (e *Engine) DragTo(id blocks.ID, t geom.Transform) error {
	if e.drag == nil || *e.drag != id {
		return errors.New(errors.ErrCodeDragRefused, "block %s is not being dragged", id)
	}
	if err := e.blocks.SetTransform(id, t); err != nil {
		return err
	}
	if body, ok := e.blocks.Body(id); ok {
		e.world.ZeroVelocity(body)
	}
	return nil
}

// EndDrag releases the block and restores the user's physics setting.
func (e *Engine) EndDrag(id blocks.ID) error {
	if e.drag == nil || *e.drag != id {
		return errors.New(errors.ErrCodeDragRefused, "block %s is not being dragged", id)
	}
	e.drag = nil
	if body, ok := e.blocks.Body(id); ok {
		e.world.ZeroVelocity(body)
		e.world.Activate(body)
	}
	e.driver.SetEnabled(e.physics)
	return nil
}

// Dragging returns the dragged block, if any.
func (e *Engine) Dragging() (blocks.ID, bool) {
	if e.drag == nil {
		return blocks.ID{}, false
	}
	return *e.drag, true
}

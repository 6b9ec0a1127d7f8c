package blocks

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/geom"
	"github.com/matzehuels/jengatower/pkg/observability"
	"github.com/matzehuels/jengatower/pkg/physics"
	"github.com/matzehuels/jengatower/pkg/render"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

type block struct {
	mesh render.Handle
	body physics.BodyID // zero while detached
	meta Meta
}

// Manager owns every live block of one tower.
type Manager struct {
	scene     render.Scene
	world     physics.World
	brick     layout.Brick
	neighbors NeighborFunc
	logger    *log.Logger
	newID     func() ID

	order  []ID
	blocks map[ID]*block
}

type Option func(*Manager)

// WithBrick sets the size and mass of new blocks.
func WithBrick(b layout.Brick) Option {
	return func(m *Manager) { m.brick = b }
}

// WithNeighbors fills Meta.Neighbors on creation and retarget.
func WithNeighbors(fn NeighborFunc) Option {
	return func(m *Manager) { m.neighbors = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithIDSource replaces the random id generator.
func WithIDSource(fn func() ID) Option {
	return func(m *Manager) { m.newID = fn }
}

func New(scene render.Scene, world physics.World, opts ...Option) *Manager {
	m := &Manager{
		scene:  scene,
		world:  world,
		brick:  layout.DefaultBrick(),
		newID:  NewID,
		blocks: make(map[ID]*block),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	return m
}

// Populate creates one block per spec at the spec's rest pose. It is all
// or nothing: if any block fails, those created by this call are disposed
// and the error is returned.
func (m *Manager) Populate(specs []layout.BlockSpec) ([]ID, error) {
	ids := make([]ID, 0, len(specs))
	for _, s := range specs {
		id, err := m.add(s)
		if err != nil {
			for _, created := range ids {
				m.dispose(created)
			}
			m.notify()
			return nil, err
		}
		ids = append(ids, id)
	}
	m.notify()
	m.logger.Debug("populated blocks", "created", len(ids), "live", len(m.order))
	return ids, nil
}

// Add creates a single block.
func (m *Manager) Add(spec layout.BlockSpec) (ID, error) {
	id, err := m.add(spec)
	if err == nil {
		m.notify()
	}
	return id, err
}

func (m *Manager) add(s layout.BlockSpec) (ID, error) {
	mesh, err := m.scene.AddBox(m.brick.Size(), s.Color, s.Transform)
	if err != nil {
		return ID{}, errors.Wrap(errors.ErrCodeInternal, err, "create mesh for %s", s.Record.Code)
	}
	body, err := m.world.AddBody(m.bodyParams(s.Transform))
	if err != nil {
		m.scene.Remove(mesh)
		return ID{}, errors.Wrap(errors.ErrCodeInternal, err, "create body for %s", s.Record.Code)
	}
	id := m.newID()
	m.blocks[id] = &block{mesh: mesh, body: body, meta: MetaFor(s, m.neighbors)}
	m.order = append(m.order, id)
	return id, nil
}

func (m *Manager) bodyParams(t geom.Transform) physics.BodyParams {
	return physics.BoxParams(m.brick.Size(), m.brick.Mass, t)
}

// Remove disposes a block. Unknown ids are ignored.
func (m *Manager) Remove(id ID) {
	if m.dispose(id) {
		m.notify()
	}
}

// Clear disposes every block.
func (m *Manager) Clear() {
	n := len(m.order)
	for _, id := range slices.Clone(m.order) {
		m.dispose(id)
	}
	if n > 0 {
		m.notify()
		m.logger.Debug("cleared blocks", "removed", n)
	}
}

// dispose is the only place a block leaves the live set. The body goes
// before the mesh.
func (m *Manager) dispose(id ID) bool {
	b, ok := m.blocks[id]
	if !ok {
		return false
	}
	if b.body != 0 {
		m.world.RemoveBody(b.body)
		b.body = 0
	}
	m.scene.Remove(b.mesh)
	delete(m.blocks, id)
	m.order = slices.DeleteFunc(m.order, func(o ID) bool { return o == id })
	return true
}

// DetachBody removes the block's body from the world and keeps the mesh.
// The block has no body until RebuildBody is called.
func (m *Manager) DetachBody(id ID) {
	b, ok := m.blocks[id]
	if !ok || b.body == 0 {
		return
	}
	m.world.RemoveBody(b.body)
	b.body = 0
}

// RebuildBody discards any existing body and creates a fresh one, with
// standard parameters, at the mesh's current transform.
func (m *Manager) RebuildBody(id ID) error {
	b, ok := m.blocks[id]
	if !ok {
		return errors.New(errors.ErrCodeBlockNotFound, "block %s", id)
	}
	t, ok := m.scene.Transform(b.mesh)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "block %s has no mesh", id)
	}
	if b.body != 0 {
		m.world.RemoveBody(b.body)
		b.body = 0
	}
	body, err := m.world.AddBody(m.bodyParams(t))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "rebuild body for %s", id)
	}
	b.body = body
	return nil
}

// Retarget makes the block stand for spec's country: color and metadata
// change, transform does not.
func (m *Manager) Retarget(id ID, spec layout.BlockSpec) error {
	b, ok := m.blocks[id]
	if !ok {
		return errors.New(errors.ErrCodeBlockNotFound, "block %s", id)
	}
	b.meta = MetaFor(spec, m.neighbors)
	m.scene.SetColor(b.mesh, spec.Color)
	return nil
}

// SetTransform moves the mesh and, if attached, teleports the body.
func (m *Manager) SetTransform(id ID, t geom.Transform) error {
	b, ok := m.blocks[id]
	if !ok {
		return errors.New(errors.ErrCodeBlockNotFound, "block %s", id)
	}
	m.scene.SetTransform(b.mesh, t)
	if b.body != 0 {
		m.world.SetTransform(b.body, t)
	}
	return nil
}

// SetMeshTransform moves only the mesh.
func (m *Manager) SetMeshTransform(id ID, t geom.Transform) {
	if b, ok := m.blocks[id]; ok {
		m.scene.SetTransform(b.mesh, t)
	}
}

// Transform returns the mesh transform.
func (m *Manager) Transform(id ID) (geom.Transform, bool) {
	b, ok := m.blocks[id]
	if !ok {
		return geom.Transform{}, false
	}
	return m.scene.Transform(b.mesh)
}

func (m *Manager) Meta(id ID) (Meta, bool) {
	b, ok := m.blocks[id]
	if !ok {
		return Meta{}, false
	}
	meta := b.meta
	meta.Neighbors = slices.Clone(meta.Neighbors)
	return meta, true
}

// Body returns the block's body; ok is false for unknown or detached
// blocks.
func (m *Manager) Body(id ID) (physics.BodyID, bool) {
	b, ok := m.blocks[id]
	if !ok || b.body == 0 {
		return 0, false
	}
	return b.body, true
}

func (m *Manager) Mesh(id ID) (render.Handle, bool) {
	b, ok := m.blocks[id]
	if !ok {
		return 0, false
	}
	return b.mesh, true
}

// IDs lists live blocks in insertion order.
func (m *Manager) IDs() []ID { return slices.Clone(m.order) }

func (m *Manager) Has(id ID) bool {
	_, ok := m.blocks[id]
	return ok
}

func (m *Manager) Len() int { return len(m.order) }

// BodyCount counts attached bodies owned by this manager.
func (m *Manager) BodyCount() int {
	n := 0
	for _, b := range m.blocks {
		if b.body != 0 {
			n++
		}
	}
	return n
}

// Brick returns the dimensions new blocks are built with.
func (m *Manager) Brick() layout.Brick { return m.brick }

func (m *Manager) notify() {
	observability.Engine().OnBlocksChanged(m.Len(), m.BodyCount())
}

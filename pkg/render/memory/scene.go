// Package memory is a render.Scene that only records state.
package memory

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/geom"
	"github.com/matzehuels/jengatower/pkg/render"
)

// Box is the recorded state of one mesh.
type Box struct {
	Size      mgl64.Vec3
	Color     colorful.Color
	Transform geom.Transform
}

// Scene implements render.Scene.
type Scene struct {
	next     render.Handle
	boxes    map[render.Handle]*Box
	order    []render.Handle
	disposed int
}

func New() *Scene {
	return &Scene{boxes: make(map[render.Handle]*Box)}
}

func (s *Scene) AddBox(size mgl64.Vec3, c colorful.Color, t geom.Transform) (render.Handle, error) {
	if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "box size must be positive, got %v", size)
	}
	s.next++
	s.boxes[s.next] = &Box{Size: size, Color: c, Transform: t}
	s.order = append(s.order, s.next)
	return s.next, nil
}

func (s *Scene) Remove(h render.Handle) {
	if _, ok := s.boxes[h]; !ok {
		return
	}
	delete(s.boxes, h)
	s.order = slices.DeleteFunc(s.order, func(o render.Handle) bool { return o == h })
	s.disposed++
}

func (s *Scene) Transform(h render.Handle) (geom.Transform, bool) {
	b, ok := s.boxes[h]
	if !ok {
		return geom.Transform{}, false
	}
	return b.Transform, true
}

func (s *Scene) SetTransform(h render.Handle, t geom.Transform) {
	if b, ok := s.boxes[h]; ok {
		b.Transform = t
	}
}

func (s *Scene) SetColor(h render.Handle, c colorful.Color) {
	if b, ok := s.boxes[h]; ok {
		b.Color = c
	}
}

func (s *Scene) Len() int { return len(s.boxes) }

// Box returns a copy of the recorded box.
func (s *Scene) Box(h render.Handle) (Box, bool) {
	b, ok := s.boxes[h]
	if !ok {
		return Box{}, false
	}
	return *b, true
}

// Handles returns live handles in creation order.
func (s *Scene) Handles() []render.Handle {
	return slices.Clone(s.order)
}

// Disposed counts boxes removed so far.
func (s *Scene) Disposed() int { return s.disposed }

var _ render.Scene = (*Scene)(nil)

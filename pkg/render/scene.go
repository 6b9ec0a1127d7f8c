package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/jengatower/pkg/geom"
)

// Handle identifies a box within one Scene. Zero is never issued.
type Handle uint64

// Scene is the rendering collaborator.
type Scene interface {
	// AddBox creates a box mesh of full size `size`.
	AddBox(size mgl64.Vec3, color colorful.Color, t geom.Transform) (Handle, error)
	// Remove detaches the mesh and releases its geometry and material.
	// Unknown handles are ignored.
	Remove(h Handle)
	Transform(h Handle) (geom.Transform, bool)
	SetTransform(h Handle, t geom.Transform)
	SetColor(h Handle, c colorful.Color)
	Len() int
}

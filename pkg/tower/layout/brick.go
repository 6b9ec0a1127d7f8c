package layout

import "github.com/go-gl/mathgl/mgl64"

// Brick holds the fixed dimensions and mass of every block.
type Brick struct {
	Length float64 `json:"length" yaml:"length" toml:"length"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
	Depth  float64 `json:"depth" yaml:"depth" toml:"depth"`
	Mass   float64 `json:"mass" yaml:"mass" toml:"mass"`
}

// Default brick: 4.8 long, a third as deep and a quarter as high.
const (
	DefaultLength = 4.8
	DefaultDepth  = DefaultLength / 3
	DefaultHeight = DefaultLength / 4
	DefaultMass   = 100

	// DefaultHeightOffset sinks each layer slightly into the one below so
	// that the tower starts in contact instead of dropping onto itself.
	DefaultHeightOffset = -0.0008
)

func DefaultBrick() Brick {
	return Brick{Length: DefaultLength, Height: DefaultHeight, Depth: DefaultDepth, Mass: DefaultMass}
}

// Size returns the brick's full extent in its local frame: length along x,
// height along y, depth along z.
func (b Brick) Size() mgl64.Vec3 {
	return mgl64.Vec3{b.Length, b.Height, b.Depth}
}

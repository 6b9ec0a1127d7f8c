// Package blocks owns the live set of tower blocks.
//
// A block pairs a render mesh with a physics body. [Manager] is the only
// thing that creates or destroys either half, and it does both through a
// single disposal routine so that a mesh never outlives its body or the
// other way round. Metadata about the country a block stands for lives in
// a typed side-table keyed by [ID] rather than on the render handle.
//
// Lifecycle:
//
//	m := blocks.New(scene, world, blocks.WithBrick(layout.DefaultBrick()))
//	ids, err := m.Populate(specs)   // mesh + body per spec
//	m.Remove(ids[0])                // body first, then mesh; idempotent
//	m.Clear()                       // Len() == 0, no owned bodies remain
package blocks

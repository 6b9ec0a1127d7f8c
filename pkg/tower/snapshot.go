package tower

import (
	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/tower/blocks"
	"github.com/matzehuels/jengatower/pkg/tower/reconfig"
)

// BlockState is one block in a Snapshot.
type BlockState struct {
	ID       blocks.ID      `json:"id"`
	Country  string         `json:"country"`
	Name     string         `json:"name"`
	Region   dataset.Region `json:"region"`
	Color    string         `json:"color"`
	Label    string         `json:"label"`
	Layer    int            `json:"layer"`
	Slot     int            `json:"slot"`
	Position [3]float64     `json:"position"`
	// Rotation is a unit quaternion as x, y, z, w.
	Rotation [4]float64 `json:"rotation"`
}

// Snapshot is a serializable view of the engine.
type Snapshot struct {
	Key      string         `json:"key"`
	Phase    reconfig.Phase `json:"phase"`
	Progress float64        `json:"progress"`
	Physics  bool           `json:"physics"`
	Blocks   []BlockState   `json:"blocks"`
}

func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Key:      e.key.String(),
		Phase:    e.ctrl.Phase(),
		Progress: e.ctrl.Progress(),
		Physics:  e.physics,
		Blocks:   make([]BlockState, 0, e.blocks.Len()),
	}
	for _, id := range e.blocks.IDs() {
		meta, _ := e.blocks.Meta(id)
		t, _ := e.blocks.Transform(id)
		q := t.Rotation
		s.Blocks = append(s.Blocks, BlockState{
			ID:       id,
			Country:  meta.Code,
			Name:     meta.Name,
			Region:   meta.Region,
			Color:    meta.Color.Hex(),
			Label:    meta.Label,
			Layer:    meta.Layer,
			Slot:     meta.Slot,
			Position: [3]float64(t.Position),
			Rotation: [4]float64{q.V[0], q.V[1], q.V[2], q.W},
		})
	}
	return s
}

// Top returns the highest block top in the snapshot, by center height
// plus half the brick height.
func (s Snapshot) Top(brickHeight float64) float64 {
	top := 0.0
	for _, b := range s.Blocks {
		top = max(top, b.Position[1]+brickHeight/2)
	}
	return top
}

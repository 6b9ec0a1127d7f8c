package pipeline

import (
	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

// Document is the JSON export of a layout.
type Document struct {
	Key       string         `json:"key"`
	Metric    string         `json:"metric"`
	Ascending bool           `json:"ascending"`
	Layers    int            `json:"layers"`
	Height    float64        `json:"height"`
	Brick     layout.Brick   `json:"brick"`
	Blocks    []BlockExport  `json:"blocks"`
	Legend    []LegendEntry  `json:"legend"`
	Buckets   []BucketExport `json:"buckets"`
}

// BlockExport is one block of a Document.
type BlockExport struct {
	Layer      int        `json:"layer"`
	Slot       int        `json:"slot"`
	Bucket     int        `json:"bucket"`
	Label      string     `json:"label"`
	Country    string     `json:"country"`
	Name       string     `json:"name"`
	Region     string     `json:"region"`
	Color      string     `json:"color"`
	Companies  int        `json:"companies"`
	Centrality float64    `json:"centrality"`
	PageRank   float64    `json:"pagerank"`
	Position   [3]float64 `json:"position"`
	Rotation   [4]float64 `json:"rotation"`
}

type LegendEntry struct {
	Region string `json:"region"`
	Color  string `json:"color"`
}

type BucketExport struct {
	Bucket int    `json:"bucket"`
	Label  string `json:"label"`
	Slots  []int  `json:"slots"`
}

// Export flattens specs into a Document.
func Export(specs []layout.BlockSpec, key layout.SortKey, opts layout.Options) Document {
	doc := Document{
		Key:       key.String(),
		Metric:    key.Metric.Label(),
		Ascending: key.Ascending,
		Layers:    len(layout.Layers(specs)),
		Height:    layout.Height(specs, opts),
		Brick:     opts.Brick,
		Blocks:    make([]BlockExport, 0, len(specs)),
	}
	for _, s := range specs {
		q := s.Transform.Rotation
		doc.Blocks = append(doc.Blocks, BlockExport{
			Layer:      s.Layer,
			Slot:       s.Slot,
			Bucket:     s.Bucket,
			Label:      s.Label,
			Country:    s.Record.Code,
			Name:       s.Record.Name,
			Region:     s.Record.Region.String(),
			Color:      s.Color.Hex(),
			Companies:  s.Record.Companies,
			Centrality: s.Record.Centrality,
			PageRank:   s.Record.PageRank,
			Position:   [3]float64(s.Transform.Position),
			Rotation:   [4]float64{q.V[0], q.V[1], q.V[2], q.W},
		})
	}
	for _, r := range dataset.Regions {
		doc.Legend = append(doc.Legend, LegendEntry{Region: r.String(), Color: r.Hex()})
	}
	for b := 1; b <= layout.Buckets; b++ {
		doc.Buckets = append(doc.Buckets, BucketExport{Bucket: b, Label: layout.BucketLabel(b), Slots: layout.OccupiedSlots(b)})
	}
	return doc
}

// Export flattens the result's layout.
func (r *Result) Export(opts layout.Options) Document {
	return Export(r.Specs, r.Key, opts)
}

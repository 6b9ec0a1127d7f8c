package blocks

import (
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

// ID identifies a block for its whole life, across reconfigurations.
type ID uuid.UUID

// NewID returns a random block id.
func NewID() ID { return ID(uuid.New()) }

func (id ID) String() string { return uuid.UUID(id).String() }

func (id ID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseID parses the canonical string form.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	return ID(u), err
}

// Meta is what a block currently represents.
type Meta struct {
	Code       string         `json:"code"`
	Name       string         `json:"name"`
	Region     dataset.Region `json:"region"`
	Color      colorful.Color `json:"-"`
	Companies  int            `json:"companies"`
	Centrality float64        `json:"centrality"`
	PageRank   float64        `json:"pagerank"`
	Layer      int            `json:"layer"`
	Slot       int            `json:"slot"`
	Bucket     int            `json:"bucket"`
	Label      string         `json:"label"`
	Neighbors  []string       `json:"neighbors,omitempty"`
}

// MetaFor derives the metadata of a block standing for spec. neighbors
// may be nil.
func MetaFor(spec layout.BlockSpec, neighbors NeighborFunc) Meta {
	r := spec.Record
	m := Meta{
		Code:       r.Code,
		Name:       r.Name,
		Region:     r.Region,
		Color:      spec.Color,
		Companies:  r.Companies,
		Centrality: r.Centrality,
		PageRank:   r.PageRank,
		Layer:      spec.Layer,
		Slot:       spec.Slot,
		Bucket:     spec.Bucket,
		Label:      spec.Label,
	}
	if neighbors != nil {
		m.Neighbors = neighbors(r.Code)
	}
	return m
}

// NeighborFunc lists the countries linked to code.
type NeighborFunc func(code string) []string

// DatasetNeighbors adapts a dataset's link index.
func DatasetNeighbors(ds *dataset.Dataset) NeighborFunc {
	return func(code string) []string {
		links := ds.Neighbors(code)
		out := make([]string, 0, len(links))
		for _, l := range links {
			out = append(out, l.Other(code))
		}
		return out
	}
}

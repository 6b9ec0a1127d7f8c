// Package dataset loads and validates the per-country metrics and the
// bilateral link table the tower is built from.
//
// [Load] fetches both tables concurrently, sanitizes every row and returns
// an immutable [Dataset], or a LOAD_FAILED / EMPTY_DATASET error. Defective
// rows never fail a load; they are dropped or clamped and logged.
package dataset

import (
	"encoding/json"

	"github.com/matzehuels/jengatower/pkg/errors"
)

// CountryRecord is one row of the metrics table, keyed by ISO code.
type CountryRecord struct {
	Code       string  `json:"country_iso_code"`
	Name       string  `json:"country"`
	Region     Region  `json:"macro_region"`
	Companies  int     `json:"number_of_companies"`
	Centrality float64 `json:"mean_betweeness_centrality"`
	PageRank   float64 `json:"mean_page_rank"`
}

// LinkRecord is an undirected trade edge between two countries.
type LinkRecord struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Value        float64 `json:"value"`
	SourceRegion Region  `json:"source_macro_region"`
	TargetRegion Region  `json:"target_macro_region"`
}

// Touches reports whether code is either endpoint.
func (l LinkRecord) Touches(code string) bool {
	return l.Source == code || l.Target == code
}

// Other returns the endpoint opposite code.
func (l LinkRecord) Other(code string) string {
	if l.Source == code {
		return l.Target
	}
	return l.Source
}

// Node is a country merged with its adjacency list.
type Node struct {
	Record    CountryRecord
	Neighbors []LinkRecord
}

// Dataset is the validated, immutable result of a load. Accessors return
// copies so callers can sort or trim freely.
type Dataset struct {
	results []CountryRecord
	links   []LinkRecord
	nodes   map[string]Node
}

// New builds a Dataset from already-sanitized records: it derives link
// regions, builds the neighbor index and runs the consistency check.
func New(results []CountryRecord, links []LinkRecord) (*Dataset, error) {
	if !hasIdentifiedRecord(results) {
		return nil, errors.New(errors.ErrCodeEmptyDataset, "no country record has both an ISO code and a name")
	}

	ds := &Dataset{
		results: append([]CountryRecord(nil), results...),
		links:   make([]LinkRecord, len(links)),
		nodes:   make(map[string]Node, len(results)),
	}
	for _, r := range ds.results {
		ds.nodes[r.Code] = Node{Record: r}
	}
	for i, l := range links {
		if n, ok := ds.nodes[l.Source]; ok {
			l.SourceRegion = n.Record.Region
		}
		if n, ok := ds.nodes[l.Target]; ok {
			l.TargetRegion = n.Record.Region
		}
		ds.links[i] = l
		ds.addNeighbor(l.Source, l)
		if l.Target != l.Source {
			ds.addNeighbor(l.Target, l)
		}
	}
	return ds, nil
}

func (d *Dataset) addNeighbor(code string, l LinkRecord) {
	n, ok := d.nodes[code]
	if !ok {
		return
	}
	n.Neighbors = append(n.Neighbors, l)
	d.nodes[code] = n
}

func hasIdentifiedRecord(rs []CountryRecord) bool {
	for _, r := range rs {
		if r.Code != "" && r.Name != "" {
			return true
		}
	}
	return false
}

// Results returns a copy of the country records in load order.
func (d *Dataset) Results() []CountryRecord {
	return append([]CountryRecord(nil), d.results...)
}

// Links returns a copy of the link records in load order.
func (d *Dataset) Links() []LinkRecord {
	return append([]LinkRecord(nil), d.links...)
}

// Len returns the number of country records.
func (d *Dataset) Len() int { return len(d.results) }

// Node looks up a country merged with its adjacency list.
func (d *Dataset) Node(code string) (Node, bool) {
	n, ok := d.nodes[code]
	if !ok {
		return Node{}, false
	}
	n.Neighbors = append([]LinkRecord(nil), n.Neighbors...)
	return n, true
}

// Neighbors returns every link touching code, or nil for unknown codes.
func (d *Dataset) Neighbors(code string) []LinkRecord {
	n, ok := d.Node(code)
	if !ok {
		return nil
	}
	return n.Neighbors
}

type datasetJSON struct {
	Results []CountryRecord `json:"results"`
	Links   []LinkRecord    `json:"links"`
}

func (d *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(datasetJSON{Results: d.results, Links: d.links})
}

// UnmarshalJSON rebuilds the neighbor index, so a cached dataset is
// indistinguishable from a freshly loaded one.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	var raw datasetJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	built, err := New(raw.Results, raw.Links)
	if err != nil {
		return err
	}
	*d = *built
	return nil
}

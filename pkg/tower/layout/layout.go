package layout

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/geom"
)

// SortKey selects the metric layers are ordered by.
type SortKey struct {
	Metric    dataset.Metric
	Ascending bool
}

// DefaultSortKey orders by company count, largest at the bottom.
func DefaultSortKey() SortKey {
	return SortKey{Metric: dataset.MetricCompanies}
}

// ParseSortKey accepts "metric", "metric:asc" or "metric:desc".
func ParseSortKey(s string) (SortKey, error) {
	name, dir, _ := strings.Cut(strings.TrimSpace(s), ":")
	m, err := dataset.ParseMetric(name)
	if err != nil {
		return SortKey{}, err
	}
	key := SortKey{Metric: m}
	switch strings.ToLower(dir) {
	case "", "desc":
	case "asc":
		key.Ascending = true
	default:
		return SortKey{}, errors.New(errors.ErrCodeInvalidSortKey, "unknown sort direction %q (want asc or desc)", dir)
	}
	return key, nil
}

func (k SortKey) String() string {
	dir := "desc"
	if k.Ascending {
		dir = "asc"
	}
	return k.Metric.Short() + ":" + dir
}

// BlockSpec is the target of one block: where it goes and whom it stands
// for. Specs are values and are never mutated after Generate returns.
type BlockSpec struct {
	Layer     int
	Slot      int
	Bucket    int
	Transform geom.Transform
	Record    dataset.CountryRecord
	Color     colorful.Color
	Label     string
}

// Options configures Generate.
type Options struct {
	Brick        Brick
	HeightOffset float64
	// Limit keeps only the first Limit layers after sorting; 0 keeps all.
	Limit int
	// ShowAll fills every slot regardless of centrality.
	ShowAll bool
}

type Option func(*Options)

func WithDimensions(b Brick) Option {
	return func(o *Options) { o.Brick = b }
}

func WithHeightOffset(off float64) Option {
	return func(o *Options) { o.HeightOffset = off }
}

func WithLimit(n int) Option {
	return func(o *Options) { o.Limit = n }
}

func WithShowAll(all bool) Option {
	return func(o *Options) { o.ShowAll = all }
}

// WithOptions replaces every option at once.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

// DefaultOptions returns the standard brick and height offset.
func DefaultOptions() Options {
	return Options{Brick: DefaultBrick(), HeightOffset: DefaultHeightOffset}
}

// quarterTurn rotates odd layers 90° about +Y.
var quarterTurn = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})

// Generate produces the block specs of a tower in layer order, slots
// ascending within a layer. An empty input yields an empty layout.
func Generate(records []dataset.CountryRecord, key SortKey, opts ...Option) []BlockSpec {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if len(records) == 0 {
		return nil
	}

	q := NewQuantizer(records)
	sorted := Sort(records, key)
	if o.Limit > 0 && o.Limit < len(sorted) {
		sorted = sorted[:o.Limit]
	}

	specs := make([]BlockSpec, 0, len(sorted)*SlotsPerLayer)
	for j, rec := range sorted {
		bucket := Buckets
		if !o.ShowAll {
			bucket = q.Bucket(rec.Centrality)
		}
		for _, slot := range OccupiedSlots(bucket) {
			specs = append(specs, BlockSpec{
				Layer:     j,
				Slot:      slot,
				Bucket:    bucket,
				Transform: SlotTransform(j, slot, o),
				Record:    rec,
				Color:     rec.Region.Color(),
				Label:     BucketLabel(bucket),
			})
		}
	}
	return specs
}

// Sort returns a stably sorted copy of records.
func Sort(records []dataset.CountryRecord, key SortKey) []dataset.CountryRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b dataset.CountryRecord) int {
		if key.Ascending {
			return cmp.Compare(key.Metric.Value(a), key.Metric.Value(b))
		}
		return cmp.Compare(key.Metric.Value(b), key.Metric.Value(a))
	})
	return sorted
}

// SlotTransform returns the rest pose of slot in layer.
func SlotTransform(layer, slot int, o Options) geom.Transform {
	y := (o.Brick.Height + o.HeightOffset) * (float64(layer) + 0.5)
	offset := float64(slot-1) * o.Brick.Depth
	if layer%2 == 1 {
		return geom.Transform{Position: mgl64.Vec3{offset, y, 0}, Rotation: quarterTurn}
	}
	return geom.Transform{Position: mgl64.Vec3{0, y, offset}, Rotation: mgl64.QuatIdent()}
}

// Layers groups specs by layer index, preserving order.
func Layers(specs []BlockSpec) [][]BlockSpec {
	var out [][]BlockSpec
	for _, s := range specs {
		for len(out) <= s.Layer {
			out = append(out, nil)
		}
		out[s.Layer] = append(out[s.Layer], s)
	}
	return out
}

// Height returns the top of the highest layer.
func Height(specs []BlockSpec, o Options) float64 {
	if len(specs) == 0 {
		return 0
	}
	top := specs[len(specs)-1].Layer + 1
	return (o.Brick.Height + o.HeightOffset) * float64(top)
}

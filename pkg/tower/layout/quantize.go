package layout

import (
	"math"

	"github.com/matzehuels/jengatower/pkg/dataset"
)

// Buckets is the number of slot-count classes.
const Buckets = 4

// Quantizer maps a centrality onto a bucket in 1..Buckets using equal-width
// intervals over [Min, Max].
type Quantizer struct {
	Min, Max float64
}

// NewQuantizer derives the domain from the records' centralities.
func NewQuantizer(records []dataset.CountryRecord) Quantizer {
	if len(records) == 0 {
		return Quantizer{}
	}
	q := Quantizer{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, r := range records {
		q.Min = math.Min(q.Min, r.Centrality)
		q.Max = math.Max(q.Max, r.Centrality)
	}
	return q
}

// Bucket returns the class of v: one plus the number of thresholds at or
// below v. Boundaries belong to the upper bucket and values outside the
// domain are clamped. A degenerate domain (Min == Max) puts every value in
// the top bucket.
func (q Quantizer) Bucket(v float64) int {
	if q.Max <= q.Min {
		return Buckets
	}
	b := 1
	for _, th := range q.Thresholds() {
		if v >= th {
			b++
		}
	}
	return b
}

// Thresholds returns the Buckets-1 interior boundaries in ascending order.
// Bucket compares against exactly these values.
func (q Quantizer) Thresholds() []float64 {
	const n = Buckets - 1
	out := make([]float64, n)
	for i := range out {
		out[i] = (float64(i+1)*q.Max - float64(i-n)*q.Min) / (n + 1)
	}
	return out
}

var bucketLabels = [Buckets + 1]string{"", "Peripheral", "Connected", "Bridging", "Central"}

// BucketLabel names a bucket for tooltips and legends.
func BucketLabel(bucket int) string {
	if bucket < 1 || bucket > Buckets {
		return "Unknown"
	}
	return bucketLabels[bucket]
}

// Package cache stores loaded datasets and generated layouts between runs.
//
// Four backends implement [Cache]: [FileCache] for the CLI, [RedisCache] and
// [MongoCache] for the server, and a null cache when caching is disabled.
// Keys come from a [Keyer] so that every backend sees the same key space.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// A TTL of zero means the entry never expires.
type Cache interface {
	// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLs per entry kind.
const (
	TTLDataset  = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer derives cache keys for the artifacts the pipeline produces.
type Keyer interface {
	// DatasetKey keys a parsed dataset by its two source locations.
	DatasetKey(countries, links string) string
	// LayoutKey keys a generated layout by dataset hash and layout options.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact (e.g. "svg") of a dataset.
	ArtifactKey(datasetHash, format string, detailed bool) string
}

// LayoutKeyOpts lists every option that changes the generated layout.
type LayoutKeyOpts struct {
	Metric       string  `json:"metric"`
	Ascending    bool    `json:"ascending"`
	Limit        int     `json:"limit"`
	ShowAll      bool    `json:"show_all"`
	HeightOffset float64 `json:"height_offset"`
	// Brick is length, height, depth and mass.
	Brick [4]float64 `json:"brick"`
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) DatasetKey(countries, links string) string {
	return hashKey("dataset", countries, links)
}

func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

func (DefaultKeyer) ArtifactKey(datasetHash, format string, detailed bool) string {
	return hashKey("artifact", datasetHash, format, detailed)
}

var _ Keyer = DefaultKeyer{}

// Package pipeline provides the load → layout → export pipeline for
// jengatower.
//
// The CLI and the HTTP server both run towers through this package so that
// caching and defaults behave the same at every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: fetch and validate the country and link tables
//  2. Layout: generate block specs for a sort key
//  3. Export: flatten the specs into a JSON document, or render the link
//     network as SVG
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Countries: "./data/results_semicon.csv",
//	    Links:     "./data/links_semicon.csv",
//	    Key:       layout.DefaultSortKey(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Export(layout.DefaultOptions())
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jengatower/pkg/cache"
	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

// Format constants for exported artifacts.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatDOT:  true,
}

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options
	Countries string                `json:"countries"`
	Links     string                `json:"links"`
	Source    dataset.SourceOptions `json:"-"`
	// Refresh bypasses cached datasets.
	Refresh bool `json:"refresh,omitempty"`

	// Layout options
	Key    layout.SortKey `json:"-"`
	Layout layout.Options `json:"layout"`

	// Network options
	Highlight string `json:"highlight,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Key.Metric == "" {
		o.Key = layout.DefaultSortKey()
	}
	if o.Layout.Brick == (layout.Brick{}) {
		lo := layout.DefaultOptions()
		lo.Limit, lo.ShowAll = o.Layout.Limit, o.Layout.ShowAll
		o.Layout = lo
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ValidateForLoad checks the source locations.
func (o *Options) ValidateForLoad() error {
	if o.Countries == "" || o.Links == "" {
		return errors.New(errors.ErrCodeInvalidInput, "both a countries and a links source are required")
	}
	for _, loc := range []string{o.Countries, o.Links} {
		if err := errors.ValidateSourceURL(loc); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForLayout checks layout options.
func (o *Options) ValidateForLayout() error {
	if o.Layout.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must be >= 0, got %d", o.Layout.Limit)
	}
	b := o.Layout.Brick
	if b.Length <= 0 || b.Height <= 0 || b.Depth <= 0 || b.Mass <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "brick dimensions and mass must be positive, got %+v", b)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults then validates every stage.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	return o.ValidateForLayout()
}

// ValidateFormat checks a single artifact format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want json, svg or dot)", format)
	}
	return nil
}

// LayoutKeyOpts returns the cache key options of the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	b := o.Layout.Brick
	return cache.LayoutKeyOpts{
		Metric:       string(o.Key.Metric),
		Ascending:    o.Key.Ascending,
		Limit:        o.Layout.Limit,
		ShowAll:      o.Layout.ShowAll,
		HeightOffset: o.Layout.HeightOffset,
		Brick:        [4]float64{b.Length, b.Height, b.Depth, b.Mass},
	}
}

// Result holds the outputs of a pipeline run.
type Result struct {
	Dataset     *dataset.Dataset
	DatasetHash string
	Key         layout.SortKey
	Specs       []layout.BlockSpec
	Stats       Stats
	CacheInfo   CacheInfo
}

// Stats records timing and size of each stage.
type Stats struct {
	LoadTime   time.Duration `json:"load_time"`
	LayoutTime time.Duration `json:"layout_time"`
	Countries  int           `json:"countries"`
	Links      int           `json:"links"`
	Layers     int           `json:"layers"`
	Blocks     int           `json:"blocks"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	DatasetHit bool `json:"dataset_hit"`
	LayoutHit  bool `json:"layout_hit"`
}

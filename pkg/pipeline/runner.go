package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jengatower/pkg/cache"
	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/observability"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides the per-stage cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a null cache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load and layout with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Key: opts.Key}

	loadStart := time.Now()
	ds, hash, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Dataset = ds
	result.DatasetHash = hash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Countries = ds.Len()
	result.Stats.Links = len(ds.Links())
	result.CacheInfo.DatasetHit = hit

	r.Logger.Info("loaded dataset",
		"countries", result.Stats.Countries,
		"links", result.Stats.Links,
		"cached", hit,
		"duration", result.Stats.LoadTime)

	layoutStart := time.Now()
	specs, hit, err := r.LayoutWithCacheInfo(ctx, ds, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Specs = specs
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Blocks = len(specs)
	result.Stats.Layers = len(layout.Layers(specs))
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"key", opts.Key,
		"layers", result.Stats.Layers,
		"blocks", result.Stats.Blocks,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// LoadWithCacheInfo loads the dataset, from cache unless opts.Refresh is
// set. It also returns the dataset's content hash, which keys later stages.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*dataset.Dataset, string, bool, error) {
	opts.SetDefaults()
	if err := opts.ValidateForLoad(); err != nil {
		return nil, "", false, err
	}
	key := r.Keyer.DatasetKey(opts.Countries, opts.Links)

	if !opts.Refresh {
		if data, ok := r.get(ctx, key, "dataset"); ok {
			var ds dataset.Dataset
			if err := json.Unmarshal(data, &ds); err == nil {
				return &ds, cache.Hash(data), true, nil
			}
			r.Logger.Debug("discarding unreadable cached dataset", "key", key)
		}
	}

	ds, err := dataset.Load(ctx, dataset.LoadOptions{
		Countries: opts.Countries,
		Links:     opts.Links,
		Source:    opts.Source,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, "", false, err
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "encode dataset")
	}
	r.set(ctx, key, "dataset", data, cache.TTLDataset)
	return ds, cache.Hash(data), false, nil
}

// Load is LoadWithCacheInfo without the hash and cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*dataset.Dataset, error) {
	ds, _, _, err := r.LoadWithCacheInfo(ctx, opts)
	return ds, err
}

// LayoutWithCacheInfo generates the layout of ds for opts.Key. An empty
// hash disables caching for this call.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, ds *dataset.Dataset, hash string, opts Options) ([]layout.BlockSpec, bool, error) {
	opts.SetDefaults()
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	key := ""
	if hash != "" {
		key = r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())
		if data, ok := r.get(ctx, key, "layout"); ok {
			var specs []layout.BlockSpec
			if err := json.Unmarshal(data, &specs); err == nil {
				return specs, true, nil
			}
		}
	}

	start := time.Now()
	specs := layout.Generate(ds.Results(), opts.Key, layout.WithOptions(opts.Layout))
	observability.Load().OnLayoutComplete(ctx, opts.Key.Metric.Short(), len(layout.Layers(specs)), len(specs), time.Since(start))

	if key != "" {
		if data, err := json.Marshal(specs); err == nil {
			r.set(ctx, key, "layout", data, cache.TTLLayout)
		}
	}
	return specs, false, nil
}

// Layout is LayoutWithCacheInfo without cache hit info.
func (r *Runner) Layout(ctx context.Context, ds *dataset.Dataset, hash string, opts Options) ([]layout.BlockSpec, error) {
	specs, _, err := r.LayoutWithCacheInfo(ctx, ds, hash, opts)
	return specs, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads through the cache; backend failures count as misses.
func (r *Runner) get(ctx context.Context, key, kind string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "kind", kind, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return data, true
}

func (r *Runner) set(ctx context.Context, key, kind string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

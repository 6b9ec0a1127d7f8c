package pipeline

import (
	"context"

	"github.com/matzehuels/jengatower/pkg/cache"
	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/render/nodelink"
)

// NetworkWithCacheInfo renders the link network of ds as DOT or SVG.
func (r *Runner) NetworkWithCacheInfo(ctx context.Context, ds *dataset.Dataset, hash, format string, opts Options) ([]byte, bool, error) {
	if format != FormatSVG && format != FormatDOT {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "network format must be svg or dot, got %q", format)
	}
	key := ""
	if hash != "" {
		key = r.Keyer.ArtifactKey(hash, format+":"+opts.Highlight, opts.Detailed)
		if data, ok := r.get(ctx, key, "artifact"); ok {
			return data, true, nil
		}
	}

	dot := nodelink.ToDOT(ds, nodelink.Options{Highlight: opts.Highlight, Detailed: opts.Detailed})
	out := []byte(dot)
	if format == FormatSVG {
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, false, err
		}
		out = svg
	}
	if key != "" {
		r.set(ctx, key, "artifact", out, cache.TTLArtifact)
	}
	return out, false, nil
}

// Network is NetworkWithCacheInfo without cache hit info.
func (r *Runner) Network(ctx context.Context, ds *dataset.Dataset, hash, format string, opts Options) ([]byte, error) {
	out, _, err := r.NetworkWithCacheInfo(ctx, ds, hash, format, opts)
	return out, err
}

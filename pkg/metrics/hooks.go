package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/jengatower/pkg/observability"
)

var (
	_ observability.LoadHooks   = (*Registry)(nil)
	_ observability.EngineHooks = (*Registry)(nil)
	_ observability.CacheHooks  = (*Registry)(nil)
	_ observability.HTTPHooks   = (*Registry)(nil)
)

func (r *Registry) OnLoadStart(context.Context, string) {}

func (r *Registry) OnLoadComplete(_ context.Context, source string, rows, dropped int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.LoadsTotal.WithLabelValues(source, status).Inc()
	r.LoadDuration.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		r.RowsLoaded.WithLabelValues(source).Set(float64(rows))
	}
	r.RowsDropped.WithLabelValues(source).Add(float64(dropped))
}

func (r *Registry) OnLayoutComplete(_ context.Context, metric string, _, blocks int, d time.Duration) {
	r.LayoutsTotal.WithLabelValues(metric).Inc()
	r.LayoutDuration.Observe(d.Seconds())
	r.LayoutBlocks.Set(float64(blocks))
}

func (r *Registry) OnBlocksChanged(live, bodies int) {
	r.BlocksLive.Set(float64(live))
	r.BodiesLive.Set(float64(bodies))
}

func (r *Registry) OnPhaseChange(from, to string) {
	r.Phase.WithLabelValues(from).Set(0)
	r.Phase.WithLabelValues(to).Set(1)
}

func (r *Registry) OnTriggerRefused(phase string) {
	r.TriggersRefused.WithLabelValues(phase).Inc()
}

func (r *Registry) OnReconfigComplete(kept, removed, created int, d time.Duration) {
	r.ReconfigsTotal.Inc()
	r.ReconfigDuration.Observe(d.Seconds())
	r.ReconfigBlocks.WithLabelValues("kept").Add(float64(kept))
	r.ReconfigBlocks.WithLabelValues("removed").Add(float64(removed))
	r.ReconfigBlocks.WithLabelValues("created").Add(float64(created))
}

func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
	r.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (r *Registry) OnRequest(context.Context, string, string, string) {}

func (r *Registry) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (r *Registry) OnError(_ context.Context, method, host, _ string, _ error) {
	r.HTTPErrorsTotal.WithLabelValues(method, host).Inc()
}

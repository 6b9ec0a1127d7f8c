// Package metrics exports jengatower activity to Prometheus.
//
// [Registry] implements every hook interface of pkg/observability. Install
// it once at startup and mount [Registry.Handler] on /metrics:
//
//	reg := metrics.NewRegistry()
//	reg.Install()
//	router.Handle("/metrics", reg.Handler())
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/jengatower/pkg/observability"
)

// Registry holds all metrics for the application
type Registry struct {
	registry *prometheus.Registry

	// Dataset and layout
	LoadsTotal     *prometheus.CounterVec
	LoadDuration   *prometheus.HistogramVec
	RowsLoaded     *prometheus.GaugeVec
	RowsDropped    *prometheus.CounterVec
	LayoutsTotal   *prometheus.CounterVec
	LayoutDuration prometheus.Histogram
	LayoutBlocks   prometheus.Gauge

	// Engine
	BlocksLive       prometheus.Gauge
	BodiesLive       prometheus.Gauge
	Phase            *prometheus.GaugeVec
	TriggersRefused  *prometheus.CounterVec
	ReconfigsTotal   prometheus.Counter
	ReconfigDuration prometheus.Histogram
	ReconfigBlocks   *prometheus.CounterVec

	// Cache
	CacheOpsTotal *prometheus.CounterVec
	CacheSetBytes *prometheus.HistogramVec

	// Outbound HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrorsTotal     *prometheus.CounterVec
}

// NewRegistry creates a registry with Go and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.initLoadMetrics()
	r.initEngineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install registers r as the global load, engine, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetLoadHooks(r)
	observability.SetEngineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

func (r *Registry) initLoadMetrics() {
	f := promauto.With(r.registry)
	r.LoadsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "jengatower_dataset_loads_total",
		Help: "Dataset source loads by source and status",
	}, []string{"source", "status"})
	r.LoadDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jengatower_dataset_load_duration_seconds",
		Help:    "Time to fetch and parse a dataset source",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	r.RowsLoaded = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jengatower_dataset_rows",
		Help: "Rows kept from the last load of each source",
	}, []string{"source"})
	r.RowsDropped = f.NewCounterVec(prometheus.CounterOpts{
		Name: "jengatower_dataset_rows_dropped_total",
		Help: "Rows dropped as defective",
	}, []string{"source"})
	r.LayoutsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "jengatower_layouts_total",
		Help: "Layouts generated by metric",
	}, []string{"metric"})
	r.LayoutDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "jengatower_layout_duration_seconds",
		Help:    "Layout generation latency",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	})
	r.LayoutBlocks = f.NewGauge(prometheus.GaugeOpts{
		Name: "jengatower_layout_blocks",
		Help: "Blocks in the most recent layout",
	})
}

func (r *Registry) initEngineMetrics() {
	f := promauto.With(r.registry)
	r.BlocksLive = f.NewGauge(prometheus.GaugeOpts{
		Name: "jengatower_blocks_live",
		Help: "Live blocks owned by the block manager",
	})
	r.BodiesLive = f.NewGauge(prometheus.GaugeOpts{
		Name: "jengatower_bodies_live",
		Help: "Physics bodies attached to live blocks",
	})
	r.Phase = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jengatower_reconfig_phase",
		Help: "1 for the current reconfiguration phase, 0 otherwise",
	}, []string{"phase"})
	r.TriggersRefused = f.NewCounterVec(prometheus.CounterOpts{
		Name: "jengatower_reconfig_refused_total",
		Help: "Reconfiguration triggers refused because one was in flight",
	}, []string{"phase"})
	r.ReconfigsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "jengatower_reconfigs_total",
		Help: "Completed reconfigurations",
	})
	r.ReconfigDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "jengatower_reconfig_duration_seconds",
		Help:    "Animated time of completed reconfigurations",
		Buckets: []float64{0.5, 1, 2, 3, 5, 10},
	})
	r.ReconfigBlocks = f.NewCounterVec(prometheus.CounterOpts{
		Name: "jengatower_reconfig_blocks_total",
		Help: "Blocks kept, removed and created by reconfigurations",
	}, []string{"outcome"})
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)
	r.CacheOpsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "jengatower_cache_operations_total",
		Help: "Cache lookups and stores by key type and result",
	}, []string{"key_type", "result"})
	r.CacheSetBytes = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jengatower_cache_set_bytes",
		Help:    "Size of cached payloads",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"key_type"})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)
	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "jengatower_http_client_requests_total",
		Help: "Outbound HTTP requests",
	}, []string{"method", "host", "status"})
	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jengatower_http_client_request_duration_seconds",
		Help:    "Outbound HTTP latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "host"})
	r.HTTPErrorsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "jengatower_http_client_errors_total",
		Help: "Outbound HTTP requests that failed before a response",
	}, []string{"method", "host"})
}

// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through the registered hooks; the binary decides at
// startup which backend receives them (see pkg/metrics for the Prometheus
// implementation). Until something is registered every hook is a no-op.
//
// # Usage
//
//	func main() {
//	    reg := metrics.NewRegistry()
//	    reg.Install() // registers load, engine, cache and HTTP hooks
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Load().OnLoadStart(ctx, "countries")
//	observability.Load().OnLoadComplete(ctx, "countries", rows, dropped, d, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Load Hooks
// =============================================================================

// LoadHooks receives events from dataset loading and layout generation.
type LoadHooks interface {
	OnLoadStart(ctx context.Context, source string)
	// OnLoadComplete reports the rows kept and the rows dropped as defective.
	OnLoadComplete(ctx context.Context, source string, rows, dropped int, duration time.Duration, err error)

	OnLayoutComplete(ctx context.Context, metric string, layers, blocks int, duration time.Duration)
}

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the block manager and the reconfiguration
// state machine.
type EngineHooks interface {
	OnBlocksChanged(live, bodies int)
	OnPhaseChange(from, to string)
	OnTriggerRefused(phase string)
	OnReconfigComplete(kept, removed, created int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing HTTP fetches.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

type NoopLoadHooks struct{}

func (NoopLoadHooks) OnLoadStart(context.Context, string) {}
func (NoopLoadHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopLoadHooks) OnLayoutComplete(context.Context, string, int, int, time.Duration) {}

type NoopEngineHooks struct{}

func (NoopEngineHooks) OnBlocksChanged(int, int)                         {}
func (NoopEngineHooks) OnPhaseChange(string, string)                     {}
func (NoopEngineHooks) OnTriggerRefused(string)                          {}
func (NoopEngineHooks) OnReconfigComplete(int, int, int, time.Duration) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	loadHooks   LoadHooks   = NoopLoadHooks{}
	engineHooks EngineHooks = NoopEngineHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetLoadHooks registers custom load hooks. Nil is ignored.
func SetLoadHooks(h LoadHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		loadHooks = h
	}
}

// SetEngineHooks registers custom engine hooks. Nil is ignored.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

func Load() LoadHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return loadHooks
}

func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	loadHooks = NoopLoadHooks{}
	engineHooks = NoopEngineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}

package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLoadHooks{}
	l.OnLoadStart(ctx, "countries")
	l.OnLoadComplete(ctx, "countries", 42, 1, time.Second, nil)
	l.OnLayoutComplete(ctx, "companies", 42, 90, time.Millisecond)

	e := NoopEngineHooks{}
	e.OnBlocksChanged(10, 10)
	e.OnPhaseChange("idle", "matching")
	e.OnTriggerRefused("animating")
	e.OnReconfigComplete(8, 2, 1, 2*time.Second)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "dataset")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "example.com", "/results.csv")
	h.OnResponse(ctx, "GET", "example.com", "/results.csv", 200, time.Second)
	h.OnError(ctx, "GET", "example.com", "/results.csv", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Load().(NoopLoadHooks); !ok {
		t.Error("Load() should return NoopLoadHooks by default")
	}
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Engine() should return NoopEngineHooks by default")
	}

	customLoad := &testLoadHooks{}
	SetLoadHooks(customLoad)
	if Load() != customLoad {
		t.Error("SetLoadHooks should set custom hooks")
	}

	customEngine := &testEngineHooks{}
	SetEngineHooks(customEngine)
	if Engine() != customEngine {
		t.Error("SetEngineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	SetEngineHooks(nil)
	if Engine() != customEngine {
		t.Error("SetEngineHooks(nil) should keep the registered hooks")
	}

	Reset()
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Reset() should restore NoopEngineHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestEngineHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &testEngineHooks{}
	SetEngineHooks(h)

	Engine().OnPhaseChange("idle", "matching")
	Engine().OnPhaseChange("matching", "animating")
	Engine().OnTriggerRefused("animating")

	if h.phaseChanges != 2 {
		t.Errorf("phaseChanges = %d, want 2", h.phaseChanges)
	}
	if h.refused != 1 {
		t.Errorf("refused = %d, want 1", h.refused)
	}
}

type testLoadHooks struct{ NoopLoadHooks }

type testEngineHooks struct {
	NoopEngineHooks
	phaseChanges int
	refused      int
}

func (h *testEngineHooks) OnPhaseChange(string, string) { h.phaseChanges++ }
func (h *testEngineHooks) OnTriggerRefused(string)      { h.refused++ }

type testCacheHooks struct{ NoopCacheHooks }

type testHTTPHooks struct{ NoopHTTPHooks }

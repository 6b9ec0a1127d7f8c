package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/jengatower/pkg/observability"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("Prometheus registry not initialized")
	}
	if r.BlocksLive == nil || r.LoadsTotal == nil || r.CacheOpsTotal == nil || r.HTTPRequestsTotal == nil {
		t.Error("metrics not initialized")
	}
}

func TestEngineHooks(t *testing.T) {
	r := NewRegistry()
	r.OnBlocksChanged(12, 11)
	r.OnPhaseChange("idle", "animating")
	r.OnTriggerRefused("animating")
	r.OnReconfigComplete(5, 2, 3, 2*time.Second)

	if got := testutil.ToFloat64(r.BlocksLive); got != 12 {
		t.Errorf("BlocksLive = %v, want 12", got)
	}
	if got := testutil.ToFloat64(r.BodiesLive); got != 11 {
		t.Errorf("BodiesLive = %v, want 11", got)
	}
	if got := testutil.ToFloat64(r.Phase.WithLabelValues("animating")); got != 1 {
		t.Errorf("phase{animating} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Phase.WithLabelValues("idle")); got != 0 {
		t.Errorf("phase{idle} = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.TriggersRefused.WithLabelValues("animating")); got != 1 {
		t.Errorf("refused = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ReconfigBlocks.WithLabelValues("created")); got != 3 {
		t.Errorf("created = %v, want 3", got)
	}
}

func TestLoadHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	r.OnLoadComplete(ctx, "countries", 40, 2, time.Millisecond, nil)
	r.OnLoadComplete(ctx, "countries", 0, 0, time.Millisecond, errors.New("boom"))
	r.OnLayoutComplete(ctx, "companies", 40, 90, time.Microsecond)

	if got := testutil.ToFloat64(r.LoadsTotal.WithLabelValues("countries", "error")); got != 1 {
		t.Errorf("loads{error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.RowsLoaded.WithLabelValues("countries")); got != 40 {
		t.Errorf("rows = %v, want 40", got)
	}
	if got := testutil.ToFloat64(r.LayoutBlocks); got != 90 {
		t.Errorf("layout blocks = %v, want 90", got)
	}
}

func TestInstallAndHandler(t *testing.T) {
	r := NewRegistry()
	r.Install()
	t.Cleanup(observability.Reset)

	observability.Cache().OnCacheHit(context.Background(), "layout")
	observability.HTTP().OnResponse(context.Background(), "GET", "example.com", "/x.csv", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`jengatower_cache_operations_total{key_type="layout",result="hit"} 1`,
		`jengatower_http_client_requests_total{host="example.com",method="GET",status="200"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

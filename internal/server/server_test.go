package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/metrics"
	pmem "github.com/matzehuels/jengatower/pkg/physics/memory"
	rmem "github.com/matzehuels/jengatower/pkg/render/memory"
	"github.com/matzehuels/jengatower/pkg/tower"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
	"github.com/matzehuels/jengatower/pkg/tower/reconfig"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]dataset.CountryRecord{
		{Code: "DE", Name: "Germany", Region: dataset.RegionEurope, Companies: 50, Centrality: 0.9, PageRank: 0.3},
		{Code: "US", Name: "United States", Region: dataset.RegionAmericas, Companies: 40, Centrality: 1.0, PageRank: 0.5},
		{Code: "JP", Name: "Japan", Region: dataset.RegionAsia, Companies: 30, Centrality: 0.4, PageRank: 0.2},
		{Code: "KE", Name: "Kenya", Region: dataset.RegionAfrica, Companies: 20, Centrality: 0.1, PageRank: 0.1},
		{Code: "AU", Name: "Australia", Region: dataset.RegionOceania, Companies: 10, Centrality: 0.6, PageRank: 0.4},
	}, []dataset.LinkRecord{
		{Source: "DE", Target: "US", Value: 3},
		{Source: "JP", Target: "US", Value: 1},
	})
	require.NoError(t, err)
	return ds
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	eng := tower.New(rmem.New(), pmem.New(), testDataset(t), tower.WithReconfigDuration(time.Hour))
	require.NoError(t, eng.Build(layout.DefaultSortKey()))

	if opts.TickRate == 0 {
		opts.TickRate = 100
	}
	s := New(eng, opts)
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, v any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestSnapshot(t *testing.T) {
	ts := newTestServer(t, Options{})

	var snap tower.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/snapshot", &snap))

	assert.Equal(t, "companies:desc", snap.Key)
	assert.Equal(t, reconfig.Idle, snap.Phase)
	assert.True(t, snap.Physics)
	assert.Len(t, snap.Blocks, 5)
}

func TestViewRefusedWhileBusy(t *testing.T) {
	ts := newTestServer(t, Options{})

	var started viewResponse
	require.Equal(t, http.StatusAccepted, postJSON(t, ts.URL+"/api/view", `{"sort":"companies:asc"}`, &started))
	assert.Equal(t, "companies:asc", started.Key)
	assert.Equal(t, reconfig.Animating, started.Phase)

	var refused errorBody
	require.Equal(t, http.StatusConflict, postJSON(t, ts.URL+"/api/view", `{"sort":"pagerank"}`, &refused))
	assert.Equal(t, errors.ErrCodeReconfigBusy, refused.Code)

	var snap tower.Snapshot
	getJSON(t, ts.URL+"/api/snapshot", &snap)
	assert.Equal(t, "companies:asc", snap.Key, "refused trigger must not change the target")
}

func TestViewBadRequest(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"malformed json", `{`, errors.ErrCodeInvalidInput},
		{"unknown metric", `{"sort":"gdp"}`, errors.ErrCodeInvalidSortKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			assert.Equal(t, http.StatusBadRequest, postJSON(t, ts.URL+"/api/view", tt.body, &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestPhysicsToggle(t *testing.T) {
	ts := newTestServer(t, Options{})

	var state physicsState
	require.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/api/physics", `{}`, &state))
	require.NotNil(t, state.Enabled)
	assert.False(t, *state.Enabled)

	getJSON(t, ts.URL+"/api/physics", &state)
	assert.False(t, *state.Enabled)

	postJSON(t, ts.URL+"/api/physics", `{"enabled":true}`, &state)
	assert.True(t, *state.Enabled)

	assert.Equal(t, http.StatusBadRequest, postJSON(t, ts.URL+"/api/slowmo", `{}`, nil))
	assert.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/api/slowmo", `{"enabled":true}`, nil))
}

func TestLayoutPreview(t *testing.T) {
	ts := newTestServer(t, Options{})

	var doc struct {
		Key    string `json:"key"`
		Blocks []struct {
			Country string `json:"country"`
		} `json:"blocks"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/layout?sort=pagerank:asc", &doc))
	assert.Equal(t, "pagerank:asc", doc.Key)
	require.Len(t, doc.Blocks, 5)
	assert.Equal(t, "KE", doc.Blocks[0].Country)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/layout", &doc))
	assert.Equal(t, "companies:desc", doc.Key)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/layout?sort=nope", nil))
}

func TestNetwork(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/api/network/dot?highlight=DE")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "graph G {"), "body = %s", body)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/network/png", nil))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{Metrics: metrics.NewRegistry()})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestSocketStreamsSnapshots(t *testing.T) {
	ts := newTestServer(t, Options{})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var snap tower.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Len(t, snap.Blocks, 5)

	require.NoError(t, conn.WriteJSON(socketMessage{Action: "view", Sort: "centrality"}))
	require.Eventually(t, func() bool {
		var s tower.Snapshot
		getJSON(t, ts.URL+"/api/snapshot", &s)
		return s.Key == "centrality:desc" && s.Phase == reconfig.Animating
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidSortKey, http.StatusBadRequest},
		{errors.ErrCodeReconfigBusy, http.StatusConflict},
		{errors.ErrCodeBlockNotFound, http.StatusNotFound},
		{errors.ErrCodeTimeout, http.StatusServiceUnavailable},
		{errors.ErrCodeLoadFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.code), "statusFor(%s)", tt.code)
	}
}

func TestListenAndServeWaitsForEngineLoop(t *testing.T) {
	eng := tower.New(rmem.New(), pmem.New(), testDataset(t))
	require.NoError(t, eng.Build(layout.DefaultSortKey()))
	s := New(eng, Options{TickRate: 100})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- s.ListenAndServe(ctx, "127.0.0.1:0", time.Second, time.Second) }()

	started := make(chan struct{})
	var finished atomic.Bool
	go s.do(context.Background(), func(*tower.Engine) {
		close(started)
		time.Sleep(300 * time.Millisecond)
		finished.Store(true)
	})

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("engine command never ran")
	}
	cancel()

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return")
	}
	assert.True(t, finished.Load(), "ListenAndServe returned while an engine command was still running")

	err := s.do(context.Background(), func(*tower.Engine) {
		t.Error("engine used after ListenAndServe returned")
	})
	assert.True(t, errors.Is(err, errors.ErrCodeTimeout), "do() after shutdown = %v", err)
	eng.Close()
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	header http.Header
	status int
}

func (w *brokenWriter) Header() http.Header       { return w.header }
func (w *brokenWriter) WriteHeader(status int)    { w.status = status }
func (w *brokenWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestNetworkWriteFailureIsLogged(t *testing.T) {
	eng := tower.New(rmem.New(), pmem.New(), testDataset(t))
	var logs bytes.Buffer
	s := New(eng, Options{Logger: log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})})

	w := &brokenWriter{header: http.Header{}}
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/network/dot", nil))
	assert.Contains(t, logs.String(), "network write failed")
}

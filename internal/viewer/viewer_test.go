package viewer

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/jengatower/pkg/dataset"
	pmem "github.com/matzehuels/jengatower/pkg/physics/memory"
	rmem "github.com/matzehuels/jengatower/pkg/render/memory"
	"github.com/matzehuels/jengatower/pkg/tower"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
	"github.com/matzehuels/jengatower/pkg/tower/reconfig"
)

func newEngine(t *testing.T) *tower.Engine {
	t.Helper()
	ds, err := dataset.New([]dataset.CountryRecord{
		{Code: "DE", Name: "Germany", Region: dataset.RegionEurope, Companies: 50, Centrality: 0.9, PageRank: 0.3},
		{Code: "US", Name: "United States", Region: dataset.RegionAmericas, Companies: 40, Centrality: 1.0, PageRank: 0.5},
		{Code: "JP", Name: "Japan", Region: dataset.RegionAsia, Companies: 30, Centrality: 0.4, PageRank: 0.2},
	}, []dataset.LinkRecord{{Source: "DE", Target: "US", Value: 3}})
	if err != nil {
		t.Fatal(err)
	}
	e := tower.New(rmem.New(), pmem.New(), ds, tower.WithReconfigDuration(time.Second))
	if err := e.Build(layout.DefaultSortKey()); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestOrbitFromPreset(t *testing.T) {
	for _, p := range Presets {
		t.Run(p.Name, func(t *testing.T) {
			o := OrbitFrom(p)
			if got := o.Position(); !got.ApproxEqualThreshold(p.Position, 1e-9) {
				t.Errorf("Position() = %v, want %v", got, p.Position)
			}
		})
	}
}

func TestOrbitClamps(t *testing.T) {
	o := Orbit{Distance: 50}
	o.Rotate(0, 10)
	if o.Pitch >= math.Pi/2 {
		t.Errorf("Pitch = %v, want below straight up", o.Pitch)
	}
	o.Zoom(0.001)
	if o.Distance != minDistance {
		t.Errorf("Distance = %v, want %v", o.Distance, float64(minDistance))
	}
	o.Zoom(1e6)
	if o.Distance != maxDistance {
		t.Errorf("Distance = %v, want %v", o.Distance, float64(maxDistance))
	}
}

func TestAxisAngle(t *testing.T) {
	tests := []struct {
		name      string
		q         mgl64.Quat
		wantAxis  mgl64.Vec3
		wantAngle float64
	}{
		{"identity", mgl64.QuatIdent(), mgl64.Vec3{0, 1, 0}, 0},
		{"quarter turn", mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}), mgl64.Vec3{0, 1, 0}, 90},
		{"negated quaternion", mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}).Scale(-1), mgl64.Vec3{1, 0, 0}, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axis, angle := AxisAngle(tt.q)
			if !axis.ApproxEqualThreshold(tt.wantAxis, 1e-9) || math.Abs(angle-tt.wantAngle) > 1e-9 {
				t.Errorf("AxisAngle() = %v, %v, want %v, %v", axis, angle, tt.wantAxis, tt.wantAngle)
			}
		})
	}
}

func TestPickTopBlock(t *testing.T) {
	e := newEngine(t)
	m := e.Blocks()

	id, ok := Pick(m, mgl64.Vec3{0, 100, 0}, mgl64.Vec3{0, -1, 0})
	if !ok {
		t.Fatal("Pick() found nothing straight above the tower")
	}
	meta, _ := m.Meta(id)
	if meta.Layer != 2 {
		t.Errorf("picked layer %d, want the top layer 2", meta.Layer)
	}

	if _, ok := Pick(m, mgl64.Vec3{50, 100, 50}, mgl64.Vec3{0, -1, 0}); ok {
		t.Error("Pick() hit a block beside the tower")
	}
}

func TestIntersectAABB(t *testing.T) {
	lo, hi := mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1}
	tests := []struct {
		name   string
		origin mgl64.Vec3
		dir    mgl64.Vec3
		want   float64
		hit    bool
	}{
		{"head on", mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0}, 4, true},
		{"inside", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0}, 0, true},
		{"pointing away", mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{-1, 0, 0}, 0, false},
		{"parallel outside", mgl64.Vec3{-5, 3, 0}, mgl64.Vec3{1, 0, 0}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := intersectAABB(tt.origin, tt.dir, lo, hi)
			if hit != tt.hit || (hit && math.Abs(got-tt.want) > 1e-9) {
				t.Errorf("intersectAABB() = %v, %v, want %v, %v", got, hit, tt.want, tt.hit)
			}
		})
	}
}

func TestNextView(t *testing.T) {
	k := layout.SortKey{Metric: dataset.MetricCompanies, Ascending: true}
	seen := map[dataset.Metric]bool{}
	for range dataset.Metrics {
		k = NextView(k)
		seen[k.Metric] = true
		if !k.Ascending {
			t.Fatal("NextView() changed the direction")
		}
	}
	if len(seen) != len(dataset.Metrics) || k.Metric != dataset.MetricCompanies {
		t.Errorf("NextView() did not cycle through every metric: %v", seen)
	}
}

func TestControllerApply(t *testing.T) {
	e := newEngine(t)
	c := NewController(e, nil)

	c.Apply(ActionTogglePhysics)
	if e.Physics() || c.Status() != "physics off" {
		t.Errorf("after toggle Physics() = %v, Status() = %q", e.Physics(), c.Status())
	}

	c.Apply(ActionFlipOrder)
	if e.Phase() != reconfig.Animating || !e.Key().Ascending {
		t.Fatalf("flip: Phase() = %v, Key() = %v", e.Phase(), e.Key())
	}

	c.Apply(ActionNextView)
	if !strings.HasPrefix(c.Status(), "busy") {
		t.Errorf("Status() = %q, want a busy refusal", c.Status())
	}
	if e.Key().Metric != dataset.MetricCompanies {
		t.Errorf("refused trigger changed the key to %v", e.Key())
	}

	c.Apply(ActionRebuild)
	if !strings.HasPrefix(c.Status(), "rebuild refused") {
		t.Errorf("Status() = %q, want rebuild refused while animating", c.Status())
	}

	for e.Phase() != reconfig.Idle {
		e.Tick(100 * time.Millisecond)
	}
	c.Apply(ActionRebuild)
	if e.Blocks().Len() != 6 {
		t.Errorf("rebuilt tower has %d blocks, want 6", e.Blocks().Len())
	}
}

func TestHUD(t *testing.T) {
	e := newEngine(t)
	lines := HUD(e.Key(), e.Snapshot(), "")
	if len(lines) != 2 || lines[0] != "View: Number of Companies (descending)" {
		t.Errorf("HUD() = %q", lines)
	}

	meta, _ := e.Blocks().Meta(e.Blocks().IDs()[0])
	tip := Tooltip(meta)
	if !strings.Contains(tip[0], "(US)") && !strings.Contains(tip[0], "(DE)") {
		t.Errorf("Tooltip() = %q", tip)
	}
}

package memory

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/geom"
	"github.com/matzehuels/jengatower/pkg/physics"
)

var brick = mgl64.Vec3{4.8, 1.2, 1.6}

func addBrick(t *testing.T, w *World, pos mgl64.Vec3) physics.BodyID {
	t.Helper()
	id, err := w.AddBody(physics.BoxParams(brick, 100, geom.At(pos)))
	if err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	return id
}

func run(w *World, seconds float64) {
	for range int(seconds * 60) {
		w.Step(1.0/60, physics.DefaultMaxSubSteps)
	}
}

func TestFallsToGround(t *testing.T) {
	w := New()
	id := addBrick(t, w, mgl64.Vec3{0, 5, 0})

	run(w, 5)

	tr, ok := w.MotionState(id)
	if !ok {
		t.Fatal("MotionState ok = false")
	}
	if math.Abs(tr.Position.Y()-0.6) > 1e-6 {
		t.Errorf("resting y = %v, want 0.6", tr.Position.Y())
	}
	if !w.Sleeping(id) {
		t.Error("body should be asleep after settling")
	}
}

func TestStacksOnSupport(t *testing.T) {
	w := New()
	base := addBrick(t, w, mgl64.Vec3{0, 0.6, 0})
	rot := geom.Transform{
		Position: mgl64.Vec3{0, 3, 0},
		Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}),
	}
	top, _ := w.AddBody(physics.BoxParams(brick, 100, rot))

	run(w, 3)

	tr, _ := w.MotionState(top)
	if math.Abs(tr.Position.Y()-1.8) > 1e-6 {
		t.Errorf("top y = %v, want 1.8", tr.Position.Y())
	}

	w.RemoveBody(base)
	w.Activate(top)
	run(w, 3)
	tr, _ = w.MotionState(top)
	if math.Abs(tr.Position.Y()-0.6) > 1e-6 {
		t.Errorf("top y after support removed = %v, want 0.6", tr.Position.Y())
	}
}

func TestSleepingBodyWakesWhenSupportRemoved(t *testing.T) {
	w := New()
	base := addBrick(t, w, mgl64.Vec3{0, 0.6, 0})
	top := addBrick(t, w, mgl64.Vec3{0, 1.8, 0})
	run(w, 2)
	if !w.Sleeping(top) {
		t.Fatal("top should be asleep")
	}

	w.RemoveBody(base)
	run(w, 3)
	tr, _ := w.MotionState(top)
	if math.Abs(tr.Position.Y()-0.6) > 1e-6 {
		t.Errorf("top y = %v, want 0.6", tr.Position.Y())
	}
}

func TestStaticBodiesDoNotMove(t *testing.T) {
	w := New()
	id, _ := w.AddBody(physics.BoxParams(brick, 0, geom.At(mgl64.Vec3{0, 10, 0})))
	run(w, 1)
	tr, _ := w.MotionState(id)
	if tr.Position.Y() != 10 {
		t.Errorf("static body moved to %v", tr.Position)
	}
}

func TestStepContract(t *testing.T) {
	tests := []struct {
		name        string
		dt          float64
		maxSubSteps int
		wantSteps   int
	}{
		{"one frame", 1.0 / 60, 100, 1},
		{"half frame accumulates", 1.0 / 120, 100, 0},
		{"clamped by max sub steps", 1.0, 10, 10},
		{"zero max treated as one", 1.0, 0, 1},
		{"non positive dt ignored", -1, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			w.Step(tt.dt, tt.maxSubSteps)
			if w.Steps() != tt.wantSteps {
				t.Errorf("Steps() = %d, want %d", w.Steps(), tt.wantSteps)
			}
		})
	}
}

func TestAddBodyValidation(t *testing.T) {
	w := New()
	_, err := w.AddBody(physics.BoxParams(mgl64.Vec3{0, 1, 1}, 1, geom.Identity()))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero extent err = %v", err)
	}
	_, err = w.AddBody(physics.BoxParams(brick, -1, geom.Identity()))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative mass err = %v", err)
	}
	if w.BodyCount() != 0 {
		t.Errorf("BodyCount() = %d after rejected adds", w.BodyCount())
	}
}

func TestBodyBookkeeping(t *testing.T) {
	w := New()
	a := addBrick(t, w, mgl64.Vec3{0, 0.6, 0})
	b := addBrick(t, w, mgl64.Vec3{10, 0.6, 0})
	if a == 0 || a == b {
		t.Fatalf("ids a=%d b=%d must be distinct and non-zero", a, b)
	}
	if w.BodyCount() != 2 {
		t.Errorf("BodyCount() = %d, want 2", w.BodyCount())
	}

	w.RemoveBody(a)
	w.RemoveBody(a)
	w.RemoveBody(999)
	if w.BodyCount() != 1 {
		t.Errorf("BodyCount() = %d, want 1", w.BodyCount())
	}
	if _, ok := w.MotionState(a); ok {
		t.Error("MotionState of removed body should report !ok")
	}

	w.SetVelocity(b, mgl64.Vec3{1, 0, 0})
	w.ZeroVelocity(b)
	if v, _ := w.Velocity(b); v.Len() != 0 {
		t.Errorf("Velocity after ZeroVelocity = %v", v)
	}

	p, _ := w.Params(b)
	if p.Friction != physics.DefaultFriction || p.Restitution != physics.DefaultRestitution {
		t.Errorf("Params = %+v, want standard tuning", p)
	}
	if !p.HalfExtents.ApproxEqual(mgl64.Vec3{2.4, 0.6, 0.8}) {
		t.Errorf("HalfExtents = %v", p.HalfExtents)
	}
}

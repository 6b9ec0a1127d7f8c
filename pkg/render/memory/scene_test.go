package memory

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/jengatower/pkg/geom"
)

func TestSceneLifecycle(t *testing.T) {
	s := New()
	red := colorful.Color{R: 1}
	h, err := s.AddBox(mgl64.Vec3{1, 1, 1}, red, geom.Identity())
	if err != nil {
		t.Fatalf("AddBox: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	moved := geom.At(mgl64.Vec3{1, 2, 3})
	s.SetTransform(h, moved)
	if tr, _ := s.Transform(h); tr != moved {
		t.Errorf("Transform() = %+v, want %+v", tr, moved)
	}
	blue := colorful.Color{B: 1}
	s.SetColor(h, blue)
	if b, _ := s.Box(h); b.Color != blue {
		t.Errorf("Color = %v, want %v", b.Color, blue)
	}

	s.Remove(h)
	s.Remove(h)
	if s.Len() != 0 || s.Disposed() != 1 {
		t.Errorf("after Remove: Len()=%d Disposed()=%d, want 0 and 1", s.Len(), s.Disposed())
	}
	if _, ok := s.Transform(h); ok {
		t.Error("Transform of removed box should report !ok")
	}
}

func TestSceneRejectsEmptyBox(t *testing.T) {
	if _, err := New().AddBox(mgl64.Vec3{1, 0, 1}, colorful.Color{}, geom.Identity()); err == nil {
		t.Error("AddBox with zero height should fail")
	}
}

package math

import (
	"testing"
)

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if abs(got-want) > 0.0001 {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize of zero vector = %v, want zero", got)
	}
}

func TestVec3Components(t *testing.T) {
	v := Vec3{1, 2, 3}
	for axis, want := range []float32{1, 2, 3} {
		if got := v.Component(axis); got != want {
			t.Errorf("Component(%d) = %v, want %v", axis, got, want)
		}
	}
	if got := v.WithComponent(1, -5); got != (Vec3{1, -5, 3}) {
		t.Errorf("WithComponent = %v", got)
	}
}

func TestInverseLerp(t *testing.T) {
	tests := []struct {
		a, b, v, want float32
	}{
		{0, 1, 0.25, 0.25},
		{1, 0, 0.25, 0.75},
		{0, 1, 2, 1},
		{0, 1, -1, 0},
		{2, 2, 5, 0},
	}
	for _, tt := range tests {
		if got := InverseLerp(tt.a, tt.b, tt.v); abs(got-tt.want) > 0.0001 {
			t.Errorf("InverseLerp(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.v, got, tt.want)
		}
	}
}

func TestSmoothStep(t *testing.T) {
	if SmoothStep(0) != 0 || SmoothStep(1) != 1 {
		t.Error("SmoothStep endpoints should be 0 and 1")
	}
	if got := SmoothStep(0.5); abs(got-0.5) > 0.0001 {
		t.Errorf("SmoothStep(0.5) = %v, want 0.5", got)
	}
}

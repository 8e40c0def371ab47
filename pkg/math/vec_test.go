package math

import (
	"testing"
)

func TestVec2Perp(t *testing.T) {
	got := Vec2{1, 0}.Perp()
	want := Vec2{0, 1}
	if got != want {
		t.Errorf("Vec2.Perp() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	if got := v.Length(); got != 5 {
		t.Errorf("Vec2.Length() = %v, want 5", got)
	}
	if got := (Vec2{}).Normalize(); got != (Vec2{}) {
		t.Errorf("zero Vec2 should normalize to zero, got %v", got)
	}
}

func TestVec3Cross(t *testing.T) {
	got := UnitX.Cross(UnitY)
	if got != UnitZ {
		t.Errorf("Vec3.Cross() = %v, want %v", got, UnitZ)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 12}.Normalize()
	l := n.Length()
	if l < 0.9999 || l > 1.0001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Vec3 should normalize to zero, got %v", got)
	}
}

func TestVec3DominantAxis(t *testing.T) {
	tests := []struct {
		in   Vec3
		want Vec3
	}{
		{Vec3{0.2, -3, 1}, Vec3{0, -1, 0}},
		{Vec3{5, 1, 1}, Vec3{1, 0, 0}},
		{Vec3{0, 0, -0.1}, Vec3{0, 0, -1}},
		{Vec3{}, UnitY},
	}
	for _, tt := range tests {
		if got := tt.in.DominantAxis(); got != tt.want {
			t.Errorf("DominantAxis(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVec3Lerp(t *testing.T) {
	got := Vec3{0, 0, 0}.Lerp(Vec3{10, 20, 30}, 0.5)
	if !got.ApproxEqual(Vec3{5, 10, 15}, 1e-6) {
		t.Errorf("Vec3.Lerp() = %v, want (5, 10, 15)", got)
	}
}

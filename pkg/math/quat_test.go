package math

import (
	"math"
	"testing"
)

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}

	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %+v", got)
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(UnitY, float32(math.Pi/2))

	if r := q1.Slerp(q2, 0); math.Abs(float64(r.W-q1.W)) > 0.001 {
		t.Errorf("Slerp at t=0 should equal q1, got %+v", r)
	}
	if r := q1.Slerp(q2, 1); math.Abs(float64(r.W-q2.W)) > 0.001 {
		t.Errorf("Slerp at t=1 should equal q2, got %+v", r)
	}

	// Halfway through a 90 degree turn is 45 degrees.
	r := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if math.Abs(float64(r.W-expectedW)) > 0.01 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, r.W)
	}
}

func TestQuatFromEulerMatchesMatrixProduct(t *testing.T) {
	angles := []Vec3{
		{0, 0, 0},
		{0.3, 0, 0},
		{0, -1.1, 0},
		{0, 0, 2.0},
		{0.4, 0.7, -0.2},
		{-1.2, 0.5, 3.0},
	}

	for _, e := range angles {
		want := RotateZ(e.Z).Mul(RotateY(e.Y)).Mul(RotateX(e.X))
		got := QuatFromEuler(e).ToMat4()
		if !got.ApproxEqual(want, 1e-5) {
			t.Errorf("QuatFromEuler(%v).ToMat4() = %v, want %v", e, got, want)
		}
	}
}

func TestQuatEulerRoundTrip(t *testing.T) {
	angles := []Vec3{
		{0.1, 0.2, 0.3},
		{-0.8, 0.4, 1.5},
		{1.0, -1.2, -2.5},
	}

	for _, e := range angles {
		back := QuatFromEuler(e).Euler()
		// Compare the rotations, not the angles, to stay independent of
		// equivalent Euler representations.
		want := QuatFromEuler(e).ToMat4()
		got := QuatFromEuler(back).ToMat4()
		if !got.ApproxEqual(want, 1e-4) {
			t.Errorf("Euler round trip of %v gave %v", e, back)
		}
	}
}

func TestQuatEulerGimbalLock(t *testing.T) {
	e := Vec3{0, float32(math.Pi / 2), 0.5}
	back := QuatFromEuler(e).Euler()
	want := QuatFromEuler(e).ToMat4()
	got := QuatFromEuler(back).ToMat4()
	if !got.ApproxEqual(want, 1e-3) {
		t.Errorf("gimbal lock round trip: got %v from %v", back, e)
	}
}

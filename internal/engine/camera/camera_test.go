package camera

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

func TestPositionOnSphere(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{X: 1, Y: 2, Z: 3}
	c.RotationX, c.RotationY = 0.3, 1.1
	if d := c.Position().Distance(c.Center); math32.Abs(d-c.Distance) > 1e-4 {
		t.Errorf("distance from center = %v, want %v", d, c.Distance)
	}

	c.RotationX, c.RotationY = 0, 0
	want := c.Center.Add(math.Vec3{Z: c.Distance})
	if got := c.Position(); !got.ApproxEqual(want, 1e-5) {
		t.Errorf("Position() = %v, want %v", got, want)
	}
}

func TestViewMatrixLooksAtCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{Y: 1}
	got := c.ViewMatrix().TransformPoint(c.Center)
	want := math.Vec3{Z: -c.Distance}
	if !got.ApproxEqual(want, 1e-4) {
		t.Errorf("center in view space = %v, want %v", got, want)
	}
}

func TestDragAndZoomClamp(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 1e6)
	if c.RotationX != c.MaxPitch {
		t.Errorf("pitch = %v, want clamp to %v", c.RotationX, c.MaxPitch)
	}
	c.HandleDrag(0, -1e6)
	if c.RotationX != c.MinPitch {
		t.Errorf("pitch = %v, want clamp to %v", c.RotationX, c.MinPitch)
	}

	for i := 0; i < 200; i++ {
		c.HandleZoom(1)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("distance = %v, want %v", c.Distance, c.MinDistance)
	}
	for i := 0; i < 200; i++ {
		c.HandleZoom(-1)
	}
	if c.Distance != c.MaxDistance {
		t.Errorf("distance = %v, want %v", c.Distance, c.MaxDistance)
	}
}

func TestAutoOrbit(t *testing.T) {
	c := NewOrbitCamera()
	c.Update(1)
	if c.RotationY != 0 {
		t.Errorf("yaw moved with auto orbit disabled: %v", c.RotationY)
	}
	c.AutoOrbit = 0.5
	c.Update(2)
	if math32.Abs(c.RotationY-1) > 1e-5 {
		t.Errorf("yaw = %v, want 1", c.RotationY)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	b := mesh.Bounds{Min: math.Vec3{X: -1, Y: 0, Z: -1}, Max: math.Vec3{X: 1, Y: 3, Z: 1}}
	c.FitToBounds(b)
	if c.Center != b.Center() {
		t.Errorf("center = %v, want %v", c.Center, b.Center())
	}
	radius := b.Size().Length() / 2
	if c.Distance*math32.Sin(c.FovY/2) < radius {
		t.Errorf("distance %v does not fit radius %v", c.Distance, radius)
	}

	before := *c
	c.FitToBounds(mesh.EmptyBounds())
	if *c != before {
		t.Error("empty bounds moved the camera")
	}
}

// Package camera provides the orbit camera used by the viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32

	// AutoOrbit is the idle yaw speed in radians per second. Zero disables it.
	AutoOrbit float32

	FovY      float32 // radians
	Near, Far float32
}

// NewOrbitCamera creates an orbit camera framing a unit-sized model.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5,
		RotationX:       0.35,
		MinDistance:     0.5,
		MaxDistance:     100,
		MinPitch:        -1.4,
		MaxPitch:        1.4,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FovY:            math32.Pi / 4,
		Near:            0.05,
		Far:             200,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := math32.Cos(c.RotationX)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cp * math32.Sin(c.RotationY),
		Y: c.Distance * math32.Sin(c.RotationX),
		Z: c.Distance * cp * math32.Cos(c.RotationY),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.UnitY)
}

// ProjectionMatrix returns the perspective projection for the given aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProjection returns projection · view.
func (c *OrbitCamera) ViewProjection(width, height int) math.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = clamp(c.RotationX, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// Update advances the idle orbit by dt seconds.
func (c *OrbitCamera) Update(dt float32) {
	if c.AutoOrbit == 0 {
		return
	}
	c.RotationY = math32.Mod(c.RotationY+c.AutoOrbit*dt, 2*math32.Pi)
}

// FitToBounds centers the camera on b and backs off until the bounding
// sphere fits the vertical field of view.
func (c *OrbitCamera) FitToBounds(b mesh.Bounds) {
	if b.IsEmpty() {
		return
	}
	c.Center = b.Center()
	radius := b.Size().Length() / 2
	if radius <= 0 {
		radius = 1
	}
	c.Distance = clamp(radius/math32.Sin(c.FovY/2)*1.1, c.MinDistance, c.MaxDistance)
	c.RotationX = clamp(0.35, c.MinPitch, c.MaxPitch)
	c.RotationY = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

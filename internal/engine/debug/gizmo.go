package debug

import (
	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Axis colors.
var (
	ColorX = math.Vec3{X: 0.9, Y: 0.15, Z: 0.15}
	ColorY = math.Vec3{X: 0.15, Y: 0.85, Z: 0.2}
	ColorZ = math.Vec3{X: 0.2, Y: 0.35, Z: 0.95}
)

// AxisGizmo builds three colored bars from the origin along +X, +Y and +Z.
// It is meant to be drawn unlit with vertex colors.
func AxisGizmo(length, thickness float32) *mesh.Mesh {
	m := mesh.New("gizmo", mesh.PosColor)
	h := thickness / 2
	AppendBox(m, math.Vec3{X: 0, Y: -h, Z: -h}, math.Vec3{X: length, Y: h, Z: h}, ColorX)
	AppendBox(m, math.Vec3{X: -h, Y: 0, Z: -h}, math.Vec3{X: h, Y: length, Z: h}, ColorY)
	AppendBox(m, math.Vec3{X: -h, Y: -h, Z: 0}, math.Vec3{X: h, Y: h, Z: length}, ColorZ)
	return m
}

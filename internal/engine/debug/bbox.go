// Package debug provides debug visualization meshes and frame capture.
package debug

import (
	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

// boxFaces lists each face as a quad of corner indices, counter-clockwise
// seen from outside. Corner i has x = bit 0, y = bit 1, z = bit 2.
var boxFaces = [6][4]uint32{
	{0, 4, 6, 2}, // -X
	{1, 3, 7, 5}, // +X
	{0, 1, 5, 4}, // -Y
	{2, 6, 7, 3}, // +Y
	{0, 2, 3, 1}, // -Z
	{4, 5, 7, 6}, // +Z
}

// BoxVertexCount and BoxTriangleCount describe one AppendBox call.
const (
	BoxVertexCount   = 8
	BoxTriangleCount = 12
)

// AppendBox adds a solid axis-aligned box to m with 8 shared corners.
func AppendBox(m *mesh.Mesh, min, max, color math.Vec3) {
	base := uint32(len(m.Vertices))
	for i := 0; i < 8; i++ {
		p := min
		if i&1 != 0 {
			p.X = max.X
		}
		if i&2 != 0 {
			p.Y = max.Y
		}
		if i&4 != 0 {
			p.Z = max.Z
		}
		m.AddVertex(mesh.Vertex{Position: p, Color: color})
	}
	for _, f := range boxFaces {
		m.AddTriangle(base+f[0], base+f[1], base+f[2])
		m.AddTriangle(base+f[0], base+f[2], base+f[3])
	}
}

// BoundsBox returns an unlit box around b grown by padding on every side.
func BoundsBox(b mesh.Bounds, padding float32, color math.Vec3) *mesh.Mesh {
	m := mesh.New("bounds", mesh.PosColor)
	if b.IsEmpty() {
		return m
	}
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	AppendBox(m, b.Min.Sub(pad), b.Max.Add(pad), color)
	return m
}

// DefaultBoundsPadding keeps the bounds box off the surface it encloses.
const DefaultBoundsPadding = 0.02

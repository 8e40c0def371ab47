// Package surface generates triangle meshes for analytic parametric surfaces:
// ellipsoids, one-sheet hyperboloids, Bezier lathes, spherocylinders and
// spline ribbons.
//
// Grid generators walk their row parameter from its high end to its low end
// so that the shared quad split in mesh.AddGrid winds counter-clockwise
// around the outward normal.
package surface

import (
	"errors"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

var (
	ErrInvalidTessellation = errors.New("tessellation counts must be positive")
	ErrTooFewControlPoints = errors.New("curve needs at least two control points")
	ErrMismatchedPolylines = errors.New("top and bottom polylines differ in length")
)

// Kind names a generator variant.
type Kind string

const (
	KindEllipsoid      Kind = "ellipsoid"
	KindHyperboloid    Kind = "hyperboloid"
	KindLathe          Kind = "lathe"
	KindSpherocylinder Kind = "spherocylinder"
	KindRibbon         Kind = "ribbon"
)

// Generator is implemented by every surface variant. Generate is pure: the
// same parameters always produce the same mesh.
type Generator interface {
	Kind() Kind
	Generate() (*mesh.Mesh, error)
}

// degenerateLen is the normal length below which the fallback axis is used.
const degenerateLen = 1e-12

// normalizeOr normalizes n, substituting fallback when n is (nearly) zero.
func normalizeOr(n, fallback math.Vec3) math.Vec3 {
	l := n.Length()
	if l < degenerateLen {
		return fallback
	}
	return n.Scale(1 / l)
}

// newMesh starts a mesh whose layout depends on whether a uniform color is set.
func newMesh(name string, color *math.Vec3) *mesh.Mesh {
	if color != nil {
		return mesh.New(name, mesh.PosNormalColor)
	}
	return mesh.New(name, mesh.PosNormal)
}

func vertex(p, n math.Vec3, color *math.Vec3) mesh.Vertex {
	v := mesh.Vertex{Position: p, Normal: n}
	if color != nil {
		v.Color = *color
	}
	return v
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

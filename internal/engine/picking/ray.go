// Package picking casts rays from the screen into the scene graph.
package picking

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/internal/engine/scenegraph"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Ray is Origin + t·Direction for t >= 0.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts pixel coordinates (origin top-left) to a world ray
// with a unit direction. It fails when viewProj is singular.
func ScreenToRay(screenX, screenY float32, width, height int, viewProj math.Mat4) (Ray, bool) {
	if width <= 0 || height <= 0 {
		return Ray{}, false
	}
	inv, ok := viewProj.InverseOK()
	if !ok {
		return Ray{}, false
	}

	ndcX := 2*screenX/float32(width) - 1
	ndcY := 1 - 2*screenY/float32(height)

	near := inv.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	far := inv.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})
	dir := far.Sub(near)
	if dir.Length() == 0 {
		return Ray{}, false
	}
	return Ray{Origin: near, Direction: dir.Normalize()}, true
}

// Transform maps the ray by m. The direction is not renormalized, so a
// parameter t names the same point before and after.
func (r Ray) Transform(m math.Mat4) Ray {
	return Ray{Origin: m.TransformPoint(r.Origin), Direction: m.TransformDirection(r.Direction)}
}

// IntersectBounds runs the slab test against b. It returns the entry
// parameter, or the exit parameter when the ray starts inside.
func (r Ray) IntersectBounds(b mesh.Bounds) (float32, bool) {
	if b.IsEmpty() {
		return 0, false
	}
	origin, dir := r.Origin.Array(), r.Direction.Array()
	lo, hi := b.Min.Array(), b.Max.Array()

	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Hit is the nearest node a ray struck.
type Hit struct {
	Node     scenegraph.NodeID
	Name     string
	Distance float32
	Point    math.Vec3
}

// Pick tests r against the local bounding box of every visible lit mesh and
// returns the nearest. Unlit helpers such as gizmos are skipped.
func Pick(g *scenegraph.Graph, r Ray) (Hit, bool) {
	best := Hit{Node: scenegraph.None, Distance: float32(gomath.MaxFloat32)}
	_ = g.WalkVisible(func(id scenegraph.NodeID, n *scenegraph.Node, world math.Mat4, _ int) error {
		if n.Mesh == nil || n.Material.Unlit {
			return nil
		}
		inv, ok := world.InverseOK()
		if !ok {
			return nil
		}
		t, ok := r.Transform(inv).IntersectBounds(n.Mesh.Bounds)
		if ok && t < best.Distance {
			best = Hit{Node: id, Name: n.Name, Distance: t}
		}
		return nil
	})
	if best.Node == scenegraph.None {
		return Hit{}, false
	}
	best.Point = r.At(best.Distance)
	return best, true
}

// Package blend synthesizes the connective band of geometry that hides the
// seam between two independently placed ellipsoids, such as a torso and a
// head.
//
// The seam plane is perpendicular to the line joining the two centers and
// passes through the midpoint of the points where each center's ray toward
// the other leaves its own surface. This origin is an approximation that
// holds while the parts are close to touching.
package blend

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/internal/engine/surface"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Defaults used when Options fields are zero.
const (
	DefaultSegments = 32
	DefaultInflate  = 0.004
)

// nearVertical is the |n·Y| above which the seam basis is built from X.
const nearVertical = 0.99

var ErrInvalidSegments = errors.New("blend band needs at least three segments")

// Part is an ellipsoid placed in the world.
type Part struct {
	Shape surface.Ellipsoid
	World math.Mat4
}

// PartFromTransform places shape with a TRS transform.
func PartFromTransform(shape surface.Ellipsoid, t math.Transform) Part {
	return Part{Shape: shape, World: t.Matrix()}
}

// Center returns the part's world-space center.
func (p Part) Center() math.Vec3 {
	return p.World.Origin()
}

// Options tune the band.
type Options struct {
	Segments int        `yaml:"segments"`
	Inflate  float32    `yaml:"inflate"`
	Color    *math.Vec3 `yaml:"color,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.Segments == 0 {
		o.Segments = DefaultSegments
	}
	if o.Inflate == 0 {
		o.Inflate = DefaultInflate
	}
	return o
}

// Band is a synthesized blend band. RingA and RingB hold the raw surface
// points before inflation; the mesh vertices are inflated along each ring
// direction, which is also their normal. Both rings lie in the seam plane,
// so the band is an open annulus and should be drawn without culling.
type Band struct {
	Mesh   *mesh.Mesh
	RingA  []math.Vec3
	RingB  []math.Vec3
	Origin math.Vec3
	Axis   math.Vec3
}

// Synthesize builds the world-space band joining a to b.
func Synthesize(a, b Part, opts Options) (*Band, error) {
	opts = opts.withDefaults()
	if opts.Segments < 3 {
		return nil, fmt.Errorf("%d segments: %w", opts.Segments, ErrInvalidSegments)
	}

	ca, cb := a.Center(), b.Center()
	axis := cb.Sub(ca).Normalize()
	if axis.Length() == 0 {
		axis = math.UnitY
	}

	// Exit points of each center's ray toward the other part.
	exitA, okA := exitPoint(a, ca, axis)
	exitB, okB := exitPoint(b, cb, axis.Negate())
	var origin math.Vec3
	switch {
	case okA && okB:
		origin = exitA.Add(exitB).Scale(0.5)
	case okA:
		origin = exitA
	case okB:
		origin = exitB
	default:
		origin = ca.Add(cb).Scale(0.5)
	}

	u, v := Basis(axis)
	band := &Band{
		RingA:  make([]math.Vec3, opts.Segments+1),
		RingB:  make([]math.Vec3, opts.Segments+1),
		Origin: origin,
		Axis:   axis,
	}
	dirs := make([]math.Vec3, opts.Segments+1)

	prevA, prevB := origin, origin
	for k := 0; k <= opts.Segments; k++ {
		phi := 2 * math32.Pi * float32(k) / float32(opts.Segments)
		s := u.Scale(math32.Cos(phi)).Add(v.Scale(math32.Sin(phi))).Normalize()
		dirs[k] = s

		if t, ok := Intersect(a, origin, s); ok {
			prevA = origin.Add(s.Scale(t))
		}
		if t, ok := Intersect(b, origin, s); ok {
			prevB = origin.Add(s.Scale(t))
		}
		band.RingA[k] = prevA
		band.RingB[k] = prevB
	}

	m := mesh.New("blend", mesh.PosNormal)
	if opts.Color != nil {
		m.Layout = mesh.PosNormalColor
	}
	for _, ring := range [][]math.Vec3{band.RingA, band.RingB} {
		for k, p := range ring {
			vert := mesh.Vertex{Position: p.Add(dirs[k].Scale(opts.Inflate)), Normal: dirs[k]}
			if opts.Color != nil {
				vert.Color = *opts.Color
			}
			m.AddVertex(vert)
		}
	}
	m.AddGrid(0, 2, opts.Segments+1, false)
	band.Mesh = m
	return band, nil
}

// Basis returns an orthonormal pair spanning the plane perpendicular to n,
// oriented so that u × v = n.
func Basis(n math.Vec3) (u, v math.Vec3) {
	ref := math.UnitY
	if math32.Abs(n.Dot(ref)) > nearVertical {
		ref = math.UnitX
	}
	u = n.Cross(ref).Normalize()
	v = n.Cross(u)
	return u, v
}

func exitPoint(p Part, from, dir math.Vec3) (math.Vec3, bool) {
	t, ok := Intersect(p, from, dir)
	if !ok {
		return math.Vec3{}, false
	}
	return from.Add(dir.Scale(t)), true
}

// Intersect returns the ray parameter where origin + t·dir meets the part's
// surface. Of the two roots it prefers the farthest ahead of the origin and
// otherwise takes the one with larger |t|. ok is false when the ray misses or
// the part is degenerate.
func Intersect(p Part, origin, dir math.Vec3) (t float32, ok bool) {
	inv, invertible := p.World.InverseOK()
	if !invertible {
		return 0, false
	}
	lo := inv.TransformPoint(origin)
	ld := inv.TransformDirection(dir)

	t0, t1, ok := solveQuadric(p.Shape, lo, ld)
	if !ok {
		return 0, false
	}
	switch {
	case t1 > 0:
		return float32(t1), true
	case stdmath.Abs(t0) > stdmath.Abs(t1):
		return float32(t0), true
	default:
		return float32(t1), true
	}
}

// solveQuadric substitutes the local ray into x²/a² + y²/b² + z²/c² = 1 and
// returns the ordered roots.
func solveQuadric(e surface.Ellipsoid, o, d math.Vec3) (t0, t1 float64, ok bool) {
	if e.A == 0 || e.B == 0 || e.C == 0 {
		return 0, 0, false
	}
	ia := 1 / (float64(e.A) * float64(e.A))
	ib := 1 / (float64(e.B) * float64(e.B))
	ic := 1 / (float64(e.C) * float64(e.C))
	ox, oy, oz := float64(o.X), float64(o.Y), float64(o.Z)
	dx, dy, dz := float64(d.X), float64(d.Y), float64(d.Z)

	qa := dx*dx*ia + dy*dy*ib + dz*dz*ic
	qb := 2 * (ox*dx*ia + oy*dy*ib + oz*dz*ic)
	qc := ox*ox*ia + oy*oy*ib + oz*oz*ic - 1

	if qa < 1e-18 {
		return 0, 0, false
	}
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return 0, 0, false
	}

	// Second root via qc/q to avoid cancellation.
	sq := stdmath.Sqrt(disc)
	q := -0.5 * (qb + stdmath.Copysign(sq, qb))
	t0 = q / qa
	t1 = t0
	if q != 0 {
		t1 = qc / q
	}
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

package surface

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Window restricts an ellipsoid to a parametric sub-region. U is latitude in
// [-π/2, π/2], V is longitude in [-π, π]. The zero Window means the full
// surface.
type Window struct {
	UMin float32 `yaml:"u_min"`
	UMax float32 `yaml:"u_max"`
	VMin float32 `yaml:"v_min"`
	VMax float32 `yaml:"v_max"`
}

// FullWindow covers the whole ellipsoid.
func FullWindow() Window {
	return Window{UMin: -math32.Pi / 2, UMax: math32.Pi / 2, VMin: -math32.Pi, VMax: math32.Pi}
}

// IsZero reports whether the window was left unset.
func (w Window) IsZero() bool {
	return w == Window{}
}

// Resolved clamps the ranges to their legal domains. Each range left unset
// (min == max == 0) covers its full domain, so a window that only limits
// latitude still wraps all the way around.
func (w Window) Resolved() Window {
	full := FullWindow()
	if w.UMin == 0 && w.UMax == 0 {
		w.UMin, w.UMax = full.UMin, full.UMax
	}
	if w.VMin == 0 && w.VMax == 0 {
		w.VMin, w.VMax = full.VMin, full.VMax
	}
	return Window{
		UMin: math32.Max(w.UMin, full.UMin),
		UMax: math32.Min(w.UMax, full.UMax),
		VMin: math32.Max(w.VMin, full.VMin),
		VMax: math32.Min(w.VMax, full.VMax),
	}
}

// Ellipsoid is an axis-aligned ellipsoid with semi-axes A (x), B (y) and C (z).
type Ellipsoid struct {
	A       float32    `yaml:"a"`
	B       float32    `yaml:"b"`
	C       float32    `yaml:"c"`
	Stacks  int        `yaml:"stacks"`
	Sectors int        `yaml:"sectors"`
	Window  Window     `yaml:"window,omitempty"`
	Color   *math.Vec3 `yaml:"color,omitempty"`
}

// Kind implements Generator.
func (e Ellipsoid) Kind() Kind { return KindEllipsoid }

// Point evaluates P(u,v). cos(±π/2) rounds slightly below zero in float32,
// so the latitude cosine is clamped to keep the pole rows on the axis.
func (e Ellipsoid) Point(u, v float32) math.Vec3 {
	cu, su := math32.Max(0, math32.Cos(u)), math32.Sin(u)
	cv, sv := math32.Cos(v), math32.Sin(v)
	return math.Vec3{X: e.A * cv * cu, Y: e.B * su, Z: e.C * sv * cu}
}

// Normal returns the outward unit normal at a surface point p, the normalized
// gradient (x/a², y/b², z/c²) scaled through by a²b²c². A vanishing gradient
// falls back to the dominant axis of p.
func (e Ellipsoid) Normal(p math.Vec3) math.Vec3 {
	a2, b2, c2 := e.A*e.A, e.B*e.B, e.C*e.C
	g := math.Vec3{X: p.X * b2 * c2, Y: p.Y * a2 * c2, Z: p.Z * a2 * b2}
	return normalizeOr(g, p.DominantAxis())
}

// Implicit evaluates x²/a² + y²/b² + z²/c², which is 1 on the surface.
func (e Ellipsoid) Implicit(p math.Vec3) float32 {
	return p.X*p.X/(e.A*e.A) + p.Y*p.Y/(e.B*e.B) + p.Z*p.Z/(e.C*e.C)
}

// Generate implements Generator.
func (e Ellipsoid) Generate() (*mesh.Mesh, error) {
	return GenerateEllipsoid(e)
}

// GenerateEllipsoid tessellates the ellipsoid into (Stacks+1)·(Sectors+1)
// vertices and 2·Stacks·Sectors triangles.
func GenerateEllipsoid(e Ellipsoid) (*mesh.Mesh, error) {
	if e.Stacks < 1 || e.Sectors < 1 {
		return nil, fmt.Errorf("ellipsoid %dx%d: %w", e.Stacks, e.Sectors, ErrInvalidTessellation)
	}
	w := e.Window.Resolved()

	m := newMesh(string(KindEllipsoid), e.Color)
	for i := 0; i <= e.Stacks; i++ {
		u := lerp(w.UMax, w.UMin, float32(i)/float32(e.Stacks))
		for j := 0; j <= e.Sectors; j++ {
			v := lerp(w.VMin, w.VMax, float32(j)/float32(e.Sectors))
			p := e.Point(u, v)
			m.AddVertex(vertex(p, e.Normal(p), e.Color))
		}
	}
	m.AddGrid(0, e.Stacks+1, e.Sectors+1, false)
	return m, nil
}

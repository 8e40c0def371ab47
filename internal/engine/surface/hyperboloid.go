package surface

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Hyperboloid is a hyperboloid of one sheet around the Y axis,
// x²/a² − y²/h² + z²/c² = 1, over the finite parameter range [UMin, UMax].
// The waist sits at u = 0; limbs taper by choosing an asymmetric range.
type Hyperboloid struct {
	A       float32    `yaml:"a"`
	H       float32    `yaml:"h"`
	C       float32    `yaml:"c"`
	UMin    float32    `yaml:"u_min"`
	UMax    float32    `yaml:"u_max"`
	Stacks  int        `yaml:"stacks"`
	Sectors int        `yaml:"sectors"`
	Color   *math.Vec3 `yaml:"color,omitempty"`
}

// Kind implements Generator.
func (h Hyperboloid) Kind() Kind { return KindHyperboloid }

// Point evaluates P(u,v) = (a·cosh u·cos v, h·sinh u, c·cosh u·sin v).
func (h Hyperboloid) Point(u, v float32) math.Vec3 {
	eu, emu := math32.Exp(u), math32.Exp(-u)
	ch, sh := (eu+emu)/2, (eu-emu)/2
	return math.Vec3{X: h.A * ch * math32.Cos(v), Y: h.H * sh, Z: h.C * ch * math32.Sin(v)}
}

// Normal returns the outward unit normal at p from the gradient
// (x/a², −y/h², z/c²), scaled through by a²h²c².
func (h Hyperboloid) Normal(p math.Vec3) math.Vec3 {
	a2, h2, c2 := h.A*h.A, h.H*h.H, h.C*h.C
	g := math.Vec3{X: p.X * h2 * c2, Y: -p.Y * a2 * c2, Z: p.Z * a2 * h2}
	return normalizeOr(g, math.Vec3{X: p.X, Z: p.Z}.DominantAxis())
}

// Generate implements Generator.
func (h Hyperboloid) Generate() (*mesh.Mesh, error) {
	if h.Stacks < 1 || h.Sectors < 1 {
		return nil, fmt.Errorf("hyperboloid %dx%d: %w", h.Stacks, h.Sectors, ErrInvalidTessellation)
	}
	uMin, uMax := h.UMin, h.UMax
	if uMin == 0 && uMax == 0 {
		uMin, uMax = -1, 1
	}

	m := newMesh(string(KindHyperboloid), h.Color)
	for i := 0; i <= h.Stacks; i++ {
		u := lerp(uMax, uMin, float32(i)/float32(h.Stacks))
		for j := 0; j <= h.Sectors; j++ {
			v := lerp(-math32.Pi, math32.Pi, float32(j)/float32(h.Sectors))
			p := h.Point(u, v)
			m.AddVertex(vertex(p, h.Normal(p), h.Color))
		}
	}
	m.AddGrid(0, h.Stacks+1, h.Sectors+1, false)
	return m, nil
}

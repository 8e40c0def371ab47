package surface

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Spherocylinder is a capsule along Y: a cylindrical shaft of the given
// Radius and Length, closed by two superellipse domes of independent
// heights. Exponent shapes the dome profile |x/R|^e + |y/H|^e = 1; 2 gives
// elliptical caps, larger values flatten them. Zero means 2; values below 1
// are clamped to 1.
type Spherocylinder struct {
	Radius       float32    `yaml:"radius"`
	Length       float32    `yaml:"length"`
	TopHeight    float32    `yaml:"top_height"`
	BottomHeight float32    `yaml:"bottom_height"`
	Exponent     float32    `yaml:"exponent"`
	Stacks       int        `yaml:"stacks"`
	Sectors      int        `yaml:"sectors"`
	CapStacks    int        `yaml:"cap_stacks"`
	Color        *math.Vec3 `yaml:"color,omitempty"`
}

// Kind implements Generator.
func (s Spherocylinder) Kind() Kind { return KindSpherocylinder }

// TriangleCount returns the number of triangles Generate emits.
func (s Spherocylinder) TriangleCount() int {
	shaft := 2 * s.Stacks * s.Sectors
	capTris := 2*(s.CapStacks-1)*s.Sectors + s.Sectors
	return shaft + 2*capTris
}

// VertexCount returns the number of vertices Generate emits.
func (s Spherocylinder) VertexCount() int {
	ring := s.Sectors + 1
	return (s.Stacks+1)*ring + 2*(s.CapStacks*ring+1)
}

func (s Spherocylinder) exponent() float32 {
	switch {
	case s.Exponent == 0:
		return 2
	case s.Exponent < 1:
		return 1
	default:
		return s.Exponent
	}
}

// capPoint returns the dome profile (radius, height) at quarter angle u and
// the matching unnormalized (radial, axial) normal components.
func (s Spherocylinder) capPoint(u, height float32) (rho, h, nr, ny float32) {
	e := s.exponent()
	cu := math32.Abs(math32.Cos(u))
	su := math32.Abs(math32.Sin(u))
	rho = s.Radius * math32.Pow(cu, 2/e)
	h = height * math32.Pow(su, 2/e)
	nr = math32.Pow(cu, 2-2/e) * height
	ny = math32.Pow(su, 2-2/e) * s.Radius
	return rho, h, nr, ny
}

// Generate implements Generator. Vertices are laid out shaft first, then the
// top cap rings and pole, then the bottom cap rings and pole.
func (s Spherocylinder) Generate() (*mesh.Mesh, error) {
	if s.Stacks < 1 || s.Sectors < 1 || s.CapStacks < 1 {
		return nil, fmt.Errorf("spherocylinder %dx%d caps %d: %w", s.Stacks, s.Sectors, s.CapStacks, ErrInvalidTessellation)
	}

	m := newMesh(string(KindSpherocylinder), s.Color)
	ring := s.Sectors + 1
	half := s.Length / 2

	angle := func(j int) (float32, float32) {
		theta := 2 * math32.Pi * float32(j) / float32(s.Sectors)
		return math32.Cos(theta), math32.Sin(theta)
	}

	// Shaft, top to bottom.
	for i := 0; i <= s.Stacks; i++ {
		y := lerp(half, -half, float32(i)/float32(s.Stacks))
		for j := 0; j < ring; j++ {
			c, sn := angle(j)
			p := math.Vec3{X: s.Radius * c, Y: y, Z: s.Radius * sn}
			n := normalizeOr(math.Vec3{X: c, Z: sn}, math.Vec3{Y: y}.DominantAxis())
			m.AddVertex(vertex(p, n, s.Color))
		}
	}
	m.AddGrid(0, s.Stacks+1, ring, false)

	step := (math32.Pi / 2) / float32(s.CapStacks)

	// Top cap: rings from nearest the pole down to the shaft rim.
	topBase := uint32(m.VertexCount())
	for k := s.CapStacks - 1; k >= 0; k-- {
		rho, h, nr, ny := s.capPoint(float32(k)*step, s.TopHeight)
		for j := 0; j < ring; j++ {
			c, sn := angle(j)
			p := math.Vec3{X: rho * c, Y: half + h, Z: rho * sn}
			n := normalizeOr(math.Vec3{X: nr * c, Y: ny, Z: nr * sn}, math.UnitY)
			m.AddVertex(vertex(p, n, s.Color))
		}
	}
	m.AddGrid(topBase, s.CapStacks, ring, false)
	topPole := m.AddVertex(vertex(math.Vec3{Y: half + s.TopHeight}, math.UnitY, s.Color))
	for j := 0; j < s.Sectors; j++ {
		m.AddTriangle(topPole, topBase+uint32(j+1), topBase+uint32(j))
	}

	// Bottom cap: rings from the shaft rim down toward the pole.
	bottomBase := uint32(m.VertexCount())
	down := math.UnitY.Negate()
	for k := 0; k < s.CapStacks; k++ {
		rho, h, nr, ny := s.capPoint(float32(k)*step, s.BottomHeight)
		for j := 0; j < ring; j++ {
			c, sn := angle(j)
			p := math.Vec3{X: rho * c, Y: -half - h, Z: rho * sn}
			n := normalizeOr(math.Vec3{X: nr * c, Y: -ny, Z: nr * sn}, down)
			m.AddVertex(vertex(p, n, s.Color))
		}
	}
	m.AddGrid(bottomBase, s.CapStacks, ring, false)
	bottomPole := m.AddVertex(vertex(math.Vec3{Y: -half - s.BottomHeight}, down, s.Color))
	last := bottomBase + uint32((s.CapStacks-1)*ring)
	for j := 0; j < s.Sectors; j++ {
		m.AddTriangle(bottomPole, last+uint32(j), last+uint32(j+1))
	}

	return m, nil
}

package surface

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Lathe revolves a cubic Bezier profile (X = radius, Y = height) around the
// Y axis. ScaleX and ScaleZ stretch the sweep into an elliptical cross
// section; zero means 1.
//
// Profiles are expected to run bottom to top; a profile running downward
// produces inward-facing triangles and should set Flip.
type Lathe struct {
	Profile         CubicBezier `yaml:"profile"`
	ProfileSegments int         `yaml:"profile_segments"`
	Segments        int         `yaml:"segments"`
	ScaleX          float32     `yaml:"scale_x"`
	ScaleZ          float32     `yaml:"scale_z"`
	Flip            bool        `yaml:"flip"`
	Color           *math.Vec3  `yaml:"color,omitempty"`
}

// Kind implements Generator.
func (l Lathe) Kind() Kind { return KindLathe }

func (l Lathe) scales() (float32, float32) {
	sx, sz := l.ScaleX, l.ScaleZ
	if sx == 0 {
		sx = 1
	}
	if sz == 0 {
		sz = 1
	}
	return sx, sz
}

// Point returns the surface point at profile parameter t and angle theta.
func (l Lathe) Point(t, theta float32) math.Vec3 {
	sx, sz := l.scales()
	p := l.Profile.Eval(t)
	return math.Vec3{X: p.X * sx * math32.Cos(theta), Y: p.Y, Z: p.X * sz * math32.Sin(theta)}
}

// Normal returns the unit normal P_t × P_θ at (t, theta). Where the profile
// touches the axis the angular tangent vanishes and the normal falls back to
// the axis direction the profile is closing toward.
func (l Lathe) Normal(t, theta float32) math.Vec3 {
	sx, sz := l.scales()
	p := l.Profile.Eval(t)
	d := l.Profile.Derivative(t)
	c, s := math32.Cos(theta), math32.Sin(theta)

	pt := math.Vec3{X: d.X * sx * c, Y: d.Y, Z: d.X * sz * s}
	pTheta := math.Vec3{X: -p.X * sx * s, Z: p.X * sz * c}
	n := pt.Cross(pTheta)
	if l.Flip {
		n = n.Negate()
	}

	var fallback math.Vec3
	switch {
	case d.X < 0:
		fallback = math.UnitY
	case d.X > 0:
		fallback = math.UnitY.Negate()
	default:
		fallback = math.Vec3{Y: p.Y}.DominantAxis()
	}
	if l.Flip {
		fallback = fallback.Negate()
	}
	return normalizeOr(n, fallback)
}

// Generate implements Generator. Rows run from the profile end (t = 1) back to
// its start so the grid winds outward for upward profiles.
func (l Lathe) Generate() (*mesh.Mesh, error) {
	if l.ProfileSegments < 1 || l.Segments < 1 {
		return nil, fmt.Errorf("lathe %dx%d: %w", l.ProfileSegments, l.Segments, ErrInvalidTessellation)
	}

	m := newMesh(string(KindLathe), l.Color)
	for i := 0; i <= l.ProfileSegments; i++ {
		t := 1 - float32(i)/float32(l.ProfileSegments)
		for j := 0; j <= l.Segments; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(l.Segments)
			m.AddVertex(vertex(l.Point(t, theta), l.Normal(t, theta), l.Color))
		}
	}
	m.AddGrid(0, l.ProfileSegments+1, l.Segments+1, l.Flip)
	return m, nil
}

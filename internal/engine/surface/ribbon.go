package surface

import (
	"fmt"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Ribbon extrudes a fin from a centripetal Catmull-Rom spline in the XY plane.
// The spline is the top edge; the bottom edge is offset along each sample's
// left normal by Offset. Past TipStart (normalized arc length) the offset
// shrinks by up to TaperTip and the edge is pulled forward along the tangent
// by up to TipPull, both smoothstep-weighted and clamped non-negative.
type Ribbon struct {
	Points            []math.Vec2 `yaml:"points"`
	SamplesPerSegment int         `yaml:"samples_per_segment"`
	Offset            float32     `yaml:"offset"`
	TaperTip          float32     `yaml:"taper_tip"`
	TipPull           float32     `yaml:"tip_pull"`
	TipStart          float32     `yaml:"tip_start"`
	DoubleSided       bool        `yaml:"double_sided"`
	Color             *math.Vec3  `yaml:"color,omitempty"`
}

// Kind implements Generator.
func (r Ribbon) Kind() Kind { return KindRibbon }

// TopCurve samples the spline through the control points.
func (r Ribbon) TopCurve() ([]math.Vec2, error) {
	return CatmullRom(r.Points, r.SamplesPerSegment, CentripetalAlpha)
}

// BottomCurve derives the bottom edge from a sampled top curve.
func (r Ribbon) BottomCurve(top []math.Vec2) []math.Vec2 {
	tangents := Tangents(top)
	arc := arcFractions(top)

	bottom := make([]math.Vec2, len(top))
	for i, p := range top {
		w := Smoothstep(r.TipStart, 1, arc[i])
		shrink := max(0, 1-r.TaperTip*w)
		pull := max(0, r.TipPull*w)

		t := tangents[i]
		bottom[i] = p.Add(t.Perp().Scale(r.Offset * shrink)).Add(t.Scale(pull))
	}
	return bottom
}

// Tangents returns unit finite-difference tangents of a polyline. Repeated
// points reuse the previous tangent, starting from +X.
func Tangents(line []math.Vec2) []math.Vec2 {
	out := make([]math.Vec2, len(line))
	prev := math.Vec2{X: 1}
	for i := range line {
		var d math.Vec2
		switch {
		case len(line) < 2:
		case i == 0:
			d = line[1].Sub(line[0])
		case i == len(line)-1:
			d = line[i].Sub(line[i-1])
		default:
			d = line[i+1].Sub(line[i-1])
		}
		if d.Length() > 0 {
			prev = d.Normalize()
		}
		out[i] = prev
	}
	return out
}

// arcFractions returns the normalized cumulative arc length of each sample.
func arcFractions(line []math.Vec2) []float32 {
	out := make([]float32, len(line))
	var total float32
	for i := 1; i < len(line); i++ {
		total += line[i].Distance(line[i-1])
		out[i] = total
	}
	for i := range out {
		switch {
		case total > 0:
			out[i] /= total
		case len(line) > 1:
			out[i] = float32(i) / float32(len(line)-1)
		}
	}
	return out
}

// Generate implements Generator.
func (r Ribbon) Generate() (*mesh.Mesh, error) {
	top, err := r.TopCurve()
	if err != nil {
		return nil, fmt.Errorf("ribbon: %w", err)
	}
	bottom := r.BottomCurve(top)

	// A negative offset puts the bottom edge on the right, mirroring the grid.
	m, err := BuildRibbon(top, bottom, r.Offset < 0, r.DoubleSided, r.Color)
	if err != nil {
		return nil, fmt.Errorf("ribbon: %w", err)
	}
	return m, nil
}

// BuildRibbon connects matching top and bottom samples into a strip in the
// z = 0 plane whose front faces +Z. Set flip when the bottom edge lies to the
// right of the top edge's direction of travel. Double-sided strips append a
// reversed copy facing -Z.
func BuildRibbon(top, bottom []math.Vec2, flip, doubleSided bool, color *math.Vec3) (*mesh.Mesh, error) {
	if len(top) != len(bottom) {
		return nil, fmt.Errorf("top %d, bottom %d: %w", len(top), len(bottom), ErrMismatchedPolylines)
	}
	if len(top) < 2 {
		return nil, fmt.Errorf("%d samples: %w", len(top), ErrTooFewControlPoints)
	}

	m := newMesh(string(KindRibbon), color)
	sheet := func(normal math.Vec3, flip bool) {
		base := uint32(m.VertexCount())
		for _, row := range [][]math.Vec2{top, bottom} {
			for _, p := range row {
				m.AddVertex(vertex(math.Vec3{X: p.X, Y: p.Y}, normal, color))
			}
		}
		m.AddGrid(base, 2, len(top), flip)
	}

	sheet(math.UnitZ, flip)
	if doubleSided {
		sheet(math.UnitZ.Negate(), !flip)
	}
	return m, nil
}

package surface

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/pkg/math"
)

// CubicBezier is a 2D cubic Bezier curve. For lathe profiles X is the radius
// and Y the height.
type CubicBezier struct {
	P0 math.Vec2 `yaml:"p0"`
	P1 math.Vec2 `yaml:"p1"`
	P2 math.Vec2 `yaml:"p2"`
	P3 math.Vec2 `yaml:"p3"`
}

// BezierBasis returns the four cubic Bernstein weights at t.
func BezierBasis(t float32) [4]float32 {
	mt := 1 - t
	return [4]float32{mt * mt * mt, 3 * mt * mt * t, 3 * mt * t * t, t * t * t}
}

// Eval evaluates the curve at t in [0, 1].
func (c CubicBezier) Eval(t float32) math.Vec2 {
	b := BezierBasis(t)
	return math.Vec2{
		X: b[0]*c.P0.X + b[1]*c.P1.X + b[2]*c.P2.X + b[3]*c.P3.X,
		Y: b[0]*c.P0.Y + b[1]*c.P1.Y + b[2]*c.P2.Y + b[3]*c.P3.Y,
	}
}

// Derivative returns dC/dt at t.
func (c CubicBezier) Derivative(t float32) math.Vec2 {
	mt := 1 - t
	d0 := c.P1.Sub(c.P0).Scale(3 * mt * mt)
	d1 := c.P2.Sub(c.P1).Scale(6 * mt * t)
	d2 := c.P3.Sub(c.P2).Scale(3 * t * t)
	return d0.Add(d1).Add(d2)
}

// CentripetalAlpha is the Catmull-Rom parameterization that avoids cusps and
// self-intersections within a segment.
const CentripetalAlpha = 0.5

// minKnotSpan keeps coincident control points from collapsing a knot interval.
const minKnotSpan = 1e-4

// CatmullRom samples a Catmull-Rom spline through points with the given
// knot exponent alpha (0.5 for centripetal). Each span contributes
// samplesPerSegment samples and the final point closes the polyline, so the
// result has (len(points)-1)*samplesPerSegment+1 entries and passes through
// every control point. End tangents come from reflected phantom points.
func CatmullRom(points []math.Vec2, samplesPerSegment int, alpha float32) ([]math.Vec2, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("catmull-rom with %d points: %w", len(points), ErrTooFewControlPoints)
	}
	if samplesPerSegment < 1 {
		return nil, fmt.Errorf("catmull-rom with %d samples per segment: %w", samplesPerSegment, ErrInvalidTessellation)
	}

	n := len(points)
	ext := make([]math.Vec2, 0, n+2)
	ext = append(ext, points[0].Scale(2).Sub(points[1]))
	ext = append(ext, points...)
	ext = append(ext, points[n-1].Scale(2).Sub(points[n-2]))

	out := make([]math.Vec2, 0, (n-1)*samplesPerSegment+1)
	for seg := 0; seg < n-1; seg++ {
		p0, p1, p2, p3 := ext[seg], ext[seg+1], ext[seg+2], ext[seg+3]

		t0 := float32(0)
		t1 := t0 + knotSpan(p0, p1, alpha)
		t2 := t1 + knotSpan(p1, p2, alpha)
		t3 := t2 + knotSpan(p2, p3, alpha)

		for k := 0; k < samplesPerSegment; k++ {
			t := lerp(t1, t2, float32(k)/float32(samplesPerSegment))
			out = append(out, barryGoldman(p0, p1, p2, p3, t0, t1, t2, t3, t))
		}
	}
	out = append(out, points[n-1])
	return out, nil
}

func knotSpan(a, b math.Vec2, alpha float32) float32 {
	d := math32.Pow(a.Distance(b), alpha)
	if d < minKnotSpan {
		return minKnotSpan
	}
	return d
}

// barryGoldman evaluates one Catmull-Rom span with the pyramidal recurrence.
func barryGoldman(p0, p1, p2, p3 math.Vec2, t0, t1, t2, t3, t float32) math.Vec2 {
	a1 := mix(p0, p1, t0, t1, t)
	a2 := mix(p1, p2, t1, t2, t)
	a3 := mix(p2, p3, t2, t3, t)
	b1 := mix(a1, a2, t0, t2, t)
	b2 := mix(a2, a3, t1, t3, t)
	return mix(b1, b2, t1, t2, t)
}

func mix(a, b math.Vec2, ta, tb, t float32) math.Vec2 {
	w := (t - ta) / (tb - ta)
	return a.Scale(1 - w).Add(b.Scale(w))
}

// Smoothstep is the cubic Hermite ramp from 0 at edge0 to 1 at edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge1 <= edge0 {
		if x < edge1 {
			return 0
		}
		return 1
	}
	t := (x - edge0) / (edge1 - edge0)
	t = math32.Max(0, math32.Min(1, t))
	return t * t * (3 - 2*t)
}

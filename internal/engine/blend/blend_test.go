package blend

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/surface"
	"github.com/Faultbox/sculpt/pkg/math"
)

func torsoAndHead() (Part, Part) {
	torso := PartFromTransform(
		surface.Ellipsoid{A: 0.6, B: 0.8, C: 0.5},
		math.Transform{Rotation: math.Vec3{X: 0.1}, Scale: math.Vec3{X: 1, Y: 1, Z: 1}},
	)
	head := PartFromTransform(
		surface.Ellipsoid{A: 0.35, B: 0.35, C: 0.35},
		math.Transform{Position: math.Vec3{Y: 1.0, Z: 0.1}, Rotation: math.Vec3{Y: 0.4}, Scale: math.Vec3{X: 1, Y: 1.2, Z: 0.9}},
	)
	return torso, head
}

// onSurface reports how far the world point p is from the part's implicit
// surface.
func onSurface(t *testing.T, p Part, world math.Vec3) float32 {
	t.Helper()
	inv, ok := p.World.InverseOK()
	if !ok {
		t.Fatal("part transform is singular")
	}
	return math32.Abs(p.Shape.Implicit(inv.TransformPoint(world)) - 1)
}

func TestRingsLieOnBothSurfaces(t *testing.T) {
	torso, head := torsoAndHead()
	band, err := Synthesize(torso, head, Options{Segments: 24})
	if err != nil {
		t.Fatalf("Synthesize() = %v", err)
	}

	if len(band.RingA) != 25 || len(band.RingB) != 25 {
		t.Fatalf("ring sizes = %d, %d, want 25", len(band.RingA), len(band.RingB))
	}
	for k := range band.RingA {
		if d := onSurface(t, torso, band.RingA[k]); d > 1e-3 {
			t.Errorf("ring A[%d] = %v is %v off the torso surface", k, band.RingA[k], d)
		}
		if d := onSurface(t, head, band.RingB[k]); d > 1e-3 {
			t.Errorf("ring B[%d] = %v is %v off the head surface", k, band.RingB[k], d)
		}
		for _, p := range []math.Vec3{band.RingA[k], band.RingB[k]} {
			if off := math32.Abs(p.Sub(band.Origin).Dot(band.Axis)); off > 1e-4 {
				t.Errorf("ring point %v is %v off the seam plane", p, off)
			}
		}
	}

	// The ring closes on itself.
	if !band.RingA[0].ApproxEqual(band.RingA[24], 1e-4) {
		t.Errorf("ring A not closed: %v vs %v", band.RingA[0], band.RingA[24])
	}
}

func TestBandMesh(t *testing.T) {
	torso, head := torsoAndHead()
	const segments = 16
	const inflate = 0.01
	band, err := Synthesize(torso, head, Options{Segments: segments, Inflate: inflate})
	if err != nil {
		t.Fatalf("Synthesize() = %v", err)
	}

	m := band.Mesh
	if m.VertexCount() != 2*(segments+1) {
		t.Errorf("VertexCount() = %d, want %d", m.VertexCount(), 2*(segments+1))
	}
	if m.TriangleCount() != 2*segments {
		t.Errorf("TriangleCount() = %d, want %d", m.TriangleCount(), 2*segments)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	for k := 0; k <= segments; k++ {
		v := m.Vertices[k]
		if d := v.Position.Distance(band.RingA[k]); math32.Abs(d-inflate) > 1e-5 {
			t.Errorf("vertex %d inflated by %v, want %v", k, d, inflate)
		}
		if l := v.Normal.Length(); math32.Abs(l-1) > 1e-4 {
			t.Errorf("vertex %d normal length %v", k, l)
		}
		if math32.Abs(v.Normal.Dot(band.Axis)) > 1e-4 {
			t.Errorf("vertex %d normal %v not in the seam plane", k, v.Normal)
		}
	}
}

func TestMissReusesPreviousPoint(t *testing.T) {
	// A thin tilted bar above a sphere: the seam plane cuts the bar away from
	// the axis, so only some ring directions hit it.
	sphere := PartFromTransform(surface.Ellipsoid{A: 1, B: 1, C: 1}, math.IdentityTransform())
	bar := PartFromTransform(
		surface.Ellipsoid{A: 2, B: 0.2, C: 0.2},
		math.Transform{Position: math.Vec3{Y: 3}, Rotation: math.Vec3{Z: math32.Pi / 4}, Scale: math.Vec3{X: 1, Y: 1, Z: 1}},
	)

	band, err := Synthesize(sphere, bar, Options{Segments: 24})
	if err != nil {
		t.Fatalf("Synthesize() = %v", err)
	}

	hits := 0
	u, v := Basis(band.Axis)
	for k := range band.RingB {
		phi := 2 * math32.Pi * float32(k) / 24
		s := u.Scale(math32.Cos(phi)).Add(v.Scale(math32.Sin(phi))).Normalize()

		if _, ok := Intersect(bar, band.Origin, s); ok {
			hits++
			if d := onSurface(t, bar, band.RingB[k]); d > 1e-3 {
				t.Errorf("ring B[%d] hit is %v off the surface", k, d)
			}
			continue
		}
		want := band.Origin
		if k > 0 {
			want = band.RingB[k-1]
		}
		if band.RingB[k] != want {
			t.Errorf("ring B[%d] = %v after a miss, want %v", k, band.RingB[k], want)
		}
	}
	if hits == 0 || hits == len(band.RingB) {
		t.Fatalf("got %d hits of %d, want a partial miss", hits, len(band.RingB))
	}
	if band.RingB[0] != band.Origin {
		t.Errorf("first miss = %v, want seam origin %v", band.RingB[0], band.Origin)
	}
}

func TestDegeneratePartNeverFails(t *testing.T) {
	sphere := PartFromTransform(surface.Ellipsoid{A: 1, B: 1, C: 1}, math.IdentityTransform())
	flat := PartFromTransform(surface.Ellipsoid{A: 1, B: 0, C: 1}, math.Translation(0, 2, 0))
	collapsed := PartFromTransform(surface.Ellipsoid{A: 1, B: 1, C: 1},
		math.Transform{Position: math.Vec3{Y: 2}, Scale: math.Vec3{X: 1, Y: 0, Z: 1}})

	for _, b := range []Part{flat, collapsed} {
		band, err := Synthesize(sphere, b, Options{Segments: 8})
		if err != nil {
			t.Fatalf("Synthesize() = %v", err)
		}
		for k, p := range band.RingB {
			if p != band.Origin {
				t.Errorf("ring B[%d] = %v, want seam origin fallback", k, p)
			}
		}
		for _, vert := range band.Mesh.Vertices {
			if math32.IsNaN(vert.Position.X) || math32.IsNaN(vert.Position.Y) || math32.IsNaN(vert.Position.Z) {
				t.Fatal("NaN vertex in degenerate band")
			}
		}
	}
}

func TestCoincidentCenters(t *testing.T) {
	a := PartFromTransform(surface.Ellipsoid{A: 1, B: 1, C: 1}, math.IdentityTransform())
	band, err := Synthesize(a, a, Options{})
	if err != nil {
		t.Fatalf("Synthesize() = %v", err)
	}
	if band.Axis != math.UnitY {
		t.Errorf("Axis = %v, want +Y fallback", band.Axis)
	}
	if len(band.RingA) != DefaultSegments+1 {
		t.Errorf("default segments gave %d ring points", len(band.RingA))
	}
}

func TestInvalidSegments(t *testing.T) {
	a, b := torsoAndHead()
	if _, err := Synthesize(a, b, Options{Segments: 2}); !errors.Is(err, ErrInvalidSegments) {
		t.Errorf("Synthesize(2 segments) = %v, want ErrInvalidSegments", err)
	}
}

func TestBasis(t *testing.T) {
	for _, n := range []math.Vec3{
		math.UnitY,
		math.UnitY.Negate(),
		math.UnitX,
		{X: 0.3, Y: 0.9, Z: 0.1},
		{X: 0.01, Y: 1, Z: 0},
	} {
		n = n.Normalize()
		u, v := Basis(n)
		if math32.Abs(u.Length()-1) > 1e-5 || math32.Abs(v.Length()-1) > 1e-5 {
			t.Errorf("Basis(%v) not unit: %v %v", n, u, v)
		}
		if math32.Abs(u.Dot(n)) > 1e-5 || math32.Abs(v.Dot(n)) > 1e-5 || math32.Abs(u.Dot(v)) > 1e-5 {
			t.Errorf("Basis(%v) not orthogonal: %v %v", n, u, v)
		}
		if !u.Cross(v).ApproxEqual(n, 1e-5) {
			t.Errorf("Basis(%v): u x v = %v", n, u.Cross(v))
		}
	}
}

func TestIntersect(t *testing.T) {
	sphere := PartFromTransform(surface.Ellipsoid{A: 2, B: 2, C: 2}, math.Translation(1, 0, 0))

	tests := []struct {
		name   string
		origin math.Vec3
		dir    math.Vec3
		want   float32
		ok     bool
	}{
		{"from outside takes far side", math.Vec3{X: -5}, math.UnitX, 8, true},
		{"from inside takes forward root", math.Vec3{X: 1}, math.UnitY, 2, true},
		{"behind takes larger magnitude", math.Vec3{X: 5}, math.UnitX, -6, true},
		{"miss", math.Vec3{X: -5, Y: 3}, math.UnitX, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Intersect(sphere, tt.origin, tt.dir)
			if ok != tt.ok {
				t.Fatalf("Intersect() ok = %v, want %v", ok, tt.ok)
			}
			if ok && math32.Abs(got-tt.want) > 1e-4 {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Package effects holds per-frame animated meshes.
package effects

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

var ErrInvalidMist = errors.New("mist ring needs at least three segments and a positive radius")

// MistParams shapes the ring of drifting mist around a creature's feet.
type MistParams struct {
	Radius    float32   `yaml:"radius"`
	Width     float32   `yaml:"width"`
	Height    float32   `yaml:"height"`
	Segments  int       `yaml:"segments"`
	Amplitude float32   `yaml:"amplitude"`
	Speed     float32   `yaml:"speed"`
	Color     math.Vec3 `yaml:"color"`
	// Fade scales the outer rim color; 0 fades it to black.
	Fade float32 `yaml:"fade"`
}

// DefaultMistParams returns a pale, slowly rippling ring.
func DefaultMistParams() MistParams {
	return MistParams{
		Radius:    0.9,
		Width:     0.35,
		Height:    0.04,
		Segments:  48,
		Amplitude: 0.08,
		Speed:     1.2,
		Color:     math.Vec3{X: 0.75, Y: 0.82, Z: 0.9},
		Fade:      0.15,
	}
}

// Mist is a dynamic ring mesh whose vertices are rewritten by Update. Rows
// are the inner and outer rims; the ring faces +Y.
type Mist struct {
	params MistParams
	mesh   *mesh.Mesh
}

// NewMist builds the ring at t = 0.
func NewMist(p MistParams) (*Mist, error) {
	if p.Segments < 3 || p.Radius <= 0 {
		return nil, fmt.Errorf("mist radius %v, %d segments: %w", p.Radius, p.Segments, ErrInvalidMist)
	}
	m := mesh.New("mist", mesh.PosColor)
	m.Usage = mesh.Dynamic
	m.Vertices = make([]mesh.Vertex, 2*(p.Segments+1))
	m.AddGrid(0, 2, p.Segments+1, false)

	mist := &Mist{params: p, mesh: m}
	mist.Update(0)
	return mist, nil
}

// Mesh returns the dynamic mesh. Its vertex slice is rewritten in place.
func (m *Mist) Mesh() *mesh.Mesh {
	return m.mesh
}

// Update recomputes every vertex for time t in seconds.
func (m *Mist) Update(t float32) {
	p := m.params
	cols := p.Segments + 1
	phase := p.Speed * t
	outer := p.Color.Scale(p.Fade)

	for j := 0; j < cols; j++ {
		phi := 2 * math32.Pi * float32(j) / float32(p.Segments)
		c, s := math32.Cos(phi), math32.Sin(phi)

		rIn := p.Radius * (1 + p.Amplitude*math32.Sin(3*phi+phase))
		rOut := rIn + p.Width*(0.75+0.25*math32.Sin(2*phi-phase))
		y := p.Height * math32.Sin(2*phi+0.5*phase)

		m.mesh.Vertices[j] = mesh.Vertex{Position: math.Vec3{X: rIn * c, Y: y, Z: rIn * s}, Color: p.Color}
		m.mesh.Vertices[cols+j] = mesh.Vertex{Position: math.Vec3{X: rOut * c, Y: y, Z: rOut * s}, Color: outer}
	}
	m.mesh.RecomputeBounds()
}

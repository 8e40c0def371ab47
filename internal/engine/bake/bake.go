// Package bake is a CPU render adapter that flattens a scene graph into one
// world-space mesh, for export and for checking transform composition
// without a GPU.
package bake

import (
	"errors"
	"fmt"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/internal/engine/scenegraph"
	"github.com/Faultbox/sculpt/pkg/math"
)

var ErrUnknownHandle = errors.New("unknown mesh handle")

// Adapter implements scenegraph.Adapter and scenegraph.Updater. Each Draw
// appends the transformed mesh to Mesh().
type Adapter struct {
	// IncludeUnlit also bakes unlit draws (gizmos, effects), which are
	// skipped by default.
	IncludeUnlit bool

	meshes []*mesh.Mesh
	out    *mesh.Mesh
	draws  int
}

// New returns an adapter whose output mesh carries the given name.
func New(name string) *Adapter {
	return &Adapter{out: mesh.New(name, mesh.PosNormalColor)}
}

// Upload records m and returns its index as the handle.
func (a *Adapter) Upload(m *mesh.Mesh) (scenegraph.Handle, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	a.meshes = append(a.meshes, m)
	return scenegraph.Handle(len(a.meshes) - 1), nil
}

// Update swaps the mesh behind h.
func (a *Adapter) Update(h scenegraph.Handle, m *mesh.Mesh) error {
	if int(h) >= len(a.meshes) {
		return fmt.Errorf("update handle %d: %w", h, ErrUnknownHandle)
	}
	a.meshes[h] = m
	return nil
}

// Draw transforms positions by the world matrix and normals by the normal
// matrix. Mirroring transforms reverse the winding so triangles stay
// counter-clockwise around their normals.
func (a *Adapter) Draw(call scenegraph.DrawCall) error {
	if int(call.Handle) >= len(a.meshes) {
		return fmt.Errorf("draw handle %d: %w", call.Handle, ErrUnknownHandle)
	}
	if call.Material.Unlit && !a.IncludeUnlit {
		return nil
	}
	src := a.meshes[call.Handle]
	a.draws++

	base := uint32(a.out.VertexCount())
	for _, v := range src.Vertices {
		out := mesh.Vertex{
			Position: call.World.TransformPoint(v.Position),
			Color:    call.Material.Color,
		}
		if src.Layout.HasNormal() {
			out.Normal = call.Normal.MulVec3(v.Normal).Normalize()
		}
		if src.Layout.HasColor() && call.Material.UseVertexColor {
			out.Color = v.Color
		}
		a.out.AddVertex(out)
	}

	mirror := call.World.Upper3().Det() < 0
	for t := 0; t+2 < len(src.Indices); t += 3 {
		i0, i1, i2 := src.Indices[t], src.Indices[t+1], src.Indices[t+2]
		if mirror {
			i1, i2 = i2, i1
		}
		a.out.AddTriangle(base+i0, base+i1, base+i2)
	}
	return nil
}

// Mesh returns the accumulated world-space mesh.
func (a *Adapter) Mesh() *mesh.Mesh {
	return a.out
}

// Draws returns the number of draws baked since the last Reset.
func (a *Adapter) Draws() int {
	return a.draws
}

// Reset clears the output, keeping uploaded meshes.
func (a *Adapter) Reset() {
	a.out = mesh.New(a.out.Name, a.out.Layout)
	a.draws = 0
}

// Graph sets up g on a fresh adapter and bakes one frame rendered under world.
func Graph(g *scenegraph.Graph, name string, world math.Mat4) (*mesh.Mesh, error) {
	a := New(name)
	if err := g.Setup(a); err != nil {
		return nil, fmt.Errorf("bake setup: %w", err)
	}
	if err := g.Render(a, world); err != nil {
		return nil, fmt.Errorf("bake render: %w", err)
	}
	return a.Mesh(), nil
}

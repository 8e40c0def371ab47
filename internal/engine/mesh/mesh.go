package mesh

import (
	"fmt"

	"github.com/Faultbox/sculpt/pkg/math"
)

// Mesh is an indexed triangle mesh ready for upload. Once handed to the scene
// graph it is treated as immutable, except for Dynamic meshes whose owner
// rewrites vertex data between frames.
type Mesh struct {
	Name     string
	Layout   Layout
	Usage    Usage
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// New returns an empty static mesh with the given layout.
func New(name string, layout Layout) *Mesh {
	return &Mesh{
		Name:   name,
		Layout: layout,
		Bounds: EmptyBounds(),
	}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// AddVertex appends a vertex, grows the bounds and returns its index.
func (m *Mesh) AddVertex(v Vertex) uint32 {
	idx := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, v)
	m.Bounds.Extend(v.Position)
	return idx
}

// AddTriangle appends one triangle.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// AddGrid triangulates a row-major vertex grid of rows x cols vertices
// starting at base. Each quad (i,j)-(i,j+1)-(i+1,j)-(i+1,j+1) becomes
// (first,second,fourth) and (first,fourth,third); flip reverses both.
func (m *Mesh) AddGrid(base uint32, rows, cols int, flip bool) {
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			first := base + uint32(i*cols+j)
			second := first + 1
			third := first + uint32(cols)
			fourth := third + 1

			if flip {
				m.AddTriangle(first, fourth, second)
				m.AddTriangle(first, third, fourth)
			} else {
				m.AddTriangle(first, second, fourth)
				m.AddTriangle(first, fourth, third)
			}
		}
	}
}

// Validate checks the index buffer against the vertex buffer.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: %d indices: %w", m.Name, len(m.Indices), ErrIncompleteTriangle)
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %q: index %d at position %d (vertex count %d): %w",
				m.Name, idx, i, n, ErrIndexOutOfRange)
		}
	}
	return nil
}

// SetColor assigns a uniform vertex color and widens the layout to carry it.
func (m *Mesh) SetColor(c math.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Color = c
	}
	if m.Layout == PosNormal {
		m.Layout = PosNormalColor
	}
}

// RecomputeBounds rebuilds the bounding box from the vertices.
func (m *Mesh) RecomputeBounds() {
	m.Bounds = EmptyBounds()
	for i := range m.Vertices {
		m.Bounds.Extend(m.Vertices[i].Position)
	}
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = append([]Vertex(nil), m.Vertices...)
	c.Indices = append([]uint32(nil), m.Indices...)
	return &c
}

// Append merges other into m, offsetting its indices.
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Vertices))
	for _, v := range other.Vertices {
		m.AddVertex(v)
	}
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// Interleave packs the vertices into the flat float buffer described by the
// mesh layout.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, len(m.Vertices)*m.Layout.Floats())
	for _, v := range m.Vertices {
		out = append(out, v.Position.X, v.Position.Y, v.Position.Z)
		if m.Layout.HasNormal() {
			out = append(out, v.Normal.X, v.Normal.Y, v.Normal.Z)
		}
		if m.Layout.HasColor() {
			out = append(out, v.Color.X, v.Color.Y, v.Color.Z)
		}
	}
	return out
}

// Indices16 converts the index buffer to unsigned 16-bit integers.
// Meshes above MaxVertices must be split first (see SplitForUint16).
func (m *Mesh) Indices16() ([]uint16, error) {
	if len(m.Vertices) > MaxVertices {
		return nil, fmt.Errorf("mesh %q: %d vertices: %w", m.Name, len(m.Vertices), ErrTooManyVertices)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := make([]uint16, len(m.Indices))
	for i, idx := range m.Indices {
		out[i] = uint16(idx)
	}
	return out, nil
}

// SplitForUint16 splits the mesh into parts that each fit 16-bit indices.
func (m *Mesh) SplitForUint16() []*Mesh {
	return m.Split(MaxVertices)
}

// Split partitions the triangles into meshes of at most maxVertices vertices,
// duplicating vertices shared across a split boundary. A mesh that already
// fits is returned as is.
func (m *Mesh) Split(maxVertices int) []*Mesh {
	if len(m.Vertices) <= maxVertices || maxVertices < 3 {
		return []*Mesh{m}
	}

	var parts []*Mesh
	var cur *Mesh
	var remap map[uint32]uint32

	start := func() {
		cur = New(fmt.Sprintf("%s#%d", m.Name, len(parts)), m.Layout)
		cur.Usage = m.Usage
		remap = make(map[uint32]uint32)
		parts = append(parts, cur)
	}
	start()

	for t := 0; t+2 < len(m.Indices); t += 3 {
		tri := m.Indices[t : t+3]

		missing := 0
		for _, idx := range tri {
			if _, ok := remap[idx]; !ok {
				missing++
			}
		}
		if cur.VertexCount()+missing > maxVertices {
			start()
		}

		var out [3]uint32
		for k, idx := range tri {
			local, ok := remap[idx]
			if !ok {
				local = cur.AddVertex(m.Vertices[idx])
				remap[idx] = local
			}
			out[k] = local
		}
		cur.AddTriangle(out[0], out[1], out[2])
	}
	return parts
}

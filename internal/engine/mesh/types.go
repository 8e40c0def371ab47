// Package mesh holds the triangle mesh produced by every generator and the
// vertex layouts render adapters upload.
package mesh

import (
	"errors"

	"github.com/Faultbox/sculpt/pkg/math"
)

// MaxVertices is the largest vertex count addressable by 16-bit indices.
const MaxVertices = 65535

var (
	ErrIndexOutOfRange    = errors.New("index references a vertex out of range")
	ErrIncompleteTriangle = errors.New("index count is not a multiple of 3")
	ErrTooManyVertices    = errors.New("mesh exceeds the 16-bit index vertex limit")
)

// Layout declares which vertex attributes are meaningful and how they are
// interleaved in the uploaded float buffer.
type Layout int

const (
	// PosNormal interleaves position and normal (pos3, normal3).
	PosNormal Layout = iota
	// PosColor interleaves position and color (pos3, color3).
	PosColor
	// PosNormalColor interleaves all three (pos3, normal3, color3).
	PosNormalColor
)

// Attribute shader locations, fixed across layouts.
const (
	LocPosition uint32 = 0
	LocNormal   uint32 = 1
	LocColor    uint32 = 2
)

const floatSize = 4

// Attribute describes one interleaved vertex attribute.
type Attribute struct {
	Name     string
	Location uint32
	Size     int32 // float components
	Offset   int   // bytes from the start of the vertex
}

func (l Layout) String() string {
	switch l {
	case PosNormal:
		return "pos3+normal3"
	case PosColor:
		return "pos3+color3"
	case PosNormalColor:
		return "pos3+normal3+color3"
	default:
		return "unknown"
	}
}

// HasNormal reports whether the layout carries normals.
func (l Layout) HasNormal() bool {
	return l == PosNormal || l == PosNormalColor
}

// HasColor reports whether the layout carries vertex colors.
func (l Layout) HasColor() bool {
	return l == PosColor || l == PosNormalColor
}

// Floats returns the number of floats per vertex.
func (l Layout) Floats() int {
	if l == PosNormalColor {
		return 9
	}
	return 6
}

// Stride returns the vertex size in bytes.
func (l Layout) Stride() int {
	return l.Floats() * floatSize
}

// Attributes returns the attributes in buffer order with their byte offsets.
func (l Layout) Attributes() []Attribute {
	attrs := []Attribute{{Name: "position", Location: LocPosition, Size: 3, Offset: 0}}
	offset := 3 * floatSize
	if l.HasNormal() {
		attrs = append(attrs, Attribute{Name: "normal", Location: LocNormal, Size: 3, Offset: offset})
		offset += 3 * floatSize
	}
	if l.HasColor() {
		attrs = append(attrs, Attribute{Name: "color", Location: LocColor, Size: 3, Offset: offset})
	}
	return attrs
}

// Usage is the buffer update hint passed to render adapters.
type Usage int

const (
	// Static meshes are uploaded once and never rewritten.
	Static Usage = iota
	// Dynamic meshes rewrite their vertex buffer every frame.
	Dynamic
)

func (u Usage) String() string {
	if u == Dynamic {
		return "dynamic"
	}
	return "static"
}

// Vertex is one mesh vertex. Fields not covered by the mesh layout are ignored.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Color    math.Vec3
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3 `yaml:"min"`
	Max math.Vec3 `yaml:"max"`
}

// EmptyBounds returns bounds that any point will extend.
func EmptyBounds() Bounds {
	return Bounds{
		Min: math.Vec3{X: 1e10, Y: 1e10, Z: 1e10},
		Max: math.Vec3{X: -1e10, Y: -1e10, Z: -1e10},
	}
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p math.Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// Center returns the box center.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

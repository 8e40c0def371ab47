package scenegraph

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

type dumpMesh struct {
	Name      string      `yaml:"name"`
	Layout    string      `yaml:"layout"`
	Usage     string      `yaml:"usage"`
	Vertices  int         `yaml:"vertices"`
	Triangles int         `yaml:"triangles"`
	Bounds    mesh.Bounds `yaml:"bounds"`
}

type dumpNode struct {
	ID       NodeID          `yaml:"id"`
	Name     string          `yaml:"name"`
	Hidden   bool            `yaml:"hidden,omitempty"`
	Local    math.Transform  `yaml:"local"`
	Pose     *math.Transform `yaml:"pose,omitempty"`
	Origin   math.Vec3       `yaml:"world_origin"`
	Mesh     *dumpMesh       `yaml:"mesh,omitempty"`
	Children []*dumpNode     `yaml:"children,omitempty"`
}

// Dump writes the attached tree as YAML: names, transforms, world origins and
// mesh statistics.
func (g *Graph) Dump(w io.Writer) error {
	var roots []*dumpNode
	parents := map[NodeID]*dumpNode{}

	err := g.Walk(func(id NodeID, n *Node, world math.Mat4, _ int) error {
		d := &dumpNode{
			ID:     id,
			Name:   n.Name,
			Hidden: !n.Visible,
			Local:  n.Local,
			Origin: world.Origin(),
		}
		if n.Pose != math.IdentityTransform() {
			pose := n.Pose
			d.Pose = &pose
		}
		if n.Mesh != nil {
			d.Mesh = &dumpMesh{
				Name:      n.Mesh.Name,
				Layout:    n.Mesh.Layout.String(),
				Usage:     n.Mesh.Usage.String(),
				Vertices:  n.Mesh.VertexCount(),
				Triangles: n.Mesh.TriangleCount(),
				Bounds:    n.Mesh.Bounds,
			}
		}
		parents[id] = d
		if p, ok := parents[n.parent]; ok {
			p.Children = append(p.Children, d)
		} else {
			roots = append(roots, d)
		}
		return nil
	})
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"nodes": len(g.nodes), "roots": roots}); err != nil {
		return fmt.Errorf("encode scene graph: %w", err)
	}
	return enc.Close()
}

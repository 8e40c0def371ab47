// Package scenegraph composes world transforms over an arena of nodes and
// submits meshes to a render adapter.
//
// For every node world = parentWorld · local · pose. Local is set when the
// scene is built; Pose is rewritten each frame by exactly one animation
// driver. Meshes are shared read-only and uploaded once by Setup.
package scenegraph

import (
	"errors"
	"fmt"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

var (
	ErrUnknownNode = errors.New("unknown scene node")
	ErrCycle       = errors.New("reparenting would create a cycle")
	ErrNotUploaded = errors.New("mesh not uploaded")
	ErrAdapter     = errors.New("adapter must be a non-nil comparable value")
)

// NodeID addresses a node in the graph arena.
type NodeID int

// None is the parent of root nodes.
const None NodeID = -1

// Material holds the per-draw uniforms of a node.
type Material struct {
	Color          math.Vec3 `yaml:"color"`
	Shininess      float32   `yaml:"shininess"`
	UseVertexColor bool      `yaml:"use_vertex_color"`
	Unlit          bool      `yaml:"unlit"`
	DoubleSided    bool      `yaml:"double_sided"`
}

// DefaultMaterial is a neutral lit grey.
func DefaultMaterial() Material {
	return Material{Color: math.Vec3{X: 0.8, Y: 0.8, Z: 0.8}, Shininess: 16}
}

// Node is one arena entry.
type Node struct {
	Name     string
	Local    math.Transform
	Pose     math.Transform
	Mesh     *mesh.Mesh
	Material Material
	Visible  bool

	parent   NodeID
	children []NodeID
}

// Parent returns the node's parent, or None for roots and detached nodes.
func (n *Node) Parent() NodeID {
	return n.parent
}

// Graph is an arena of nodes forming a forest. Nodes are never freed;
// detached subtrees stay addressable and can be reattached.
type Graph struct {
	nodes []*Node
	roots []NodeID

	// Uploads belong to the adapter Setup last ran on.
	bound   Adapter
	handles map[*mesh.Mesh]Handle
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{handles: make(map[*mesh.Mesh]Handle)}
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) add(name string, local math.Transform, parent NodeID) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{
		Name:     name,
		Local:    local,
		Pose:     math.IdentityTransform(),
		Material: DefaultMaterial(),
		Visible:  true,
		parent:   parent,
	})
	return id
}

// AddRoot adds a top-level node. A root without a mesh is a group that only
// carries a shared transform.
func (g *Graph) AddRoot(name string, local math.Transform) NodeID {
	id := g.add(name, local, None)
	g.roots = append(g.roots, id)
	return id
}

// AddChild appends a node to parent's child list.
func (g *Graph) AddChild(parent NodeID, name string, local math.Transform) (NodeID, error) {
	p, err := g.Node(parent)
	if err != nil {
		return None, err
	}
	id := g.add(name, local, parent)
	p.children = append(p.children, id)
	return id, nil
}

// Node returns the node for id.
func (g *Graph) Node(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	return g.nodes[id], nil
}

// Find returns the first node with the given name in arena order.
func (g *Graph) Find(name string) (NodeID, bool) {
	for i, n := range g.nodes {
		if n.Name == name {
			return NodeID(i), true
		}
	}
	return None, false
}

// Roots returns the root IDs in insertion order.
func (g *Graph) Roots() []NodeID {
	return append([]NodeID(nil), g.roots...)
}

// Children returns the child IDs of id in insertion order.
func (g *Graph) Children(id NodeID) ([]NodeID, error) {
	n, err := g.Node(id)
	if err != nil {
		return nil, err
	}
	return append([]NodeID(nil), n.children...), nil
}

// SetLocal replaces the node's local transform.
func (g *Graph) SetLocal(id NodeID, t math.Transform) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	n.Local = t
	return nil
}

// SetPose replaces the node's pose transform.
func (g *Graph) SetPose(id NodeID, t math.Transform) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	n.Pose = t
	return nil
}

// SetMesh attaches a mesh and material. A new mesh must go through Setup
// again before Render.
func (g *Graph) SetMesh(id NodeID, m *mesh.Mesh, mat Material) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	n.Mesh = m
	n.Material = mat
	return nil
}

// SetVisible shows or hides a node and its subtree.
func (g *Graph) SetVisible(id NodeID, visible bool) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	n.Visible = visible
	return nil
}

// Detach unlinks id from its parent (or the root list). The subtree stays in
// the arena but is no longer set up or rendered.
func (g *Graph) Detach(id NodeID) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	if n.parent == None {
		g.roots = remove(g.roots, id)
	} else {
		p := g.nodes[n.parent]
		p.children = remove(p.children, id)
	}
	n.parent = None
	return nil
}

// Reparent moves id under newParent, appending it to the child list. Passing
// None makes it a root.
func (g *Graph) Reparent(id, newParent NodeID) error {
	if _, err := g.Node(id); err != nil {
		return err
	}
	if newParent != None {
		if _, err := g.Node(newParent); err != nil {
			return err
		}
		for a := newParent; a != None; a = g.nodes[a].parent {
			if a == id {
				return fmt.Errorf("node %d under %d: %w", id, newParent, ErrCycle)
			}
		}
	}

	if err := g.Detach(id); err != nil {
		return err
	}
	g.nodes[id].parent = newParent
	if newParent == None {
		g.roots = append(g.roots, id)
	} else {
		p := g.nodes[newParent]
		p.children = append(p.children, id)
	}
	return nil
}

// LocalMatrix returns local · pose for one node.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Local.Matrix(), n.Pose.Matrix())
}

// WorldMatrix composes the transforms from the node's root down to id.
func (g *Graph) WorldMatrix(id NodeID) (math.Mat4, error) {
	n, err := g.Node(id)
	if err != nil {
		return math.Identity(), err
	}
	world := n.LocalMatrix()
	for p := n.parent; p != None; p = g.nodes[p].parent {
		world = math.Compose(g.nodes[p].LocalMatrix(), world)
	}
	return world, nil
}

// WalkFunc is called for each node with its composed world matrix.
type WalkFunc func(id NodeID, n *Node, world math.Mat4, depth int) error

// Walk visits every attached node depth first, parents before children and
// siblings in insertion order. Hidden subtrees are visited too.
func (g *Graph) Walk(fn WalkFunc) error {
	for _, r := range g.roots {
		if err := g.walk(r, math.Identity(), 0, false, fn); err != nil {
			return err
		}
	}
	return nil
}

// WalkVisible is Walk restricted to nodes whose whole ancestry is visible,
// which is the set Render draws.
func (g *Graph) WalkVisible(fn WalkFunc) error {
	for _, r := range g.roots {
		if err := g.walk(r, math.Identity(), 0, true, fn); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) walk(id NodeID, parentWorld math.Mat4, depth int, visibleOnly bool, fn WalkFunc) error {
	n := g.nodes[id]
	if visibleOnly && !n.Visible {
		return nil
	}
	world := math.Compose(parentWorld, n.LocalMatrix())
	if err := fn(id, n, world, depth); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := g.walk(c, world, depth+1, visibleOnly, fn); err != nil {
			return err
		}
	}
	return nil
}

func remove(ids []NodeID, id NodeID) []NodeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

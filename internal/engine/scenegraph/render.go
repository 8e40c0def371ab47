package scenegraph

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/internal/logger"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Handle identifies an uploaded mesh inside a render adapter.
type Handle uint32

// DrawCall is one mesh submission.
type DrawCall struct {
	Node     NodeID
	Handle   Handle
	World    math.Mat4
	Normal   math.Mat3
	Material Material
}

// Adapter uploads meshes and issues draws. Implementations own all GPU (or
// other backend) state; the graph never initializes it lazily. Adapters are
// compared by identity: Setup rejects values whose type is not comparable,
// so implementations should be pointer types.
type Adapter interface {
	Upload(m *mesh.Mesh) (Handle, error)
	Draw(call DrawCall) error
}

// Updater is implemented by adapters that can rewrite an uploaded dynamic
// mesh in place.
type Updater interface {
	Update(h Handle, m *mesh.Mesh) error
}

// Setup uploads every attached mesh, parents before children. A mesh shared
// by several nodes, or already uploaded by an earlier Setup on the same
// adapter, is uploaded once. Switching adapters discards the old handles.
func (g *Graph) Setup(a Adapter) error {
	if a == nil || !reflect.TypeOf(a).Comparable() {
		return fmt.Errorf("setup with %T: %w", a, ErrAdapter)
	}
	if g.bound != a {
		g.bound = a
		g.handles = make(map[*mesh.Mesh]Handle)
	}
	uploaded := 0
	for _, r := range g.roots {
		err := g.walk(r, math.Identity(), 0, false, func(id NodeID, n *Node, _ math.Mat4, _ int) error {
			if n.Mesh == nil {
				return nil
			}
			if _, ok := g.handles[n.Mesh]; ok {
				return nil
			}
			h, err := a.Upload(n.Mesh)
			if err != nil {
				return fmt.Errorf("upload %q for node %q: %w", n.Mesh.Name, n.Name, err)
			}
			g.handles[n.Mesh] = h
			uploaded++
			logger.L().Debug("mesh uploaded",
				zap.String("node", n.Name),
				zap.String("mesh", n.Mesh.Name),
				zap.Int("vertices", n.Mesh.VertexCount()),
				zap.Int("triangles", n.Mesh.TriangleCount()),
				zap.Stringer("usage", n.Mesh.Usage))
			return nil
		})
		if err != nil {
			return err
		}
	}
	logger.L().Info("scene graph set up", zap.Int("nodes", len(g.nodes)), zap.Int("uploads", uploaded))
	return nil
}

// HandleOf returns the upload handle of m.
func (g *Graph) HandleOf(m *mesh.Mesh) (Handle, bool) {
	h, ok := g.handles[m]
	return h, ok
}

// Render draws every visible node with world = parentWorld · local · pose and
// the matching normal matrix. Children follow their parent in insertion order.
func (g *Graph) Render(a Adapter, parentWorld math.Mat4) error {
	if g.bound != a {
		return fmt.Errorf("render on an adapter that was not set up: %w", ErrNotUploaded)
	}
	for _, r := range g.roots {
		if err := g.walk(r, parentWorld, 0, true, func(id NodeID, n *Node, world math.Mat4, _ int) error {
			if n.Mesh == nil {
				return nil
			}
			h, ok := g.handles[n.Mesh]
			if !ok {
				return fmt.Errorf("node %q mesh %q: %w", n.Name, n.Mesh.Name, ErrNotUploaded)
			}
			return a.Draw(DrawCall{
				Node:     id,
				Handle:   h,
				World:    world,
				Normal:   math.NormalMatrix(world),
				Material: n.Material,
			})
		}); err != nil {
			return err
		}
	}
	return nil
}

// SyncDynamic pushes the current vertex data of every dynamic mesh to the
// adapter. Adapters without Updater get a fresh upload.
func (g *Graph) SyncDynamic(a Adapter) error {
	if g.bound != a {
		return fmt.Errorf("sync on an adapter that was not set up: %w", ErrNotUploaded)
	}
	for m, h := range g.handles {
		if m.Usage != mesh.Dynamic {
			continue
		}
		if u, ok := a.(Updater); ok {
			if err := u.Update(h, m); err != nil {
				return fmt.Errorf("update %q: %w", m.Name, err)
			}
			continue
		}
		nh, err := a.Upload(m)
		if err != nil {
			return fmt.Errorf("re-upload %q: %w", m.Name, err)
		}
		g.handles[m] = nh
	}
	return nil
}

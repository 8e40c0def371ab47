package scenegraph

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/pkg/math"
)

// recorder is an Adapter and Updater that remembers every call.
type recorder struct {
	uploads []*mesh.Mesh
	draws   []DrawCall
	updates []Handle
}

func (r *recorder) Upload(m *mesh.Mesh) (Handle, error) {
	r.uploads = append(r.uploads, m)
	return Handle(len(r.uploads) - 1), nil
}

func (r *recorder) Draw(call DrawCall) error {
	r.draws = append(r.draws, call)
	return nil
}

func (r *recorder) Update(h Handle, _ *mesh.Mesh) error {
	r.updates = append(r.updates, h)
	return nil
}

// uploadOnly lacks Update, so dynamic meshes are re-uploaded.
type uploadOnly struct {
	uploads int
}

func (u *uploadOnly) Upload(*mesh.Mesh) (Handle, error) {
	u.uploads++
	return Handle(u.uploads), nil
}

func (u *uploadOnly) Draw(DrawCall) error { return nil }

// valueAdapter is a non-pointer adapter whose type cannot be compared.
type valueAdapter struct {
	calls []string
}

func (v valueAdapter) Upload(*mesh.Mesh) (Handle, error) { return 0, nil }

func (v valueAdapter) Draw(DrawCall) error { return nil }

func triangle(name string) *mesh.Mesh {
	m := mesh.New(name, mesh.PosNormal)
	m.AddVertex(mesh.Vertex{Position: math.Vec3{}, Normal: math.UnitZ})
	m.AddVertex(mesh.Vertex{Position: math.Vec3{X: 1}, Normal: math.UnitZ})
	m.AddVertex(mesh.Vertex{Position: math.Vec3{Y: 1}, Normal: math.UnitZ})
	m.AddTriangle(0, 1, 2)
	return m
}

// chain builds root -> A -> B with the translations from the composition scenario.
func chain(t *testing.T) (*Graph, NodeID, NodeID, NodeID) {
	t.Helper()
	g := New()
	root := g.AddRoot("root", math.Translation(0, 0, 0))
	a, err := g.AddChild(root, "A", math.Translation(1, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.AddChild(a, "B", math.Translation(0, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	return g, root, a, b
}

func TestWorldComposition(t *testing.T) {
	g, _, _, b := chain(t)

	world, err := g.WorldMatrix(b)
	if err != nil {
		t.Fatalf("WorldMatrix() = %v", err)
	}
	want := math.Vec3{X: 1, Y: 1, Z: 0}
	if !world.Origin().ApproxEqual(want, 1e-6) {
		t.Errorf("B world origin = %v, want %v", world.Origin(), want)
	}

	// Render agrees with WorldMatrix.
	if err := g.SetMesh(b, triangle("tri"), DefaultMaterial()); err != nil {
		t.Fatal(err)
	}
	r := &recorder{}
	if err := g.Setup(r); err != nil {
		t.Fatalf("Setup() = %v", err)
	}
	if err := g.Render(r, math.Identity()); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if len(r.draws) != 1 {
		t.Fatalf("got %d draws, want 1", len(r.draws))
	}
	if !r.draws[0].World.Origin().ApproxEqual(want, 1e-6) {
		t.Errorf("drawn origin = %v, want %v", r.draws[0].World.Origin(), want)
	}
}

func TestLocalThenPose(t *testing.T) {
	g := New()
	local := math.Translation(1, 0, 0)
	n := g.AddRoot("n", local)
	pose := math.Transform{Rotation: math.Vec3{Y: math32.Pi / 2}, Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
	if err := g.SetPose(n, pose); err != nil {
		t.Fatal(err)
	}

	got, err := g.WorldMatrix(n)
	if err != nil {
		t.Fatal(err)
	}
	want := local.Matrix().Mul(pose.Matrix())
	if !got.ApproxEqual(want, 1e-6) {
		t.Errorf("world = %v, want local · pose = %v", got, want)
	}

	parent := math.Translate(0, 5, 0)
	r := &recorder{}
	if err := g.SetMesh(n, triangle("tri"), DefaultMaterial()); err != nil {
		t.Fatal(err)
	}
	if err := g.Setup(r); err != nil {
		t.Fatal(err)
	}
	if err := g.Render(r, parent); err != nil {
		t.Fatal(err)
	}
	if !r.draws[0].World.ApproxEqual(parent.Mul(want), 1e-6) {
		t.Errorf("drawn world = %v, want parent · local · pose", r.draws[0].World)
	}
}

func TestSetupUploadsOnce(t *testing.T) {
	g, root, a, b := chain(t)
	shared := triangle("shared")
	other := triangle("other")
	for _, id := range []NodeID{a, b} {
		if err := g.SetMesh(id, shared, DefaultMaterial()); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.SetMesh(root, other, DefaultMaterial()); err != nil {
		t.Fatal(err)
	}

	r := &recorder{}
	for i := 0; i < 2; i++ {
		if err := g.Setup(r); err != nil {
			t.Fatalf("Setup() = %v", err)
		}
	}
	if len(r.uploads) != 2 {
		t.Fatalf("got %d uploads, want 2", len(r.uploads))
	}
	if r.uploads[0] != other || r.uploads[1] != shared {
		t.Error("parent mesh should upload before child meshes")
	}

	if err := g.Render(r, math.Identity()); err != nil {
		t.Fatal(err)
	}
	if len(r.draws) != 3 || r.draws[1].Handle != r.draws[2].Handle {
		t.Errorf("shared mesh should draw twice with one handle: %+v", r.draws)
	}
}

func TestRenderOrder(t *testing.T) {
	g := New()
	root := g.AddRoot("root", math.IdentityTransform())
	ids := map[string]NodeID{"root": root}
	for _, n := range []struct{ name, parent string }{
		{"torso", "root"},
		{"leg.l", "torso"},
		{"leg.r", "torso"},
		{"foot.l", "leg.l"},
		{"tail", "root"},
	} {
		id, err := g.AddChild(ids[n.parent], n.name, math.IdentityTransform())
		if err != nil {
			t.Fatal(err)
		}
		ids[n.name] = id
	}
	second := g.AddRoot("mist", math.IdentityTransform())
	ids["mist"] = second

	m := triangle("tri")
	for _, id := range ids {
		if err := g.SetMesh(id, m, DefaultMaterial()); err != nil {
			t.Fatal(err)
		}
	}

	r := &recorder{}
	if err := g.Setup(r); err != nil {
		t.Fatal(err)
	}
	if err := g.Render(r, math.Identity()); err != nil {
		t.Fatal(err)
	}

	want := []string{"root", "torso", "leg.l", "foot.l", "leg.r", "tail", "mist"}
	if len(r.draws) != len(want) {
		t.Fatalf("got %d draws, want %d", len(r.draws), len(want))
	}
	for i, name := range want {
		if r.draws[i].Node != ids[name] {
			n, _ := g.Node(r.draws[i].Node)
			t.Errorf("draw %d = %s, want %s", i, n.Name, name)
		}
	}
}

func TestRenderRequiresSetup(t *testing.T) {
	g, _, a, _ := chain(t)
	if err := g.SetMesh(a, triangle("first"), DefaultMaterial()); err != nil {
		t.Fatal(err)
	}

	r := &recorder{}
	if err := g.Render(r, math.Identity()); !errors.Is(err, ErrNotUploaded) {
		t.Errorf("Render() before Setup = %v, want ErrNotUploaded", err)
	}

	if err := g.Setup(r); err != nil {
		t.Fatal(err)
	}
	if err := g.Render(&recorder{}, math.Identity()); !errors.Is(err, ErrNotUploaded) {
		t.Errorf("Render() on another adapter = %v, want ErrNotUploaded", err)
	}

	// A rebuilt mesh is not uploaded until the next Setup.
	if err := g.SetMesh(a, triangle("rebuilt"), DefaultMaterial()); err != nil {
		t.Fatal(err)
	}
	err := g.Render(r, math.Identity())
	if !errors.Is(err, ErrNotUploaded) || !strings.Contains(err.Error(), "rebuilt") {
		t.Errorf("Render() with new mesh = %v, want ErrNotUploaded naming the mesh", err)
	}
	if err := g.Setup(r); err != nil {
		t.Fatal(err)
	}
	if err := g.Render(r, math.Identity()); err != nil {
		t.Errorf("Render() after re-Setup = %v", err)
	}
}

func TestSetupRejectsIncomparableAdapter(t *testing.T) {
	g, _, a, _ := chain(t)
	if err := g.SetMesh(a, triangle("first"), DefaultMaterial()); err != nil {
		t.Fatal(err)
	}

	if err := g.Setup(valueAdapter{}); !errors.Is(err, ErrAdapter) {
		t.Errorf("Setup(value adapter) = %v, want ErrAdapter", err)
	}
	if err := g.Setup(nil); !errors.Is(err, ErrAdapter) {
		t.Errorf("Setup(nil) = %v, want ErrAdapter", err)
	}

	// Once a pointer adapter is bound, a value adapter is refused without
	// panicking.
	r := &recorder{}
	if err := g.Setup(r); err != nil {
		t.Fatal(err)
	}
	if err := g.Render(valueAdapter{}, math.Identity()); !errors.Is(err, ErrNotUploaded) {
		t.Errorf("Render(value adapter) = %v, want ErrNotUploaded", err)
	}
	if err := g.SyncDynamic(valueAdapter{}); !errors.Is(err, ErrNotUploaded) {
		t.Errorf("SyncDynamic(value adapter) = %v, want ErrNotUploaded", err)
	}
	if err := g.Render(r, math.Identity()); err != nil {
		t.Errorf("Render() on the bound adapter = %v", err)
	}
}

func TestNormalMatrixInDrawCall(t *testing.T) {
	g := New()
	n := g.AddRoot("squashed", math.Transform{Scale: math.Vec3{X: 2, Y: 0.5, Z: 1}})
	if err := g.SetMesh(n, triangle("tri"), DefaultMaterial()); err != nil {
		t.Fatal(err)
	}
	r := &recorder{}
	if err := g.Setup(r); err != nil {
		t.Fatal(err)
	}
	if err := g.Render(r, math.Identity()); err != nil {
		t.Fatal(err)
	}
	call := r.draws[0]
	if call.Normal != math.NormalMatrix(call.World) {
		t.Errorf("Normal = %v, want NormalMatrix(World)", call.Normal)
	}
	if got := call.Normal.MulVec3(math.UnitX); math32.Abs(got.X-0.5) > 1e-6 {
		t.Errorf("normal matrix X scale = %v, want 0.5", got.X)
	}
}

func TestHiddenSubtree(t *testing.T) {
	g, root, a, b := chain(t)
	for _, id := range []NodeID{root, a, b} {
		if err := g.SetMesh(id, triangle("tri"), DefaultMaterial()); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.SetVisible(a, false); err != nil {
		t.Fatal(err)
	}

	r := &recorder{}
	if err := g.Setup(r); err != nil {
		t.Fatal(err)
	}
	if len(r.uploads) != 3 {
		t.Errorf("hidden nodes should still upload, got %d uploads", len(r.uploads))
	}
	if err := g.Render(r, math.Identity()); err != nil {
		t.Fatal(err)
	}
	if len(r.draws) != 1 || r.draws[0].Node != root {
		t.Errorf("draws = %+v, want only root", r.draws)
	}

	var all, visible []NodeID
	_ = g.Walk(func(id NodeID, _ *Node, _ math.Mat4, _ int) error {
		all = append(all, id)
		return nil
	})
	_ = g.WalkVisible(func(id NodeID, _ *Node, _ math.Mat4, _ int) error {
		visible = append(visible, id)
		return nil
	})
	if len(all) != 3 || len(visible) != 1 || visible[0] != root {
		t.Errorf("Walk = %v, WalkVisible = %v", all, visible)
	}
}

func TestReparentAndDetach(t *testing.T) {
	g, root, a, b := chain(t)

	if err := g.Reparent(root, b); !errors.Is(err, ErrCycle) {
		t.Errorf("Reparent(root under B) = %v, want ErrCycle", err)
	}
	if err := g.Reparent(a, a); !errors.Is(err, ErrCycle) {
		t.Errorf("Reparent(A under A) = %v, want ErrCycle", err)
	}

	if err := g.Reparent(b, root); err != nil {
		t.Fatalf("Reparent(B under root) = %v", err)
	}
	children, _ := g.Children(root)
	if len(children) != 2 || children[0] != a || children[1] != b {
		t.Errorf("root children = %v, want [%d %d]", children, a, b)
	}
	if rest, _ := g.Children(a); len(rest) != 0 {
		t.Errorf("A children = %v, want none", rest)
	}
	world, _ := g.WorldMatrix(b)
	if !world.Origin().ApproxEqual(math.Vec3{Y: 1}, 1e-6) {
		t.Errorf("B origin after reparent = %v, want (0,1,0)", world.Origin())
	}

	if err := g.Detach(a); err != nil {
		t.Fatal(err)
	}
	visited := 0
	if err := g.Walk(func(NodeID, *Node, math.Mat4, int) error { visited++; return nil }); err != nil {
		t.Fatal(err)
	}
	if visited != 2 {
		t.Errorf("walked %d nodes after detach, want 2", visited)
	}

	if err := g.Reparent(a, None); err != nil {
		t.Fatal(err)
	}
	if roots := g.Roots(); len(roots) != 2 || roots[1] != a {
		t.Errorf("roots = %v, want A appended", roots)
	}
}

func TestUnknownNode(t *testing.T) {
	g := New()
	if _, err := g.AddChild(3, "orphan", math.IdentityTransform()); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("AddChild(3) = %v, want ErrUnknownNode", err)
	}
	if err := g.SetPose(None, math.IdentityTransform()); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("SetPose(None) = %v, want ErrUnknownNode", err)
	}
	if _, err := g.WorldMatrix(0); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("WorldMatrix(0) = %v, want ErrUnknownNode", err)
	}
	if err := g.SetMesh(2, triangle("lost"), DefaultMaterial()); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("SetMesh(2) = %v, want ErrUnknownNode", err)
	}
	if err := g.SetVisible(None, false); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("SetVisible(None) = %v, want ErrUnknownNode", err)
	}
	if _, ok := g.Find("nothing"); ok {
		t.Error("Find() on empty graph succeeded")
	}
}

func TestSyncDynamic(t *testing.T) {
	g := New()
	static := g.AddRoot("static", math.IdentityTransform())
	dynamic := g.AddRoot("dynamic", math.IdentityTransform())

	dm := triangle("mist")
	dm.Usage = mesh.Dynamic
	if err := g.SetMesh(static, triangle("body"), DefaultMaterial()); err != nil {
		t.Fatal(err)
	}
	if err := g.SetMesh(dynamic, dm, DefaultMaterial()); err != nil {
		t.Fatal(err)
	}

	r := &recorder{}
	if err := g.Setup(r); err != nil {
		t.Fatal(err)
	}
	if err := g.SyncDynamic(r); err != nil {
		t.Fatal(err)
	}
	h, _ := g.HandleOf(dm)
	if len(r.updates) != 1 || r.updates[0] != h {
		t.Errorf("updates = %v, want one update of handle %d", r.updates, h)
	}

	plain := &uploadOnly{}
	if err := g.Setup(plain); err != nil {
		t.Fatal(err)
	}
	if err := g.SyncDynamic(plain); err != nil {
		t.Fatal(err)
	}
	if plain.uploads != 3 {
		t.Errorf("uploads = %d, want 2 from Setup and 1 re-upload", plain.uploads)
	}
	if nh, _ := g.HandleOf(dm); nh != 3 {
		t.Errorf("re-uploaded handle = %d, want 3", nh)
	}
}

func TestDump(t *testing.T) {
	g, _, _, b := chain(t)
	if err := g.SetMesh(b, triangle("tri"), DefaultMaterial()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := g.Dump(&buf); err != nil {
		t.Fatalf("Dump() = %v", err)
	}

	var doc struct {
		Nodes int `yaml:"nodes"`
		Roots []struct {
			Name     string `yaml:"name"`
			Children []struct {
				Name     string `yaml:"name"`
				Children []struct {
					Name   string    `yaml:"name"`
					Origin math.Vec3 `yaml:"world_origin"`
					Mesh   struct {
						Triangles int `yaml:"triangles"`
					} `yaml:"mesh"`
				} `yaml:"children"`
			} `yaml:"children"`
		} `yaml:"roots"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("dump is not YAML: %v\n%s", err, buf.String())
	}
	if doc.Nodes != 3 || len(doc.Roots) != 1 {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
	bNode := doc.Roots[0].Children[0].Children[0]
	if bNode.Name != "B" || bNode.Mesh.Triangles != 1 {
		t.Errorf("B entry = %+v", bNode)
	}
	if !bNode.Origin.ApproxEqual(math.Vec3{X: 1, Y: 1}, 1e-6) {
		t.Errorf("B world_origin = %v, want (1,1,0)", bNode.Origin)
	}
}

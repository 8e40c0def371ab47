package creature

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/sculpt/internal/engine/blend"
	"github.com/Faultbox/sculpt/internal/engine/debug"
	"github.com/Faultbox/sculpt/internal/engine/effects"
	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/internal/engine/scenegraph"
	"github.com/Faultbox/sculpt/internal/logger"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Nodes names the scene nodes of a rig. Groups carry no mesh.
type Nodes struct {
	Root      scenegraph.NodeID
	Torso     scenegraph.NodeID
	Neck      scenegraph.NodeID // group
	Head      scenegraph.NodeID
	Chin      scenegraph.NodeID
	EyeL      scenegraph.NodeID
	EyeR      scenegraph.NodeID
	NeckBlend scenegraph.NodeID
	HipL      scenegraph.NodeID // group
	HipR      scenegraph.NodeID // group
	LegL      scenegraph.NodeID
	LegR      scenegraph.NodeID
	ShoulderL scenegraph.NodeID // group
	ShoulderR scenegraph.NodeID // group
	ArmL      scenegraph.NodeID
	ArmR      scenegraph.NodeID
	TailBase  scenegraph.NodeID // group
	Tail      scenegraph.NodeID
	Fin       scenegraph.NodeID
	Mist      scenegraph.NodeID
	Gizmo     scenegraph.NodeID
}

// Rig is a built creature. Animate is the only writer of pose transforms.
type Rig struct {
	Graph  *scenegraph.Graph
	Nodes  Nodes
	Params Params

	band *mesh.Mesh
	mist *effects.Mist
}

// Build generates every part and assembles the scene graph. The neck blend
// band is synthesized from the rest pose and kept as a dynamic mesh that
// Animate re-synthesizes.
func Build(p Params) (*Rig, error) {
	log := logger.Named("creature")

	torso, err := p.Torso.Generate()
	if err != nil {
		return nil, fmt.Errorf("torso: %w", err)
	}
	head, err := p.Head.Generate()
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	chin, err := p.Chin.Generate()
	if err != nil {
		return nil, fmt.Errorf("chin: %w", err)
	}
	eye, err := p.Eye.Generate()
	if err != nil {
		return nil, fmt.Errorf("eye: %w", err)
	}
	leg, err := p.Leg.Generate()
	if err != nil {
		return nil, fmt.Errorf("leg: %w", err)
	}
	arm, err := p.Arm.Generate()
	if err != nil {
		return nil, fmt.Errorf("arm: %w", err)
	}
	tail, err := p.Tail.Generate()
	if err != nil {
		return nil, fmt.Errorf("tail: %w", err)
	}
	fin, err := p.Fin.Generate()
	if err != nil {
		return nil, fmt.Errorf("fin: %w", err)
	}
	mist, err := effects.NewMist(p.Mist)
	if err != nil {
		return nil, fmt.Errorf("mist: %w", err)
	}

	r := &Rig{Graph: scenegraph.New(), Params: p, mist: mist}
	g := r.Graph
	n := &r.Nodes
	pl := p.Placement

	lit := func(c math.Vec3) scenegraph.Material {
		return scenegraph.Material{Color: c, Shininess: p.Colors.Shininess}
	}
	// Every AddChild below targets a node created just before it, so the
	// only possible error is a programming mistake; attach collects it.
	var buildErr error
	attach := func(parent scenegraph.NodeID, name string, local math.Transform, m *mesh.Mesh, mat scenegraph.Material) scenegraph.NodeID {
		if buildErr != nil {
			return scenegraph.None
		}
		id, err := g.AddChild(parent, name, local)
		if err != nil {
			buildErr = err
			return scenegraph.None
		}
		if m != nil {
			buildErr = g.SetMesh(id, m, mat)
		}
		return id
	}

	n.Root = g.AddRoot("creature", math.IdentityTransform())
	n.Torso = attach(n.Root, "torso", at(math.Vec3{Y: pl.TorsoHeight}), torso, lit(p.Colors.Skin))

	n.Neck = attach(n.Torso, "neck", at(pl.Neck), nil, scenegraph.Material{})
	n.Head = attach(n.Neck, "head", at(pl.Head), head, lit(p.Colors.Head))
	n.Chin = attach(n.Head, "chin", at(pl.Chin), chin, lit(p.Colors.Chin))
	n.EyeL = attach(n.Head, "eye_l", at(mirrorX(pl.Eye)), eye, lit(p.Colors.Eye))
	n.EyeR = attach(n.Head, "eye_r", at(pl.Eye), eye, lit(p.Colors.Eye))

	// Hips pivot at the top rim of the leg.
	top := p.Leg.UMax
	legDrop := math.Vec3{Y: -p.Leg.H * (math32.Exp(top) - math32.Exp(-top)) / 2}
	n.HipL = attach(n.Root, "hip_l", at(mirrorX(pl.Hip)), nil, scenegraph.Material{})
	n.LegL = attach(n.HipL, "leg_l", at(legDrop), leg, lit(p.Colors.Limb))
	n.HipR = attach(n.Root, "hip_r", at(pl.Hip), nil, scenegraph.Material{})
	n.LegR = attach(n.HipR, "leg_r", at(legDrop), leg, lit(p.Colors.Limb))

	armDrop := math.Vec3{Y: -(p.Arm.Length/2 + p.Arm.TopHeight)}
	n.ShoulderL = attach(n.Torso, "shoulder_l", math.Transform{
		Position: mirrorX(pl.Shoulder), Rotation: math.Vec3{Z: -pl.ArmSplay}, Scale: one,
	}, nil, scenegraph.Material{})
	n.ArmL = attach(n.ShoulderL, "arm_l", at(armDrop), arm, lit(p.Colors.Limb))
	n.ShoulderR = attach(n.Torso, "shoulder_r", math.Transform{
		Position: pl.Shoulder, Rotation: math.Vec3{Z: pl.ArmSplay}, Scale: one,
	}, nil, scenegraph.Material{})
	n.ArmR = attach(n.ShoulderR, "arm_r", at(armDrop), arm, lit(p.Colors.Limb))

	n.TailBase = attach(n.Torso, "tail_base", at(pl.TailBase), nil, scenegraph.Material{})
	n.Tail = attach(n.TailBase, "tail", math.Transform{Rotation: math.Vec3{X: pl.TailPitch}, Scale: one}, tail, lit(p.Colors.Tail))

	// The ribbon lies in its XY plane; turning it about Y runs it along the spine.
	finMat := lit(p.Colors.Fin)
	finMat.DoubleSided = true
	n.Fin = attach(n.Torso, "fin", math.Transform{
		Position: pl.Fin, Rotation: math.Vec3{Y: math32.Pi / 2}, Scale: one,
	}, fin, finMat)

	mistMat := scenegraph.Material{Unlit: true, UseVertexColor: true, DoubleSided: true}
	n.Mist = attach(n.Root, "mist", at(math.Vec3{Y: pl.MistHeight}), mist.Mesh(), mistMat)
	if buildErr != nil {
		return nil, buildErr
	}

	// The band is world-space geometry, so it hangs off its own root.
	band, err := r.synthesizeBand()
	if err != nil {
		return nil, fmt.Errorf("neck blend: %w", err)
	}
	band.Usage = mesh.Dynamic
	r.band = band
	n.NeckBlend = g.AddRoot("neck_blend", math.IdentityTransform())
	bandMat := lit(p.Colors.Skin)
	bandMat.DoubleSided = true
	if err := g.SetMesh(n.NeckBlend, band, bandMat); err != nil {
		return nil, err
	}

	n.Gizmo = g.AddRoot("gizmo", math.IdentityTransform())
	gizmo := debug.AxisGizmo(p.Gizmo.Length, p.Gizmo.Thickness)
	if err := g.SetMesh(n.Gizmo, gizmo, scenegraph.Material{Unlit: true, UseVertexColor: true}); err != nil {
		return nil, err
	}
	if err := g.SetVisible(n.Gizmo, p.Gizmo.Show); err != nil {
		return nil, err
	}

	vertices, triangles := r.Stats()
	log.Info("creature built",
		zap.Int("nodes", g.Len()),
		zap.Int("vertices", vertices),
		zap.Int("triangles", triangles),
		zap.Int("blend_segments", len(r.band.Vertices)/2-1))
	return r, nil
}

var one = math.Vec3{X: 1, Y: 1, Z: 1}

func at(p math.Vec3) math.Transform {
	return math.Transform{Position: p, Scale: one}
}

func mirrorX(p math.Vec3) math.Vec3 {
	p.X = -p.X
	return p
}

// synthesizeBand joins torso and head at their current world transforms.
func (r *Rig) synthesizeBand() (*mesh.Mesh, error) {
	torsoWorld, err := r.Graph.WorldMatrix(r.Nodes.Torso)
	if err != nil {
		return nil, err
	}
	headWorld, err := r.Graph.WorldMatrix(r.Nodes.Head)
	if err != nil {
		return nil, err
	}
	band, err := blend.Synthesize(
		blend.Part{Shape: r.Params.Torso, World: torsoWorld},
		blend.Part{Shape: r.Params.Head, World: headWorld},
		r.Params.Blend,
	)
	if err != nil {
		return nil, err
	}
	band.Mesh.Name = "neck_blend"
	return band.Mesh, nil
}

// Band returns the dynamic neck blend mesh.
func (r *Rig) Band() *mesh.Mesh {
	return r.band
}

// Mist returns the mist effect.
func (r *Rig) Mist() *effects.Mist {
	return r.mist
}

// Animate writes the idle pose for time t in seconds, advances the mist and
// re-synthesizes the neck band so it follows the head. Dynamic meshes must
// then be pushed with Graph.SyncDynamic.
func (r *Rig) Animate(t float32) error {
	m := r.Params.Motion
	n := r.Nodes
	wave := func(rate, phase float32) float32 {
		return math32.Sin(2*math32.Pi*rate*t + phase)
	}

	breath := 1 + m.BreathDepth*wave(m.BreathRate, 0)
	poses := []struct {
		id   scenegraph.NodeID
		pose math.Transform
	}{
		{n.Torso, math.Transform{Scale: math.Vec3{X: breath, Y: 1 + 0.5*(breath-1), Z: breath}}},
		{n.Neck, rotation(math.Vec3{X: m.HeadNod * wave(m.BreathRate*2, 0.5), Y: m.HeadSway * wave(m.BreathRate, 1)})},
		{n.HipL, rotation(math.Vec3{X: m.LegSwing * wave(m.LimbRate, 0)})},
		{n.HipR, rotation(math.Vec3{X: -m.LegSwing * wave(m.LimbRate, 0)})},
		{n.ShoulderL, rotation(math.Vec3{X: -m.ArmSwing * wave(m.LimbRate, 0)})},
		{n.ShoulderR, rotation(math.Vec3{X: m.ArmSwing * wave(m.LimbRate, 0)})},
		{n.TailBase, rotation(math.Vec3{Y: m.TailSwing * wave(m.TailRate, 0)})},
	}
	for _, p := range poses {
		if err := r.Graph.SetPose(p.id, p.pose); err != nil {
			return err
		}
	}

	r.mist.Update(t)

	band, err := r.synthesizeBand()
	if err != nil {
		return fmt.Errorf("neck blend: %w", err)
	}
	copy(r.band.Vertices, band.Vertices)
	r.band.Bounds = band.Bounds
	return nil
}

func rotation(euler math.Vec3) math.Transform {
	return math.Transform{Rotation: euler, Scale: one}
}

// SetGizmoVisible shows or hides the axis gizmo.
func (r *Rig) SetGizmoVisible(show bool) error {
	return r.Graph.SetVisible(r.Nodes.Gizmo, show)
}

// GizmoVisible reports whether the axis gizmo is shown.
func (r *Rig) GizmoVisible() bool {
	node, err := r.Graph.Node(r.Nodes.Gizmo)
	return err == nil && node.Visible
}

// Stats counts vertices and triangles over the distinct meshes of the rig.
func (r *Rig) Stats() (vertices, triangles int) {
	seen := make(map[*mesh.Mesh]bool)
	_ = r.Graph.Walk(func(_ scenegraph.NodeID, node *scenegraph.Node, _ math.Mat4, _ int) error {
		if node.Mesh == nil || seen[node.Mesh] {
			return nil
		}
		seen[node.Mesh] = true
		vertices += node.Mesh.VertexCount()
		triangles += node.Mesh.TriangleCount()
		return nil
	})
	return vertices, triangles
}

// Bounds returns the world-space bounds of the lit parts at the current pose.
func (r *Rig) Bounds() mesh.Bounds {
	b := mesh.EmptyBounds()
	_ = r.Graph.Walk(func(_ scenegraph.NodeID, node *scenegraph.Node, world math.Mat4, _ int) error {
		if node.Mesh == nil || node.Material.Unlit {
			return nil
		}
		mb := node.Mesh.Bounds
		if mb.IsEmpty() {
			return nil
		}
		for i := 0; i < 8; i++ {
			c := mb.Min
			if i&1 != 0 {
				c.X = mb.Max.X
			}
			if i&2 != 0 {
				c.Y = mb.Max.Y
			}
			if i&4 != 0 {
				c.Z = mb.Max.Z
			}
			b.Extend(world.TransformPoint(c))
		}
		return nil
	})
	return b
}

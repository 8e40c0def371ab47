// Package creature assembles the procedural creature: it runs every surface
// generator, arranges the parts in a scene graph and joins head and torso
// with a blend band.
package creature

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/internal/engine/blend"
	"github.com/Faultbox/sculpt/internal/engine/effects"
	"github.com/Faultbox/sculpt/internal/engine/surface"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Params describes the whole creature. Shapes are in part-local space;
// Placement positions them relative to their parents.
type Params struct {
	Torso surface.Ellipsoid      `yaml:"torso"`
	Head  surface.Ellipsoid      `yaml:"head"`
	Chin  surface.Ellipsoid      `yaml:"chin"`
	Eye   surface.Ellipsoid      `yaml:"eye"`
	Leg   surface.Hyperboloid    `yaml:"leg"`
	Arm   surface.Spherocylinder `yaml:"arm"`
	Tail  surface.Lathe          `yaml:"tail"`
	Fin   surface.Ribbon         `yaml:"fin"`

	Placement Placement          `yaml:"placement"`
	Colors    Colors             `yaml:"colors"`
	Blend     blend.Options      `yaml:"blend"`
	Mist      effects.MistParams `yaml:"mist"`
	Gizmo     Gizmo              `yaml:"gizmo"`
	Motion    Motion             `yaml:"motion"`
}

// Placement holds the rest-pose offsets of every part. Each offset is in its
// parent's space: neck, shoulders, tail and fin hang off the torso, the head
// off the neck, chin and eyes off the head. Hips sit on the creature root.
// Eye, hip and shoulder are mirrored in X for the left side.
type Placement struct {
	TorsoHeight float32   `yaml:"torso_height"`
	Neck        math.Vec3 `yaml:"neck"`
	Head        math.Vec3 `yaml:"head"`
	Chin        math.Vec3 `yaml:"chin"`
	Eye         math.Vec3 `yaml:"eye"`
	Hip         math.Vec3 `yaml:"hip"`
	Shoulder    math.Vec3 `yaml:"shoulder"`
	ArmSplay    float32   `yaml:"arm_splay"`
	TailBase    math.Vec3 `yaml:"tail_base"`
	TailPitch   float32   `yaml:"tail_pitch"`
	Fin         math.Vec3 `yaml:"fin"`
	MistHeight  float32   `yaml:"mist_height"`
}

// Colors are the material colors of the parts.
type Colors struct {
	Skin      math.Vec3 `yaml:"skin"`
	Head      math.Vec3 `yaml:"head"`
	Chin      math.Vec3 `yaml:"chin"`
	Eye       math.Vec3 `yaml:"eye"`
	Limb      math.Vec3 `yaml:"limb"`
	Tail      math.Vec3 `yaml:"tail"`
	Fin       math.Vec3 `yaml:"fin"`
	Shininess float32   `yaml:"shininess"`
}

// Gizmo controls the axis gizmo at the creature origin.
type Gizmo struct {
	Show      bool    `yaml:"show"`
	Length    float32 `yaml:"length"`
	Thickness float32 `yaml:"thickness"`
}

// Motion sets the idle animation amplitudes (radians) and rates (Hz).
type Motion struct {
	BreathRate  float32 `yaml:"breath_rate"`
	BreathDepth float32 `yaml:"breath_depth"`
	HeadSway    float32 `yaml:"head_sway"`
	HeadNod     float32 `yaml:"head_nod"`
	LimbRate    float32 `yaml:"limb_rate"`
	LegSwing    float32 `yaml:"leg_swing"`
	ArmSwing    float32 `yaml:"arm_swing"`
	TailRate    float32 `yaml:"tail_rate"`
	TailSwing   float32 `yaml:"tail_swing"`
}

// DefaultParams returns a small upright creature about 2.6 units tall.
func DefaultParams() Params {
	const stacks, sectors = 24, 32

	return Params{
		Torso: surface.Ellipsoid{A: 0.55, B: 0.7, C: 0.45, Stacks: stacks, Sectors: sectors},
		Head:  surface.Ellipsoid{A: 0.32, B: 0.3, C: 0.34, Stacks: stacks, Sectors: sectors},
		Chin: surface.Ellipsoid{
			A: 0.17, B: 0.1, C: 0.15, Stacks: 8, Sectors: 16,
			Window: surface.Window{
				UMin: -math32.Pi / 2, UMax: 0.1,
				VMin: math32.Pi/2 - 1.1, VMax: math32.Pi/2 + 1.1,
			},
		},
		Eye: surface.Ellipsoid{A: 0.05, B: 0.06, C: 0.035, Stacks: 8, Sectors: 12},
		Leg: surface.Hyperboloid{A: 0.12, H: 0.3, C: 0.12, UMin: -1.2, UMax: 0.9, Stacks: 12, Sectors: sectors},
		Arm: surface.Spherocylinder{
			Radius: 0.08, Length: 0.45, TopHeight: 0.08, BottomHeight: 0.11, Exponent: 2.4,
			Stacks: 6, Sectors: 20, CapStacks: 6,
		},
		Tail: surface.Lathe{
			Profile: surface.CubicBezier{
				P0: math.Vec2{X: 0.16, Y: 0},
				P1: math.Vec2{X: 0.2, Y: 0.3},
				P2: math.Vec2{X: 0.07, Y: 0.6},
				P3: math.Vec2{X: 0, Y: 0.85},
			},
			ProfileSegments: 16, Segments: 24, ScaleX: 1, ScaleZ: 0.8,
		},
		Fin: surface.Ribbon{
			Points: []math.Vec2{
				{X: 0, Y: 0}, {X: 0.2, Y: -0.12}, {X: 0.35, Y: -0.35}, {X: 0.42, Y: -0.6},
			},
			SamplesPerSegment: 8, Offset: 0.18, TaperTip: 1, TipPull: 0.08, TipStart: 0.55,
			DoubleSided: true,
		},
		Placement: Placement{
			TorsoHeight: 1.3,
			Neck:        math.Vec3{Y: 0.62, Z: 0.05},
			Head:        math.Vec3{Y: 0.3, Z: 0.08},
			Chin:        math.Vec3{Y: -0.14, Z: 0.16},
			Eye:         math.Vec3{X: 0.12, Y: 0.08, Z: 0.29},
			Hip:         math.Vec3{X: 0.25, Y: 0.76},
			Shoulder:    math.Vec3{X: 0.46, Y: 0.28},
			ArmSplay:    0.35,
			TailBase:    math.Vec3{Y: -0.35, Z: -0.35},
			TailPitch:   -2.0,
			Fin:         math.Vec3{Y: 0.55, Z: -0.15},
			MistHeight:  0.02,
		},
		Colors: Colors{
			Skin:      math.Vec3{X: 0.42, Y: 0.62, Z: 0.5},
			Head:      math.Vec3{X: 0.46, Y: 0.66, Z: 0.54},
			Chin:      math.Vec3{X: 0.86, Y: 0.8, Z: 0.62},
			Eye:       math.Vec3{X: 0.08, Y: 0.08, Z: 0.1},
			Limb:      math.Vec3{X: 0.36, Y: 0.54, Z: 0.44},
			Tail:      math.Vec3{X: 0.38, Y: 0.56, Z: 0.46},
			Fin:       math.Vec3{X: 0.9, Y: 0.45, Z: 0.3},
			Shininess: 24,
		},
		Blend: blend.Options{Segments: blend.DefaultSegments, Inflate: blend.DefaultInflate},
		Mist:  effects.DefaultMistParams(),
		Gizmo: Gizmo{Show: true, Length: 0.6, Thickness: 0.02},
		Motion: Motion{
			BreathRate:  0.3,
			BreathDepth: 0.02,
			HeadSway:    0.25,
			HeadNod:     0.06,
			LimbRate:    0.5,
			LegSwing:    0.12,
			ArmSwing:    0.3,
			TailRate:    0.6,
			TailSwing:   0.4,
		},
	}
}

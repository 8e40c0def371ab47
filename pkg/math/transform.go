package math

// Transform is a translation-rotation-scale composite.
// Rotation holds Euler angles in radians applied X, then Y, then Z.
// Zero scale components are tolerated and collapse geometry along that axis.
type Transform struct {
	Position Vec3 `yaml:"position"`
	Rotation Vec3 `yaml:"rotation"`
	Scale    Vec3 `yaml:"scale"`
}

// IdentityTransform returns a transform with unit scale and nothing else.
func IdentityTransform() Transform {
	return Transform{Scale: Vec3{1, 1, 1}}
}

// Translation returns an identity transform moved to (x, y, z).
func Translation(x, y, z float32) Transform {
	t := IdentityTransform()
	t.Position = Vec3{x, y, z}
	return t
}

// Matrix returns T · Rz · Ry · Rx · S.
func (t Transform) Matrix() Mat4 {
	return Translate(t.Position.X, t.Position.Y, t.Position.Z).
		Mul(QuatFromEuler(t.Rotation).ToMat4()).
		Scaled(t.Scale.X, t.Scale.Y, t.Scale.Z)
}

// Interpolate blends towards other: position and scale linearly, rotation
// along the shortest arc. The result is a fresh value; neither input changes.
func (t Transform) Interpolate(other Transform, f float32) Transform {
	q := QuatFromEuler(t.Rotation).Slerp(QuatFromEuler(other.Rotation), f)
	return Transform{
		Position: t.Position.Lerp(other.Position, f),
		Rotation: q.Euler(),
		Scale:    t.Scale.Lerp(other.Scale, f),
	}
}

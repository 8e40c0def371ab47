package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mat3 is a 3x3 matrix in column-major order, used for normal matrices.
type Mat3 [9]float32

// singularDet is the determinant magnitude below which a 3x3 block is
// treated as non-invertible.
const singularDet = 1e-12

// Mat3Identity returns the 3x3 identity.
func Mat3Identity() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// MulVec3 multiplies the matrix by a column vector.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat3) Ptr() *float32 {
	return &m[0]
}

// NormalMatrix returns transpose(inverse(upper3x3(world))).
// A singular world matrix (zero scale on some axis) yields the identity
// instead of propagating NaN into lighting.
func NormalMatrix(world Mat4) Mat3 {
	m3 := mgl32.Mat4(world).Mat3()
	det := m3.Det()
	if math32.Abs(det) < singularDet || math32.IsNaN(det) || math32.IsInf(det, 0) {
		return Mat3Identity()
	}
	return Mat3(m3.Inv().Transpose())
}

// Det returns the determinant. A negative value means the matrix mirrors.
func (m Mat3) Det() float32 {
	return mgl32.Mat3(m).Det()
}

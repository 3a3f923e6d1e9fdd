// Package affinetransform holds 3D affine maps in linear-plus-offset form.
//
// Composition follows matrix convention: Compose(a, b) applies b first, then a.
package affinetransform

import (
	"math"

	"whitted/vmath/mat33"
	"whitted/vmath/mat44"
	"whitted/vmath/vec3"
	"whitted/vmath/vec4"
)

type AffineTransform struct {
	Linear mat33.T
	Offset vec3.T
}

func Identity() AffineTransform {
	return AffineTransform{
		Linear: mat33.Identity(),
		Offset: vec3.T{0.0, 0.0, 0.0},
	}
}

func Scale(s float64) AffineTransform {
	return ScaleV(vec3.T{s, s, s})
}

// ScaleV scales each axis independently.
func ScaleV(s vec3.T) AffineTransform {
	return AffineTransform{
		Linear: mat33.T{s[0], 0.0, 0.0, 0.0, s[1], 0.0, 0.0, 0.0, s[2]},
		Offset: vec3.T{0.0, 0.0, 0.0},
	}
}

func Translate(x vec3.T) AffineTransform {
	result := Identity()
	result.Offset = x
	return result
}

// Rotate is a right-handed rotation of angle radians about axis.  The axis
// need not be unit length.
func Rotate(angle float64, axis vec3.T) AffineTransform {
	u := vec3.Normalize(axis)
	x, y, z := u[0], u[1], u[2]
	s, c := math.Sincos(angle)
	k := 1 - c

	result := Identity()
	result.Linear = mat33.T{
		k*x*x + c, k*x*y - s*z, k*x*z + s*y,
		k*x*y + s*z, k*y*y + c, k*y*z - s*x,
		k*x*z - s*y, k*y*z + s*x, k*z*z + c,
	}
	return result
}

func Compose(a, b AffineTransform) AffineTransform {
	return AffineTransform{
		Linear: mat33.MulMM(a.Linear, b.Linear),
		Offset: vec3.AddVV(a.Offset, mat33.MulMV(a.Linear, b.Offset)),
	}
}

// Mat44 returns t as a homogeneous matrix with bottom row (0, 0, 0, 1).
func (t AffineTransform) Mat44() mat44.T {
	return mat44.T{
		t.Linear[0], t.Linear[1], t.Linear[2], t.Offset[0],
		t.Linear[3], t.Linear[4], t.Linear[5], t.Offset[1],
		t.Linear[6], t.Linear[7], t.Linear[8], t.Offset[2],
		0, 0, 0, 1,
	}
}

func (t AffineTransform) Invert() AffineTransform {
	inv := mat44.Inverse(t.Mat44())

	return AffineTransform{
		Linear: mat33.T{
			inv[0], inv[1], inv[2],
			inv[4], inv[5], inv[6],
			inv[8], inv[9], inv[10],
		},
		Offset: vec3.T{inv[3], inv[7], inv[11]},
	}
}

// NormalTransformMat is the inverse transpose of the linear part.  Normals
// must be mapped through it (and renormalized) to stay perpendicular to
// surfaces under non-uniform scale.
func (t AffineTransform) NormalTransformMat() mat33.T {
	return mat33.Transpose(mat33.Inverse(t.Linear))
}

func TransformPoint(a AffineTransform, b vec3.T) vec3.T {
	return vec3.AddVV(mat33.MulMV(a.Linear, b), a.Offset)
}

// TransformVector applies only the linear part.
func TransformVector(a AffineTransform, b vec3.T) vec3.T {
	return mat33.MulMV(a.Linear, b)
}

// TransformHomogeneous maps b as a point or a direction depending on its w.
func TransformHomogeneous(a AffineTransform, b vec4.T) vec4.T {
	return mat44.MulMV(a.Mat44(), b)
}

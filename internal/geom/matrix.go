package geom

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNotInvertible is returned for transforms whose determinant is too close to zero.
var ErrNotInvertible = errors.New("matrix is not invertible")

// invertEpsilon is the smallest |det| accepted by Inverse.
const invertEpsilon = 9e-7

// Matrix is a 4x4 affine transform.
type Matrix = mgl32.Mat4

// Identity returns the identity transform.
func Identity() Matrix {
	return mgl32.Ident4()
}

// Inverse returns the inverse of m or ErrNotInvertible.
func Inverse(m Matrix) (Matrix, error) {
	det := m.Det()
	if math.Abs(float64(det)) < invertEpsilon {
		return Matrix{}, ErrNotInvertible
	}
	return m.Inv(), nil
}

// FromRowMajor builds a matrix from 16 values stored row by row with the
// translation in the last column, which is the on-disk layout.
func FromRowMajor(v [16]float32) Matrix {
	var m Matrix
	for row := range 4 {
		for col := range 4 {
			m.Set(row, col, v[row*4+col])
		}
	}
	return m
}

// RowMajor flattens m into the on-disk layout.
func RowMajor(m Matrix) [16]float32 {
	var v [16]float32
	for row := range 4 {
		for col := range 4 {
			v[row*4+col] = m.At(row, col)
		}
	}
	return v
}

// Translation returns a transform moving points by v.
func Translation(v Vector3) Matrix {
	return mgl32.Translate3D(v[0], v[1], v[2])
}

// RotationZ returns a rotation of angle radians around the vertical axis.
func RotationZ(angle float32) Matrix {
	return mgl32.HomogRotate3DZ(angle)
}

// FromQuaternion returns the rotation described by q.
func FromQuaternion(q mgl32.Quat) Matrix {
	return q.Normalize().Mat4()
}

// TransformPoint applies m to p, including translation.
func TransformPoint(m Matrix, p Vector3) Vector3 {
	return mgl32.TransformCoordinate(p, m)
}

// TransformPoints applies m to every point of src.
func TransformPoints(m Matrix, src []Vector3) []Vector3 {
	out := make([]Vector3, len(src))
	for i, p := range src {
		out[i] = mgl32.TransformCoordinate(p, m)
	}
	return out
}

// Package geom holds the geometry primitives shared by the spatial index,
// the height field and the map queries. Vectors and matrices are mgl32 types;
// matrices are column-major and transform column vectors.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vector3 is a world or model space position.
type Vector3 = mgl32.Vec3

// Min returns the component-wise minimum of a and b.
func Min(a, b Vector3) Vector3 {
	return Vector3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

// Max returns the component-wise maximum of a and b.
func Max(a, b Vector3) Vector3 {
	return Vector3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// Distance2D is the distance between a and b ignoring height.
func Distance2D(a, b Vector3) float32 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

// Lerp interpolates between a and b.
func Lerp(a, b Vector3, t float32) Vector3 {
	return a.Add(b.Sub(a).Mul(t))
}

// NextUp returns the smallest float32 greater than v.
func NextUp(v float32) float32 {
	return math.Nextafter32(v, float32(math.Inf(1)))
}

// NextDown returns the greatest float32 less than v.
func NextDown(v float32) float32 {
	return math.Nextafter32(v, float32(math.Inf(-1)))
}

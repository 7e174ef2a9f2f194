package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverse(t *testing.T) {
	m := Translation(Vector3{10, 20, 30}).Mul4(RotationZ(0.7))
	inv, err := Inverse(m)
	require.NoError(t, err)

	p := Vector3{1, 2, 3}
	back := TransformPoint(inv, TransformPoint(m, p))
	assert.InDelta(t, p[0], back[0], 1e-4)
	assert.InDelta(t, p[1], back[1], 1e-4)
	assert.InDelta(t, p[2], back[2], 1e-4)
}

func TestInverseSingular(t *testing.T) {
	m := mgl32.Scale3D(1, 1, 0)
	_, err := Inverse(m)
	assert.ErrorIs(t, err, ErrNotInvertible)

	tiny := mgl32.Scale3D(0.005, 0.005, 0.005)
	_, err = Inverse(tiny)
	assert.ErrorIs(t, err, ErrNotInvertible)
}

func TestRowMajorLayout(t *testing.T) {
	raw := [16]float32{
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
		0, 0, 0, 1,
	}
	m := FromRowMajor(raw)
	got := TransformPoint(m, Vector3{1, 1, 1})
	assert.Equal(t, Vector3{6, 7, 8}, got)
	assert.Equal(t, raw, RowMajor(m))
}

func TestQuaternionMatchesRotationZ(t *testing.T) {
	q := mgl32.QuatRotate(1.2, Vector3{0, 0, 1})
	a := TransformPoint(FromQuaternion(q), Vector3{3, 0, 1})
	b := TransformPoint(RotationZ(1.2), Vector3{3, 0, 1})
	assert.True(t, a.ApproxEqualThreshold(b, 1e-5))
}

func TestBoundingBox(t *testing.T) {
	b := BoxFromPoints([]Vector3{{0, 0, 0}, {2, 4, 1}})
	assert.Equal(t, float32(2*(8+2+4)), b.SurfaceArea())
	assert.True(t, b.Intersects2D(BoundingBox{Min: Vector3{1, 1, 50}, Max: Vector3{3, 3, 60}}))
	assert.False(t, b.Intersects(BoundingBox{Min: Vector3{1, 1, 50}, Max: Vector3{3, 3, 60}}))
	assert.False(t, b.Intersects2D(BoundingBox{Min: Vector3{2.5, 0, 0}, Max: Vector3{3, 1, 1}}))

	moved := b.Transform(Translation(Vector3{1, 1, 1}))
	assert.Equal(t, Vector3{1, 1, 1}, moved.Min)
	assert.Equal(t, Vector3{3, 5, 2}, moved.Max)
	assert.False(t, EmptyBox().Valid())
}

func TestRayTriangle(t *testing.T) {
	a, b, c := Vector3{0, 0, 0}, Vector3{4, 0, 0}, Vector3{0, 4, 0}

	tests := []struct {
		name  string
		start Vector3
		end   Vector3
		hit   bool
		dist  float32
	}{
		{"front face", Vector3{1, 1, 10}, Vector3{1, 1, -10}, true, 0.5},
		{"back face culled", Vector3{1, 1, -10}, Vector3{1, 1, 10}, false, 0},
		{"outside", Vector3{5, 5, 10}, Vector3{5, 5, -10}, false, 0},
		{"beyond end", Vector3{1, 1, 10}, Vector3{1, 1, 5}, true, 2},
		{"behind start", Vector3{1, 1, -1}, Vector3{1, 1, -5}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRay(tt.start, tt.end)
			d, ok := r.IntersectTriangle(a, b, c)
			require.Equal(t, tt.hit, ok)
			if ok {
				assert.InDelta(t, tt.dist, d, 1e-4)
			}
		})
	}
}

func TestRayBox(t *testing.T) {
	box := BoundingBox{Min: Vector3{-1, -1, -1}, Max: Vector3{1, 1, 1}}

	d, ok := NewRay(Vector3{0, 0, 10}, Vector3{0, 0, -10}).IntersectBox(box)
	require.True(t, ok)
	assert.InDelta(t, 0.45, d, 1e-6)

	_, ok = NewRay(Vector3{2, 0, 10}, Vector3{2, 0, -10}).IntersectBox(box)
	assert.False(t, ok)

	d, ok = NewRay(Vector3{0, 0, 0}, Vector3{0, 0, -10}).IntersectBox(box)
	require.True(t, ok)
	assert.Less(t, d, float32(0))

	_, ok = NewRay(Vector3{-5, 0, 0}, Vector3{-10, 0, 0}).IntersectBox(box)
	assert.False(t, ok)
}

func TestRayHitPoint(t *testing.T) {
	r := NewRay(Vector3{0, 0, 10}, Vector3{0, 0, 0})
	assert.False(t, r.Hit())
	r.SetDistance(0.25)
	assert.True(t, r.Hit())
	assert.Equal(t, Vector3{0, 0, 7.5}, r.HitPoint())

	local := r.Transform(Translation(Vector3{1, 0, 0}))
	assert.Equal(t, r.Distance(), local.Distance())
	assert.Equal(t, Vector3{1, 0, 7.5}, local.HitPoint())
}

func TestNextUpDown(t *testing.T) {
	assert.Greater(t, NextUp(1), float32(1))
	assert.Less(t, NextDown(1), float32(1))
	assert.False(t, math.IsInf(float64(NextUp(0)), 0))
}

func TestHeightOnTriangle(t *testing.T) {
	a, b, c := Vector3{0, 0, 0}, Vector3{2, 0, 2}, Vector3{0, 2, 4}

	h, ok := HeightOnTriangle(Vector3{0.5, 0.5, 99}, a, b, c)
	require.True(t, ok)
	assert.InDelta(t, 0.5+1, h, 1e-5)

	_, ok = HeightOnTriangle(Vector3{2, 2, 0}, a, b, c)
	assert.False(t, ok)
}

package geom

import "math"

// triangleUpscale scales triangles before the intersection test to keep the
// determinant away from the epsilon on small geometry.
const (
	triangleUpscale = 100
	triangleEpsilon = 1e-5
)

// Ray is a segment from Start to End carrying the best hit distance found so
// far, normalized to the segment length. A fresh ray has distance 1.
type Ray struct {
	start, end Vector3
	hit        float32
}

// NewRay creates a ray with no hit recorded.
func NewRay(start, end Vector3) *Ray {
	return &Ray{start: start, end: end, hit: 1}
}

func (r *Ray) Start() Vector3 { return r.start }
func (r *Ray) End() Vector3   { return r.end }

// Direction is End - Start (not normalized).
func (r *Ray) Direction() Vector3 {
	return r.end.Sub(r.start)
}

// Length of the segment.
func (r *Ray) Length() float32 {
	return r.Direction().Len()
}

// Distance is the normalized best hit distance.
func (r *Ray) Distance() float32 {
	return r.hit
}

// SetDistance records a new best hit.
func (r *Ray) SetDistance(d float32) {
	r.hit = d
}

// Hit reports whether any hit was recorded.
func (r *Ray) Hit() bool {
	return r.hit < 1
}

// HitPoint is the point at the current best distance.
func (r *Ray) HitPoint() Vector3 {
	return r.start.Add(r.Direction().Mul(r.hit))
}

// Transform returns a copy of the ray with both ends mapped through m. The
// normalized hit distance is preserved by affine transforms.
func (r *Ray) Transform(m Matrix) *Ray {
	return &Ray{start: TransformPoint(m, r.start), end: TransformPoint(m, r.end), hit: r.hit}
}

// IntersectTriangle tests the front face of the counter-clockwise triangle
// (a, b, c) and returns the normalized distance of the hit.
func (r *Ray) IntersectTriangle(a, b, c Vector3) (float32, bool) {
	a = a.Mul(triangleUpscale)
	b = b.Mul(triangleUpscale)
	c = c.Mul(triangleUpscale)
	start := r.start.Mul(triangleUpscale)
	dir := r.end.Mul(triangleUpscale).Sub(start)
	length := dir.Len()
	if length == 0 {
		return 0, false
	}
	dir = dir.Mul(1 / length)

	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det < triangleEpsilon {
		return 0, false
	}

	s := start.Sub(a)
	u := s.Dot(p)
	if u < 0 || u > det {
		return 0, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q)
	if v < 0 || u+v > det {
		return 0, false
	}

	d := e2.Dot(q) / det
	if d < triangleEpsilon {
		return 0, false
	}
	return d / length, true
}

// IntersectBox is a slab test returning the normalized entry distance, which
// is negative when the ray starts inside the box.
func (r *Ray) IntersectBox(b BoundingBox) (float32, bool) {
	dir := r.Direction()
	length := dir.Len()
	if length == 0 {
		return 0, false
	}
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	for axis := range 3 {
		if dir[axis] == 0 {
			if r.start[axis] < b.Min[axis] || r.start[axis] > b.Max[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[axis]
		t1 := (b.Min[axis] - r.start[axis]) * inv
		t2 := (b.Max[axis] - r.start[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}
	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return tmin, true
}

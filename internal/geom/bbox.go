package geom

import "math"

// BoundingBox is an axis aligned box.
type BoundingBox struct {
	Min, Max Vector3
}

// EmptyBox returns an inverted box that any Update makes valid.
func EmptyBox() BoundingBox {
	inf := float32(math.Inf(1))
	return BoundingBox{
		Min: Vector3{inf, inf, inf},
		Max: Vector3{-inf, -inf, -inf},
	}
}

// BoxFromPoints returns the tight box around points.
func BoxFromPoints(points []Vector3) BoundingBox {
	b := EmptyBox()
	for _, p := range points {
		b.Update(p)
	}
	return b
}

// Update grows the box to contain p.
func (b *BoundingBox) Update(p Vector3) {
	b.Min = Min(b.Min, p)
	b.Max = Max(b.Max, p)
}

// Connect grows the box to contain o.
func (b *BoundingBox) Connect(o BoundingBox) {
	b.Min = Min(b.Min, o.Min)
	b.Max = Max(b.Max, o.Max)
}

// Valid reports whether Min <= Max on every axis.
func (b BoundingBox) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Extent is Max - Min.
func (b BoundingBox) Extent() Vector3 {
	return b.Max.Sub(b.Min)
}

// Center is the midpoint of the box.
func (b BoundingBox) Center() Vector3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// SurfaceArea of the box, used by the split heuristic.
func (b BoundingBox) SurfaceArea() float32 {
	e := b.Extent()
	return 2 * (e[0]*e[1] + e[0]*e[2] + e[1]*e[2])
}

// Intersects reports whether the boxes overlap, touching included.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.Intersects2D(o) && b.Min[2] <= o.Max[2] && o.Min[2] <= b.Max[2]
}

// Intersects2D ignores the vertical axis.
func (b BoundingBox) Intersects2D(o BoundingBox) bool {
	return b.Min[0] <= o.Max[0] && o.Min[0] <= b.Max[0] &&
		b.Min[1] <= o.Max[1] && o.Min[1] <= b.Max[1]
}

// Contains2D reports whether (x, y) lies inside the box footprint.
func (b BoundingBox) Contains2D(x, y float32) bool {
	return x >= b.Min[0] && x <= b.Max[0] && y >= b.Min[1] && y <= b.Max[1]
}

// Transform returns the box around the eight transformed corners.
func (b BoundingBox) Transform(m Matrix) BoundingBox {
	out := EmptyBox()
	for i := range 8 {
		corner := b.Min
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out.Update(TransformPoint(m, corner))
	}
	return out
}

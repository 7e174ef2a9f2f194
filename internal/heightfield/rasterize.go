package heightfield

import (
	"math"

	"github.com/udisondev/pathfind/internal/geom"
)

// MarkWalkableTriangles returns one area per triangle: area for faces whose
// slope is at most slopeDegrees, AreaNull otherwise. Triangles are expected
// counter-clockwise seen from above.
func MarkWalkableTriangles(slopeDegrees float32, verts []geom.Vector3, indices []int32, area uint32) []uint32 {
	threshold := float32(math.Cos(float64(slopeDegrees) / 180 * math.Pi))
	areas := make([]uint32, len(indices)/3)
	for i := range areas {
		a := verts[indices[i*3]]
		b := verts[indices[i*3+1]]
		c := verts[indices[i*3+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Len(); l > 0 && n[2]/l > threshold {
			areas[i] = area
		}
	}
	return areas
}

// RasterizeTriangles adds a span for every cell each triangle covers.
func (hf *Heightfield) RasterizeTriangles(verts []geom.Vector3, indices []int32, areas []uint32, mergeThreshold int) {
	for i := range areas {
		hf.rasterizeTriangle(verts[indices[i*3]], verts[indices[i*3+1]], verts[indices[i*3+2]], areas[i], mergeThreshold)
	}
}

func (hf *Heightfield) rasterizeTriangle(v0, v1, v2 geom.Vector3, area uint32, mergeThreshold int) {
	tri := geom.BoxFromPoints([]geom.Vector3{v0, v1, v2})
	if !tri.Intersects(hf.Bounds()) {
		return
	}

	w, h := int(hf.Width), int(hf.Height)
	by := hf.BMax[2] - hf.BMin[2]
	ics := 1 / hf.CellSize
	ich := 1 / hf.CellHeight

	y0 := clamp(int(math.Floor(float64((tri.Min[1]-hf.BMin[1])*ics))), 0, h-1)
	y1 := clamp(int(math.Floor(float64((tri.Max[1]-hf.BMin[1])*ics))), 0, h-1)

	in := []geom.Vector3{v0, v1, v2}
	if tri.Min[1] < hf.BMin[1] {
		_, in = dividePoly(in, hf.BMin[1], 1, nil, nil)
	}
	var row, rest, cell, rowRest []geom.Vector3
	for y := y0; y <= y1; y++ {
		cy := hf.BMin[1] + float32(y)*hf.CellSize
		row, rest = dividePoly(in, cy+hf.CellSize, 1, row[:0], rest[:0])
		in, rest = rest, in[:0]
		if len(row) < 3 {
			continue
		}

		minX, maxX := row[0][0], row[0][0]
		for _, p := range row[1:] {
			minX = min(minX, p[0])
			maxX = max(maxX, p[0])
		}
		x0 := int(math.Floor(float64((minX - hf.BMin[0]) * ics)))
		x1 := int(math.Floor(float64((maxX - hf.BMin[0]) * ics)))
		if x1 < 0 || x0 >= w {
			continue
		}
		if x0 < 0 {
			_, row = dividePoly(row, hf.BMin[0], 0, nil, nil)
			x0 = 0
		}
		x1 = clamp(x1, 0, w-1)

		for x := x0; x <= x1; x++ {
			cx := hf.BMin[0] + float32(x)*hf.CellSize
			cell, rowRest = dividePoly(row, cx+hf.CellSize, 0, cell[:0], rowRest[:0])
			row, rowRest = rowRest, row[:0]
			if len(cell) < 3 {
				continue
			}

			smin, smax := cell[0][2], cell[0][2]
			for _, p := range cell[1:] {
				smin = min(smin, p[2])
				smax = max(smax, p[2])
			}
			smin -= hf.BMin[2]
			smax -= hf.BMin[2]
			if smax < 0 || smin > by {
				continue
			}
			smin = max(smin, 0)
			smax = min(smax, by)

			ismin := clamp(int(math.Floor(float64(smin*ich))), 0, MaxHeight)
			ismax := clamp(int(math.Ceil(float64(smax*ich))), ismin+1, MaxHeight)
			hf.AddSpan(x, y, uint32(ismin), uint32(ismax), area, mergeThreshold)
		}
	}
}

// dividePoly splits polygon in along the plane axis == at. Vertices on or
// below the plane go to below, the rest to above; the buffers are reused.
func dividePoly(in []geom.Vector3, at float32, axis int, below, above []geom.Vector3) ([]geom.Vector3, []geom.Vector3) {
	n := len(in)
	if n == 0 {
		return below, above
	}
	d := make([]float32, n)
	for i, p := range in {
		d[i] = at - p[axis]
	}

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		ina := d[j] >= 0
		inb := d[i] >= 0
		if ina != inb {
			s := d[j] / (d[j] - d[i])
			p := geom.Lerp(in[j], in[i], s)
			below = append(below, p)
			above = append(above, p)
			if d[i] > 0 {
				below = append(below, in[i])
			} else if d[i] < 0 {
				above = append(above, in[i])
			}
			continue
		}
		if d[i] >= 0 {
			below = append(below, in[i])
			if d[i] != 0 {
				continue
			}
		}
		above = append(above, in[i])
	}
	return below, above
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

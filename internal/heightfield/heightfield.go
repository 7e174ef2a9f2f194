// Package heightfield implements the voxel height field persisted with every
// tile: a grid of columns, each holding a sorted list of solid spans. It is
// rematerialized when a temporary obstacle has to be rasterized into a tile.
package heightfield

import (
	"fmt"
	"slices"

	"github.com/udisondev/pathfind/internal/geom"
)

// MaxHeight is the highest span bound representable in a column.
const MaxHeight = 0xffff

// Area flags stored on spans and copied to navmesh polygons. AreaNull marks
// an unwalkable span.
const (
	AreaNull   uint32 = 0
	AreaGround uint32 = 1 << 0
	AreaLiquid uint32 = 1 << 1
	AreaWMO    uint32 = 1 << 2
	AreaDoodad uint32 = 1 << 3
	AreaSteep  uint32 = 1 << 4
)

// Span is a solid vertical interval of a column in voxel units.
type Span struct {
	Min  uint32
	Max  uint32
	Area uint32
}

// Walkable reports whether the span top can be stood on.
func (s Span) Walkable() bool {
	return s.Area != AreaNull
}

// Header describes the grid. Bounds are world coordinates; Z is height.
type Header struct {
	Width      int32
	Height     int32
	BMin       geom.Vector3
	BMax       geom.Vector3
	CellSize   float32
	CellHeight float32
}

// Bounds returns the world box of the grid.
func (h Header) Bounds() geom.BoundingBox {
	return geom.BoundingBox{Min: h.BMin, Max: h.BMax}
}

// Validate checks that the header describes a usable grid.
func (h Header) Validate() error {
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("invalid height field size %dx%d", h.Width, h.Height)
	}
	if h.CellSize <= 0 || h.CellHeight <= 0 {
		return fmt.Errorf("invalid cell size %g/%g", h.CellSize, h.CellHeight)
	}
	return nil
}

// Heightfield is a grid of span columns indexed x + y*Width.
type Heightfield struct {
	Header
	Columns [][]Span
}

// New allocates an empty height field.
func New(h Header) *Heightfield {
	return &Heightfield{
		Header:  h,
		Columns: make([][]Span, int(h.Width)*int(h.Height)),
	}
}

// Column returns the spans of cell (x, y), or nil when out of range.
func (hf *Heightfield) Column(x, y int) []Span {
	if x < 0 || y < 0 || x >= int(hf.Width) || y >= int(hf.Height) {
		return nil
	}
	return hf.Columns[x+y*int(hf.Width)]
}

// Clone returns a deep copy.
func (hf *Heightfield) Clone() *Heightfield {
	out := &Heightfield{Header: hf.Header, Columns: make([][]Span, len(hf.Columns))}
	for i, col := range hf.Columns {
		out.Columns[i] = slices.Clone(col)
	}
	return out
}

// SpanCount is the total number of spans.
func (hf *Heightfield) SpanCount() int {
	n := 0
	for _, col := range hf.Columns {
		n += len(col)
	}
	return n
}

// AddSpan inserts [min, max) into column (x, y), merging it with every span
// it overlaps. When the merged top is within mergeThreshold of an absorbed
// span's top, the larger area id wins.
func (hf *Heightfield) AddSpan(x, y int, smin, smax, area uint32, mergeThreshold int) {
	idx := x + y*int(hf.Width)
	col := hf.Columns[idx]

	s := Span{Min: smin, Max: smax, Area: area}
	insert := 0
	out := col[:0:0]
	for _, cur := range col {
		switch {
		case cur.Min > s.Max:
			out = append(out, cur)
		case cur.Max < s.Min:
			out = append(out, cur)
			insert = len(out)
		default:
			if cur.Min < s.Min {
				s.Min = cur.Min
			}
			if cur.Max > s.Max {
				s.Max = cur.Max
			}
			if abs(int(s.Max)-int(cur.Max)) <= mergeThreshold {
				s.Area = max(s.Area, cur.Area)
			}
		}
	}
	out = slices.Insert(out, insert, s)
	hf.Columns[idx] = out
}

// AreaSnapshot records the position and area of selected spans.
type AreaSnapshot []spanRef

type spanRef struct {
	column, index int
	area          uint32
}

// SnapshotArea records every span whose area has any bit of flag set.
func (hf *Heightfield) SnapshotArea(flag uint32) AreaSnapshot {
	var snap AreaSnapshot
	for c, col := range hf.Columns {
		for i, s := range col {
			if s.Area&flag != 0 {
				snap = append(snap, spanRef{column: c, index: i, area: s.Area})
			}
		}
	}
	return snap
}

// Restore puts the recorded areas back. Filters only rewrite areas, so span
// positions recorded before filtering are still valid.
func (hf *Heightfield) Restore(snap AreaSnapshot) {
	for _, ref := range snap {
		col := hf.Columns[ref.column]
		if ref.index < len(col) {
			col[ref.index].Area = ref.area
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

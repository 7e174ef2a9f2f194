package pathfind

import (
	"github.com/udisondev/pathfind/internal/binio"
	"github.com/udisondev/pathfind/internal/geom"
)

// quadRowStride is the number of samples per quad row: nine corners followed
// by eight midpoints.
const (
	quadRowStride = 2*QuadsPerTile + 1
	quadMidOffset = QuadsPerTile + 1
)

// QuadHeights is the terrain sample block of a tile.
type QuadHeights struct {
	ZoneID  uint32
	AreaID  uint32
	Holes   [QuadsPerTile]uint8 // Holes[qx] bit qy
	Heights [QuadValuesPerTile]float32
}

// IsHole reports whether quad (qx, qy) has no terrain.
func (q *QuadHeights) IsHole(qx, qy int) bool {
	return q.Holes[qx]&(1<<qy) != 0
}

// SetHole marks quad (qx, qy) as a hole.
func (q *QuadHeights) SetHole(qx, qy int) {
	q.Holes[qx] |= 1 << qy
}

// Height interpolates the terrain height of tile (tx, ty) at world (x, y).
// Holes and points outside the tile have no height.
func (q *QuadHeights) Height(tx, ty int32, x, y float32) (float32, bool) {
	const quadWidth = TileSize / QuadsPerTile

	nwX, nwY := TileNorthwestCorner(tx, ty)
	fx := float64(nwY-y) / quadWidth
	fy := float64(nwX-x) / quadWidth
	if fx < 0 || fy < 0 || fx > QuadsPerTile || fy > QuadsPerTile {
		return 0, false
	}
	qx := min(int(fx), QuadsPerTile-1)
	qy := min(int(fy), QuadsPerTile-1)
	if q.IsHole(qx, qy) {
		return 0, false
	}

	qw := float32(quadWidth)
	ia := quadRowStride*qy + qx
	ib := ia + 1
	ic := ia + quadMidOffset
	id := quadRowStride*(qy+1) + qx
	ie := id + 1

	a := geom.Vector3{nwX - qw*float32(qy), nwY - qw*float32(qx), q.Heights[ia]}
	b := geom.Vector3{nwX - qw*float32(qy), nwY - qw*float32(qx+1), q.Heights[ib]}
	c := geom.Vector3{nwX - qw*(float32(qy)+0.5), nwY - qw*(float32(qx)+0.5), q.Heights[ic]}
	d := geom.Vector3{nwX - qw*float32(qy+1), nwY - qw*float32(qx), q.Heights[id]}
	e := geom.Vector3{nwX - qw*float32(qy+1), nwY - qw*float32(qx+1), q.Heights[ie]}

	p := geom.Vector3{x, y, 0}
	for _, tri := range [4][3]geom.Vector3{{a, b, c}, {b, e, c}, {c, e, d}, {a, c, d}} {
		if h, ok := geom.HeightOnTriangle(p, tri[0], tri[1], tri[2]); ok {
			return h, true
		}
	}
	return 0, false
}

func readQuadHeights(r *binio.Reader) *QuadHeights {
	q := &QuadHeights{ZoneID: r.U32(), AreaID: r.U32()}
	copy(q.Holes[:], r.Bytes(QuadsPerTile))
	for i := range q.Heights {
		q.Heights[i] = r.F32()
	}
	return q
}

func writeQuadHeights(w *binio.Writer, q *QuadHeights) {
	w.U32(q.ZoneID)
	w.U32(q.AreaID)
	w.Raw(q.Holes[:])
	for _, h := range q.Heights {
		w.F32(h)
	}
}

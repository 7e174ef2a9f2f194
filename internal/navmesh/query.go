package navmesh

import (
	"fmt"

	"github.com/arl/go-detour/detour"
	"github.com/arl/gogeo/f32/d3"

	"github.com/udisondev/pathfind/internal/geom"
)

const (
	// columnHalfHeight is the vertical reach of a column query.
	columnHalfHeight = 1e4
	maxColumnPolys   = 64
)

// FindNearestPoly returns the polygon closest to center within the half
// extents and the closest point on it.
func (n *NavMesh) FindNearestPoly(center, extents geom.Vector3) (PolyRef, geom.Vector3, bool) {
	st, ref, pt := n.query.FindNearestPoly(toDetour(center), toDetour(extents), n.filter)
	if detour.StatusFailed(st) || ref == 0 {
		return 0, geom.Vector3{}, false
	}
	return ref, fromDetour(pt), true
}

// PolysAt returns every polygon whose bounds cover the column at (x, y).
func (n *NavMesh) PolysAt(x, y float32) []PolyRef {
	polys := make([]PolyRef, maxColumnPolys)
	var count int32
	center := d3.NewVec3XYZ(y, 0, x)
	extents := d3.NewVec3XYZ(0, columnHalfHeight, 0)
	st := n.query.QueryPolygons(center, extents, n.filter, polys, &count, int32(len(polys)))
	if detour.StatusFailed(st) {
		return nil
	}
	return polys[:count]
}

// PolyHeight returns the detail surface height of ref at (x, y). It fails
// when the point is not over the polygon.
func (n *NavMesh) PolyHeight(ref PolyRef, x, y float32) (float32, bool) {
	var h float32
	st := n.query.GetPolyHeight(ref, d3.NewVec3XYZ(y, 0, x), &h)
	if detour.StatusFailed(st) {
		return 0, false
	}
	return h, true
}

// FindPath returns the polygon corridor from startRef to endRef, at most
// maxPath polygons long. partial is set when the corridor stops short of
// endRef.
func (n *NavMesh) FindPath(startRef, endRef PolyRef, startPos, endPos geom.Vector3, maxPath int) (corridor []PolyRef, partial bool, err error) {
	path := make([]PolyRef, maxPath)
	count, st := n.query.FindPath(startRef, endRef, toDetour(startPos), toDetour(endPos), n.filter, path)
	if detour.StatusFailed(st) {
		return nil, false, statusError("find path", st)
	}
	if count == 0 {
		return nil, false, fmt.Errorf("find path: empty corridor: %w", ErrFailed)
	}
	path = path[:count]
	partial = st&detour.PartialResult != 0 || path[count-1] != endRef
	return path, partial, nil
}

// FindStraightPath pulls the string through corridor and returns the corner
// points from start to end.
func (n *NavMesh) FindStraightPath(start, end geom.Vector3, corridor []PolyRef, maxPoints int) ([]geom.Vector3, error) {
	points := make([]d3.Vec3, maxPoints)
	for i := range points {
		points[i] = d3.NewVec3()
	}
	flags := make([]uint8, maxPoints)
	refs := make([]PolyRef, maxPoints)
	count, st := n.query.FindStraightPath(toDetour(start), toDetour(end), corridor, points, flags, refs, 0)
	if detour.StatusFailed(st) {
		return nil, statusError("straight path", st)
	}
	out := make([]geom.Vector3, count)
	for i := range out {
		out[i] = fromDetour(points[i])
	}
	return out, nil
}

// FindRandomPointAroundCircle returns a random point on a polygon reachable
// from startRef whose portal lies within radius of center.
func (n *NavMesh) FindRandomPointAroundCircle(startRef PolyRef, center geom.Vector3, radius float32, rnd func() float32) (PolyRef, geom.Vector3, error) {
	ref, pt, st := n.query.FindRandomPointAroundCircle(startRef, toDetour(center), radius, n.filter, rnd)
	if detour.StatusFailed(st) || ref == 0 {
		return 0, geom.Vector3{}, statusError("random point", st)
	}
	return ref, fromDetour(pt), nil
}

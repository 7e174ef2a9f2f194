package pathfind

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/pathfind/internal/geom"
)

// FindPath returns a polyline from start to end over the mesh, or nil when
// no path exists. A path ending short of end is returned only when
// allowPartial is set.
func (m *Map) FindPath(start, end geom.Vector3, allowPartial bool) []geom.Vector3 {
	startRef, startPos, ok := m.nav.FindNearestPoly(start, searchExtents)
	if !ok {
		return nil
	}
	endRef, endPos, ok := m.nav.FindNearestPoly(end, searchExtents)
	if !ok {
		return nil
	}

	corridor, partial, err := m.nav.FindPath(startRef, endRef, startPos, endPos, MaxPathHops)
	if err != nil {
		slog.Debug("find path", "map", m.name, "err", err)
		return nil
	}
	if partial && !allowPartial {
		return nil
	}

	points, err := m.nav.FindStraightPath(startPos, endPos, corridor, MaxPathHops)
	if err != nil {
		slog.Debug("straight path", "map", m.name, "err", err)
		return nil
	}
	return points
}

// FindRandomPointAroundCircle returns a random mesh point reachable from
// center within radius.
func (m *Map) FindRandomPointAroundCircle(center geom.Vector3, radius float32) (geom.Vector3, bool) {
	ref, _, ok := m.nav.FindNearestPoly(center, searchExtents)
	if !ok {
		return geom.Vector3{}, false
	}
	_, p, err := m.nav.FindRandomPointAroundCircle(ref, center, radius, rand.Float32)
	if err != nil {
		return geom.Vector3{}, false
	}
	return p, true
}

// FindPointInBetweenVectors returns the mesh point distance away from start
// towards end. It fails when the segment is shorter than distance. The point
// is snapped at the height of start first, then at the height of end.
func (m *Map) FindPointInBetweenVectors(start, end geom.Vector3, distance float32) (geom.Vector3, bool) {
	length := start.Sub(end).Len()
	if length == 0 || length < distance {
		return geom.Vector3{}, false
	}
	f := distance / length
	x := start.X() + f*(end.X()-start.X())
	y := start.Y() + f*(end.Y()-start.Y())
	for _, z := range [2]float32{start.Z(), end.Z()} {
		if _, p, ok := m.nav.FindNearestPoly(geom.Vector3{x, y, z}, betweenExtents); ok {
			return p, true
		}
	}
	return geom.Vector3{}, false
}

package pathfind

import "github.com/udisondev/pathfind/internal/geom"

// LineOfSight reports whether nothing blocks the segment start-stop.
// Temporary obstacles count only when doodads are included.
func (m *Map) LineOfSight(start, stop geom.Vector3, doodads bool) bool {
	ray := geom.NewRay(start, stop)
	return !m.castRay(ray, m.tilesAlong(ray), doodads).found
}

// ZoneAndArea returns the zone and area at position: the pair of the WMO
// below it, unless the terrain lies above that WMO.
func (m *Map) ZoneAndArea(position geom.Vector3) (zone, area uint32, ok bool) {
	x, y := position.X(), position.Y()
	tile := m.tileAt(x, y)
	if tile == nil {
		return 0, 0, false
	}

	ray := geom.NewRay(position, geom.Vector3{x, y, tile.bounds.Min.Z()})
	rc := m.castRay(ray, []*Tile{tile}, false)

	if adtZ, adtOK := tile.height(x, y); adtOK && (!rc.hasZone || adtZ > ray.HitPoint().Z()) {
		return tile.quad.ZoneID, tile.quad.AreaID, true
	}
	if rc.hasZone {
		return rc.zone.Zone, rc.zone.Area, true
	}
	return 0, 0, false
}

package pathfind

import "github.com/udisondev/pathfind/internal/geom"

// RayDistance casts start-end over tiles in the given order and returns the
// normalized distance of the closest hit.
func (m *Map) RayDistance(start, end geom.Vector3, tiles []*Tile, doodads bool) (float32, bool) {
	ray := geom.NewRay(start, end)
	rc := m.castRay(ray, tiles, doodads)
	return ray.Distance(), rc.found
}

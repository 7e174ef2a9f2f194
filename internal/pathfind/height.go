package pathfind

import (
	"fmt"
	"math"
	"slices"

	"github.com/udisondev/pathfind/internal/geom"
)

// FindHeights returns the heights of every walkable surface stacked at
// (x, y), ascending and without duplicates.
func (m *Map) FindHeights(x, y float32) ([]float32, error) {
	refs := m.nav.PolysAt(x, y)
	if len(refs) == 0 {
		return nil, nil
	}

	heights := make([]float32, 0, len(refs))
	for _, ref := range refs {
		hint, ok := m.nav.PolyHeight(ref, x, y)
		if !ok {
			continue
		}
		z, err := m.FindPreciseZ(x, y, hint)
		if err != nil {
			return nil, err
		}
		heights = append(heights, z)
	}
	slices.Sort(heights)
	return slices.Compact(heights), nil
}

// FindPreciseZ refines a mesh height near zHint against the collision
// geometry and the terrain. The greater of both candidates wins.
func (m *Map) FindPreciseZ(x, y, zHint float32) (float32, error) {
	tile := m.tileAt(x, y)
	if tile == nil {
		return 0, fmt.Errorf("height at %.2f,%.2f: no tile: %w", x, y, ErrNoHeightCandidate)
	}

	var (
		z     float32
		found bool
	)
	ray := geom.NewRay(geom.Vector3{x, y, zHint + heightRayReach}, geom.Vector3{x, y, zHint - heightRayReach})
	if m.castRay(ray, []*Tile{tile}, true).found {
		z = ray.HitPoint().Z()
		found = true
	}
	if h, ok := tile.height(x, y); ok && (!found || h > z) {
		z = h
		found = true
	}
	if !found {
		return 0, fmt.Errorf("height at %.2f,%.2f near %.2f: %w", x, y, zHint, ErrNoHeightCandidate)
	}
	return z, nil
}

// FindHeight returns the height of the surface at (x, y) closest to the
// height of source, as needed for the next hop of a path.
func (m *Map) FindHeight(source geom.Vector3, x, y float32) (float32, bool) {
	var (
		hint float32
		best = float32(math.Inf(1))
	)
	for _, ref := range m.nav.PolysAt(x, y) {
		h, ok := m.nav.PolyHeight(ref, x, y)
		if !ok {
			continue
		}
		if d := float32(math.Abs(float64(h - source.Z()))); d < best {
			best = d
			hint = h
		}
	}
	if math.IsInf(float64(best), 1) {
		return 0, false
	}
	z, err := m.FindPreciseZ(x, y, hint)
	if err != nil {
		return hint, true
	}
	return z, true
}

package pathfind

import (
	"cmp"
	"maps"
	"slices"

	"github.com/udisondev/pathfind/internal/geom"
	"github.com/udisondev/pathfind/internal/heightfield"
	"github.com/udisondev/pathfind/internal/navmesh"
)

type tileKey struct {
	x, y int32
}

// Tile is a loaded navigation tile.
type Tile struct {
	x, y   int32
	bounds geom.BoundingBox

	wmoIDs    []uint32
	doodadIDs []uint32
	models    []*ModelHandle
	temporary map[uint64]*DoodadInstance

	quad *QuadHeights

	// header describes the persisted height field whose encoded spans are
	// kept in spans. hf is nil until materialized.
	header heightfield.Header
	spans  []byte
	hf     *heightfield.Heightfield
	source string

	navRef  navmesh.TileRef
	navData []byte
}

// Coords returns the tile coordinates.
func (t *Tile) Coords() (int32, int32) { return t.x, t.y }

// Bounds returns the world bounds of the tile.
func (t *Tile) Bounds() geom.BoundingBox { return t.bounds }

// NavRef returns the navmesh registration of the tile, zero when the tile
// has no walkable polygons.
func (t *Tile) NavRef() navmesh.TileRef { return t.navRef }

// Quad returns the terrain samples, nil for tiles without terrain.
func (t *Tile) Quad() *QuadHeights { return t.quad }

// HeightFieldLoaded reports whether the voxel data is materialized.
func (t *Tile) HeightFieldLoaded() bool { return t.hf != nil }

// WMOs returns the static WMO instance ids of the tile.
func (t *Tile) WMOs() []uint32 { return t.wmoIDs }

// Doodads returns the static doodad instance ids of the tile.
func (t *Tile) Doodads() []uint32 { return t.doodadIDs }

// Temporary returns the temporary obstacles touching the tile, by GUID.
func (t *Tile) Temporary() []*DoodadInstance {
	out := make([]*DoodadInstance, 0, len(t.temporary))
	for _, guid := range slices.Sorted(maps.Keys(t.temporary)) {
		out = append(out, t.temporary[guid])
	}
	return out
}

// height returns the terrain height at (x, y).
func (t *Tile) height(x, y float32) (float32, bool) {
	if t.quad == nil {
		return 0, false
	}
	return t.quad.Height(t.x, t.y, x, y)
}

func (t *Tile) releaseModels() {
	for _, h := range t.models {
		h.Release()
	}
	t.models = nil
}

func sortTiles(tiles []*Tile) {
	slices.SortFunc(tiles, compareTiles)
}

func compareTiles(a, b *Tile) int {
	if c := cmp.Compare(a.x, b.x); c != 0 {
		return c
	}
	return cmp.Compare(a.y, b.y)
}

// Package navmesh runs the tiled navigation mesh of a map on detour. Tiles
// built from voxel height fields are added and removed while the map is
// live; path, height and random point queries share one detour query.
//
// Detour is y-up. World positions (x, y, z) map to detour (y, z, x).
package navmesh

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/arl/go-detour/detour"
	"github.com/arl/gogeo/f32/d3"

	"github.com/udisondev/pathfind/internal/geom"
)

var (
	ErrWrongMagic   = errors.New("wrong navmesh tile magic")
	ErrWrongVersion = errors.New("wrong navmesh tile version")
	ErrInvalidRef   = errors.New("invalid navmesh reference")
	ErrTooManyPolys = errors.New("too many polygons in tile")
	ErrTooManyVerts = errors.New("too many vertices in tile")
	ErrFailed       = errors.New("navmesh operation failed")
)

// PolyRef addresses a polygon of a loaded tile. Zero is never valid.
type PolyRef = detour.PolyRef

// TileRef addresses a loaded tile. Zero is never valid.
type TileRef = detour.TileRef

// Params places the tile grid in world space and sizes the mesh.
type Params struct {
	// Origin is the tile space corner with the smallest X and Y.
	Origin   geom.Vector3
	TileSize float32
	MaxTiles int
	MaxPolys int // per tile
	MaxNodes int // search nodes of the shared query
}

// TileLoc returns the detour grid cell holding world position pos.
func (p Params) TileLoc(pos geom.Vector3) (int32, int32) {
	tx := math.Floor(float64((pos.Y() - p.Origin.Y()) / p.TileSize))
	ty := math.Floor(float64((pos.X() - p.Origin.X()) / p.TileSize))
	return int32(tx), int32(ty)
}

func toDetour(v geom.Vector3) d3.Vec3 {
	return d3.NewVec3XYZ(v.Y(), v.Z(), v.X())
}

func fromDetour(v d3.Vec3) geom.Vector3 {
	return geom.Vector3{v[2], v[0], v[1]}
}

// statusError wraps a failed detour status.
func statusError(op string, st detour.Status) error {
	err := ErrFailed
	switch {
	case st&detour.WrongMagic != 0:
		err = ErrWrongMagic
	case st&detour.WrongVersion != 0:
		err = ErrWrongVersion
	case st&detour.InvalidParam != 0:
		err = ErrInvalidRef
	}
	return fmt.Errorf("%s: status %#x: %w", op, uint32(st), err)
}

// NavMesh holds the loaded tiles. It is not safe for concurrent use.
type NavMesh struct {
	params Params
	mesh   *detour.NavMesh
	query  *detour.NavMeshQuery
	filter detour.QueryFilter
	tiles  int
}

// New returns an empty mesh laid out by p.
func New(p Params) (*NavMesh, error) {
	orig := toDetour(p.Origin)
	mesh := &detour.NavMesh{}
	st := mesh.Init(&detour.NavMeshParams{
		Orig:       [3]float32{orig[0], orig[1], orig[2]},
		TileWidth:  p.TileSize,
		TileHeight: p.TileSize,
		MaxTiles:   uint32(p.MaxTiles),
		MaxPolys:   uint32(p.MaxPolys),
	})
	if detour.StatusFailed(st) {
		return nil, statusError("init navmesh", st)
	}
	st, query := detour.NewNavMeshQuery(mesh, int32(p.MaxNodes))
	if detour.StatusFailed(st) {
		return nil, statusError("init navmesh query", st)
	}
	return &NavMesh{
		params: p,
		mesh:   mesh,
		query:  query,
		filter: detour.NewStandardQueryFilter(),
	}, nil
}

// Params returns the grid layout.
func (n *NavMesh) Params() Params { return n.params }

// TileCount is the number of loaded tiles.
func (n *NavMesh) TileCount() int { return n.tiles }

// AddTile registers tile data built by BuildTile. Detour owns the slice it
// is handed, so data itself is left untouched.
func (n *NavMesh) AddTile(data []byte) (TileRef, error) {
	st, ref := n.mesh.AddTile(slices.Clone(data), 0)
	if detour.StatusFailed(st) {
		return 0, statusError("add tile", st)
	}
	n.tiles++
	return ref, nil
}

// RemoveTile unregisters a tile. Polygon refs of the tile become invalid.
func (n *NavMesh) RemoveTile(ref TileRef) error {
	if !n.HasTile(ref) {
		return fmt.Errorf("remove tile %#x: %w", ref, ErrInvalidRef)
	}
	if _, st := n.mesh.RemoveTile(ref); detour.StatusFailed(st) {
		return statusError("remove tile", st)
	}
	n.tiles--
	return nil
}

// HasTile reports whether ref addresses a loaded tile.
func (n *NavMesh) HasTile(ref TileRef) bool {
	return ref != 0 && n.mesh.TileByRef(ref) != nil
}

// TileRefAt returns the tile loaded at the grid cell holding world position
// pos.
func (n *NavMesh) TileRefAt(pos geom.Vector3) (TileRef, bool) {
	tx, ty := n.params.TileLoc(pos)
	tile := n.mesh.TileAt(tx, ty, 0)
	if tile == nil {
		return 0, false
	}
	return n.mesh.TileRef(tile), true
}

// IsValidPolyRef reports whether ref addresses a polygon of a loaded tile.
func (n *NavMesh) IsValidPolyRef(ref PolyRef) bool {
	return n.mesh.IsValidPolyRef(ref)
}

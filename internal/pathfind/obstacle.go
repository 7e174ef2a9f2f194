package pathfind

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/pathfind/internal/geom"
	"github.com/udisondev/pathfind/internal/heightfield"
	"github.com/udisondev/pathfind/internal/navmesh"
)

// AddGameObjectWithOrientation places a game object rotated by orientation
// radians around Z.
func (m *Map) AddGameObjectWithOrientation(guid uint64, displayID uint32, position geom.Vector3, orientation float32, doodadSet uint16) error {
	return m.AddGameObject(guid, displayID, position, geom.RotationZ(orientation), doodadSet)
}

// AddGameObjectWithQuaternion places a game object rotated by q.
func (m *Map) AddGameObjectWithQuaternion(guid uint64, displayID uint32, position geom.Vector3, q mgl32.Quat, doodadSet uint16) error {
	return m.AddGameObject(guid, displayID, position, geom.FromQuaternion(q), doodadSet)
}

// AddGameObject places the model of displayID as a temporary obstacle and
// rebuilds the mesh of every loaded tile it overlaps. The doodad set only
// applies to WMO models, which are not supported as obstacles. An obstacle
// outside the loaded tiles is dropped.
func (m *Map) AddGameObject(guid uint64, displayID uint32, position geom.Vector3, rotation geom.Matrix, doodadSet uint16) error {
	if _, ok := m.temporary[guid]; ok {
		return fmt.Errorf("game object %d: %w", guid, ErrDuplicateGameObject)
	}
	key, ok := m.index.DisplayModel(displayID)
	if !ok {
		return &DanglingReferenceError{Kind: "display", ID: displayID}
	}
	if IsWMOKey(key) {
		return fmt.Errorf("game object %d: wmo %s (doodad set %d): %w", guid, key, doodadSet, ErrUnsupportedFeature)
	}

	h, err := m.cache.EnsureDoodad(key)
	if err != nil {
		return fmt.Errorf("game object %d: %w", guid, err)
	}
	transform := geom.Translation(position).Mul4(rotation)
	inverse, err := geom.Inverse(transform)
	if err != nil {
		h.Release()
		return fmt.Errorf("game object %d: %w", guid, err)
	}
	verts := geom.TransformPoints(transform, h.Model().Index.Vertices())
	inst := &DoodadInstance{
		ID:        guid,
		Transform: transform,
		Inverse:   inverse,
		Bounds:    geom.BoxFromPoints(verts),
		ModelKey:  key,
		model:     h.Weak(),
		Vertices:  verts,
		handle:    h,
	}

	var tiles []*Tile
	for _, t := range m.tiles {
		if t.bounds.Intersects2D(inst.Bounds) {
			tiles = append(tiles, t)
		}
	}
	if len(tiles) == 0 {
		slog.Debug("game object outside loaded tiles", "map", m.name, "guid", guid, "display", displayID)
		h.Release()
		return nil
	}
	sortTiles(tiles)

	builds := make([]tileBuild, 0, len(tiles))
	for _, t := range tiles {
		current, err := m.heightField(t)
		if err != nil {
			h.Release()
			return fmt.Errorf("game object %d: %w", guid, err)
		}
		hf := current.Clone()
		rasterizeObstacles(hf, inst)
		b, err := buildTile(t, hf)
		if err != nil {
			h.Release()
			return fmt.Errorf("game object %d: %w", guid, err)
		}
		builds = append(builds, b)
	}

	var errs []error
	for _, b := range builds {
		if err := m.commitTile(b); err != nil {
			errs = append(errs, err)
			continue
		}
		b.tile.temporary[guid] = inst
		inst.tiles++
	}
	if inst.tiles == 0 {
		h.Release()
	} else {
		m.temporary[guid] = inst
	}
	slog.Debug("game object added", "map", m.name, "guid", guid, "model", key, "tiles", inst.tiles)
	return errors.Join(errs...)
}

// RemoveGameObject removes a temporary obstacle and rebuilds the tiles it
// touched from their persisted height fields and the remaining obstacles.
// It reports whether guid was registered.
func (m *Map) RemoveGameObject(guid uint64) (bool, error) {
	inst, ok := m.temporary[guid]
	if !ok {
		return false, nil
	}

	var tiles []*Tile
	for _, t := range m.tiles {
		if _, ok := t.temporary[guid]; ok {
			tiles = append(tiles, t)
		}
	}
	sortTiles(tiles)

	builds := make([]tileBuild, 0, len(tiles))
	for _, t := range tiles {
		hf, err := m.baseHeightField(t)
		if err != nil {
			return false, fmt.Errorf("game object %d: %w", guid, err)
		}
		remaining := slices.DeleteFunc(t.Temporary(), func(o *DoodadInstance) bool { return o.ID == guid })
		if len(remaining) > 0 {
			rasterizeObstacles(hf, remaining...)
		}
		b, err := buildTile(t, hf)
		if err != nil {
			return false, fmt.Errorf("game object %d: %w", guid, err)
		}
		builds = append(builds, b)
	}

	var errs []error
	for _, b := range builds {
		if err := m.commitTile(b); err != nil {
			errs = append(errs, err)
		}
		delete(b.tile.temporary, guid)
	}
	delete(m.temporary, guid)
	inst.handle.Release()
	slog.Debug("game object removed", "map", m.name, "guid", guid, "tiles", len(tiles))
	return true, errors.Join(errs...)
}

// tileBuild is a rebuilt tile waiting to be committed.
type tileBuild struct {
	tile *Tile
	hf   *heightfield.Heightfield
	mesh []byte
}

func buildTile(t *Tile, hf *heightfield.Heightfield) (tileBuild, error) {
	data, err := navmesh.BuildTile(hf, NavParams, BuildConfig)
	if err != nil {
		return tileBuild{}, fmt.Errorf("building tile %d,%d: %w", t.x, t.y, err)
	}
	return tileBuild{tile: t, hf: hf, mesh: data}, nil
}

// rasterizeObstacles voxelizes obstacles into hf and drops ledges. Ground
// spans keep their area through the ledge filter; the remaining filters run
// in the recast build.
func rasterizeObstacles(hf *heightfield.Heightfield, obstacles ...*DoodadInstance) {
	for _, o := range obstacles {
		indices := o.handle.Model().Index.Indices()
		areas := heightfield.MarkWalkableTriangles(WalkableSlope, o.Vertices, indices, heightfield.AreaDoodad)
		hf.RasterizeTriangles(o.Vertices, indices, areas, VoxelWalkableClimb)
	}

	ground := hf.SnapshotArea(heightfield.AreaGround)
	hf.FilterLedgeSpans(VoxelWalkableHeight, VoxelWalkableClimb)
	hf.Restore(ground)
}

func (m *Map) commitTile(b tileBuild) error {
	if err := m.replaceNavTile(b.tile, b.mesh); err != nil {
		return err
	}
	b.tile.hf = b.hf
	return nil
}

// replaceNavTile swaps the mesh registration of t. When the new mesh cannot
// be registered the previous one is restored.
func (m *Map) replaceNavTile(t *Tile, mesh []byte) error {
	old := t.navData
	if t.navRef != 0 {
		if err := m.nav.RemoveTile(t.navRef); err != nil {
			return fmt.Errorf("removing tile %d,%d: %w", t.x, t.y, err)
		}
		t.navRef = 0
	}
	t.navData = nil

	if len(mesh) > 0 {
		ref, err := m.nav.AddTile(mesh)
		if err != nil {
			if len(old) > 0 {
				if ref, rerr := m.nav.AddTile(old); rerr == nil {
					t.navRef = ref
					t.navData = old
				} else {
					slog.Error("restore nav tile", "map", m.name, "x", t.x, "y", t.y, "err", rerr)
				}
			}
			return fmt.Errorf("adding tile %d,%d: %w", t.x, t.y, err)
		}
		t.navRef = ref
		t.navData = mesh
	}
	return nil
}

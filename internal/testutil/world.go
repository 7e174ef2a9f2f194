package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/udisondev/pathfind/internal/bvh"
	"github.com/udisondev/pathfind/internal/geom"
	"github.com/udisondev/pathfind/internal/heightfield"
	"github.com/udisondev/pathfind/internal/navmesh"
	"github.com/udisondev/pathfind/internal/pathfind"
)

// Synthetic world layout written by BuildWorld.
//
// Terrain map "testmap" has regions (0,0) with tiles (0,0) and (1,0), and
// (1,0) with tile (16,0). The ground is flat at z=0. Tile (0,0) holds the
// house WMO, tile (1,0) a rock doodad. Quad (0,0) of tile (0,0) is a hole.
//
// Map "testinstance" has no terrain: a single global house WMO and one tile
// at (0,0).
const (
	TerrainMap  = "testmap"
	InstanceMap = "testinstance"

	HouseKey  = "World/WMO/TestHouse.wmo"
	BarrelKey = "World/Doodad/Barrel.m2"
	RockKey   = "World/Doodad/Rock.m2"
	CrateKey  = "World/Doodad/Crate.m2"

	HouseID uint32 = 1
	RockID  uint32 = 7

	CrateDisplay uint32 = 100
	HouseDisplay uint32 = 200

	TerrainZone uint32 = 1
	TerrainArea uint32 = 2
	HouseZone   uint32 = 5678
	HouseArea   uint32 = 1234

	HouseHeight = 4
	CrateHeight = 1

	groundBottom = -5
	fieldTop     = 20
)

var (
	// HouseCenter is the world position of the house origin.
	HouseCenter = geom.Vector3{17050, 17050, 0}
	// RockCenter is the world position of the rock origin.
	RockCenter = geom.Vector3{17050, 17020, 0}
	// BarrelOffset is the barrel placement inside the house, on its roof.
	BarrelOffset = geom.Vector3{2, 2, HouseHeight}
	// HolePoint lies in the terrain hole of tile (0,0).
	HolePoint = geom.Vector3{17064, 17064, 0}
	// OpenGround lies on plain terrain of tile (0,0).
	OpenGround = geom.Vector3{17040, 17058, 0}
)

// World is a data directory holding the synthetic maps.
type World struct {
	DataPath string
}

// BuildWorld writes the synthetic world into a temporary directory.
func BuildWorld(t testing.TB) *World {
	t.Helper()

	w := &World{DataPath: t.TempDir()}
	w.writeModels(t)

	house := placement(HouseCenter, houseModel().Tree, heightfield.AreaWMO)
	rock := placement(RockCenter, boxModel(0.5, 1).Tree, heightfield.AreaDoodad)

	mf := &pathfind.MapFile{HasTerrain: true}
	mf.SetRegion(0, 0)
	mf.SetRegion(1, 0)
	mf.WMOs = []pathfind.WMORecord{{
		ID:        HouseID,
		Transform: house.transform,
		Bounds:    house.bounds,
		ModelKey:  HouseKey,
	}}
	mf.Doodads = []pathfind.DoodadRecord{{
		ID:        RockID,
		Transform: rock.transform,
		Bounds:    rock.bounds,
		ModelKey:  RockKey,
	}}
	w.write(t, TerrainMap+".map", mf.Encode())

	w.writeNav(t, pathfind.RegionPath(w.DataPath, TerrainMap, 0, 0), &pathfind.NavFile{
		Kind: pathfind.NavKindADT,
		Tiles: []pathfind.TileRecord{
			terrainTile(t, 0, 0, true, []uint32{HouseID}, nil, house),
			terrainTile(t, 1, 0, false, nil, []uint32{RockID}, rock),
		},
	})
	w.writeNav(t, pathfind.RegionPath(w.DataPath, TerrainMap, 1, 0), &pathfind.NavFile{
		Kind:  pathfind.NavKindADT,
		X:     1,
		Tiles: []pathfind.TileRecord{terrainTile(t, 16, 0, false, nil, nil)},
	})

	global := pathfind.WMORecord{
		ID:        pathfind.GlobalWMOID,
		Transform: house.transform,
		Bounds:    house.bounds,
		ModelKey:  HouseKey,
	}
	instance := &pathfind.MapFile{GlobalWMO: &global}
	w.write(t, InstanceMap+".map", instance.Encode())

	hf := newTileField(0, 0)
	house.rasterize(hf)
	w.writeNav(t, pathfind.GlobalPath(w.DataPath, InstanceMap), &pathfind.NavFile{
		Kind: pathfind.NavKindWMO,
		X:    0xFFFFFFFF,
		Y:    0xFFFFFFFF,
		Tiles: []pathfind.TileRecord{{
			HeightField: hf,
			Mesh:        mesh(t, hf, 0, 0),
		}},
	})
	return w
}

// Index reads the model index of the world.
func (w *World) Index(t testing.TB) *pathfind.ModelIndex {
	t.Helper()
	ix, err := pathfind.LoadModelIndex(filepath.Join(w.DataPath, pathfind.ModelDir))
	if err != nil {
		t.Fatalf("load model index: %v", err)
	}
	return ix
}

func (w *World) write(t testing.TB, name string, data []byte) {
	t.Helper()
	path := filepath.Join(w.DataPath, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func (w *World) writeNav(t testing.TB, path string, f *pathfind.NavFile) {
	t.Helper()
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("encode nav file: %v", err)
	}
	rel, err := filepath.Rel(w.DataPath, path)
	if err != nil {
		t.Fatalf("nav path: %v", err)
	}
	w.write(t, rel, data)
}

func (w *World) writeModels(t testing.TB) {
	t.Helper()
	ix := pathfind.NewModelIndex(filepath.Join(w.DataPath, pathfind.ModelDir))
	models := []struct {
		key  string
		file string
		f    *pathfind.ModelFile
	}{
		{HouseKey, "testhouse.bvh", houseModel()},
		{BarrelKey, "barrel.bvh", boxModel(0.5, 1)},
		{RockKey, "rock.bvh", boxModel(0.5, 1)},
		{CrateKey, "crate.bvh", boxModel(1, CrateHeight)},
	}
	for _, m := range models {
		ix.AddModel(m.key, m.file)
		w.write(t, filepath.Join(pathfind.ModelDir, m.file), m.f.Encode())
	}
	ix.AddDisplay(CrateDisplay, CrateKey)
	ix.AddDisplay(HouseDisplay, HouseKey)
	w.write(t, filepath.Join(pathfind.ModelDir, pathfind.IndexFileName), ix.Encode())
}

// Box returns a closed box with outward facing counter-clockwise triangles.
func Box(lo, hi geom.Vector3) ([]geom.Vector3, []int32) {
	verts := make([]geom.Vector3, 8)
	for i := range verts {
		for axis := range 3 {
			if i&(1<<axis) != 0 {
				verts[i][axis] = hi[axis]
			} else {
				verts[i][axis] = lo[axis]
			}
		}
	}
	indices := []int32{
		0, 2, 1, 1, 2, 3, // bottom
		4, 5, 6, 5, 7, 6, // top
		0, 1, 5, 0, 5, 4, // -y
		2, 6, 7, 2, 7, 3, // +y
		0, 4, 6, 0, 6, 2, // -x
		1, 3, 7, 1, 7, 5, // +x
	}
	return verts, indices
}

// boxModel is a doodad box of half width half standing on the origin.
func boxModel(half, height float32) *pathfind.ModelFile {
	verts, indices := Box(geom.Vector3{-half, -half, 0}, geom.Vector3{half, half, height})
	return &pathfind.ModelFile{Kind: pathfind.ModelDoodad, Tree: bvh.Build(verts, indices)}
}

func houseModel() *pathfind.ModelFile {
	verts, indices := Box(geom.Vector3{-3, -3, 0}, geom.Vector3{3, 3, HouseHeight})
	barrel := geom.Translation(BarrelOffset)
	barrelBox := geom.BoundingBox{Min: geom.Vector3{-0.5, -0.5, 0}, Max: geom.Vector3{0.5, 0.5, 1}}
	return &pathfind.ModelFile{
		Kind:     pathfind.ModelWMO,
		Tree:     bvh.Build(verts, indices),
		RootID:   42,
		NameSets: map[uint32]pathfind.AreaZone{0: {Area: HouseArea, Zone: HouseZone}},
		DoodadSets: [][]pathfind.PlacementRecord{{{
			Transform: barrel,
			Bounds:    barrelBox.Transform(barrel),
			ModelKey:  BarrelKey,
		}}},
	}
}

type placed struct {
	transform geom.Matrix
	bounds    geom.BoundingBox
	verts     []geom.Vector3
	indices   []int32
	area      uint32
}

func placement(at geom.Vector3, tree *bvh.Tree, area uint32) placed {
	m := geom.Translation(at)
	verts := geom.TransformPoints(m, tree.Vertices())
	return placed{
		transform: m,
		bounds:    geom.BoxFromPoints(verts),
		verts:     verts,
		indices:   tree.Indices(),
		area:      area,
	}
}

func (p placed) rasterize(hf *heightfield.Heightfield) {
	areas := heightfield.MarkWalkableTriangles(pathfind.WalkableSlope, p.verts, p.indices, p.area)
	hf.RasterizeTriangles(p.verts, p.indices, areas, pathfind.VoxelWalkableClimb)
}

// newTileField returns the empty height field covering tile (x, y) and its
// build border.
func newTileField(x, y int32) *heightfield.Heightfield {
	nwX, nwY := pathfind.TileNorthwestCorner(x, y)
	border := float32(pathfind.BorderCells) * float32(pathfind.CellSize)
	return heightfield.New(heightfield.Header{
		Width:      pathfind.TileVoxelSize + 2*pathfind.BorderCells,
		Height:     pathfind.TileVoxelSize + 2*pathfind.BorderCells,
		BMin:       geom.Vector3{nwX - pathfind.TileSize - border, nwY - pathfind.TileSize - border, groundBottom},
		BMax:       geom.Vector3{nwX + border, nwY + border, fieldTop},
		CellSize:   pathfind.CellSize,
		CellHeight: pathfind.CellHeight,
	})
}

// terrainTile builds a flat ground tile with the given placements
// rasterized into it.
func terrainTile(t testing.TB, x, y int32, hole bool, wmos, doodads []uint32, objects ...placed) pathfind.TileRecord {
	t.Helper()

	hf := newTileField(x, y)
	top := uint32(-groundBottom / pathfind.CellHeight)
	for cy := range int(hf.Height) {
		for cx := range int(hf.Width) {
			hf.AddSpan(cx, cy, top-4, top, heightfield.AreaGround, pathfind.VoxelWalkableClimb)
		}
	}
	for _, o := range objects {
		o.rasterize(hf)
	}
	ground := hf.SnapshotArea(heightfield.AreaGround)
	hf.FilterLedgeSpans(pathfind.VoxelWalkableHeight, pathfind.VoxelWalkableClimb)
	hf.Restore(ground)

	quad := &pathfind.QuadHeights{ZoneID: TerrainZone, AreaID: TerrainArea}
	if hole {
		quad.SetHole(0, 0)
	}
	return pathfind.TileRecord{
		X:           uint32(x),
		Y:           uint32(y),
		WMOs:        wmos,
		Doodads:     doodads,
		Quad:        quad,
		HeightField: hf,
		Mesh:        mesh(t, hf, x, y),
	}
}

func mesh(t testing.TB, hf *heightfield.Heightfield, x, y int32) []byte {
	t.Helper()
	data, err := navmesh.BuildTile(hf, pathfind.NavParams, pathfind.BuildConfig)
	if err != nil {
		t.Fatalf("build tile %d,%d: %v", x, y, err)
	}
	return data
}

package pathfind

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/udisondev/pathfind/internal/geom"
	"github.com/udisondev/pathfind/internal/navmesh"
)

// ModelDir is the model directory below the data path.
const ModelDir = "BVH"

// Options tunes a Map.
type Options struct {
	// Index resolves model keys and display ids. When nil the index is read
	// from the model directory of the data path.
	Index *ModelIndex
	// EagerHeightFields materializes height field spans while loading tiles
	// instead of on the first obstacle insertion.
	EagerHeightFields bool
	// LoadWorkers bounds the concurrent file reads of LoadAllRegions.
	// Defaults to GOMAXPROCS.
	LoadWorkers int
}

// Map is the navigation and query engine of one world map. A Map is not
// safe for concurrent use.
type Map struct {
	dataPath string
	name     string
	opts     Options

	index    *ModelIndex
	cache    *ModelCache
	registry *InstanceRegistry
	nav      *navmesh.NavMesh

	tiles     map[tileKey]*Tile
	loaded    [Regions * Regions]bool
	temporary map[uint64]*DoodadInstance
}

// New opens map mapName stored under dataPath. A map without terrain loads
// all of its tiles immediately; terrain maps load regions on demand.
func New(dataPath, mapName string, opts Options) (*Map, error) {
	if opts.LoadWorkers <= 0 {
		opts.LoadWorkers = runtime.GOMAXPROCS(0)
	}
	index := opts.Index
	if index == nil {
		var err error
		index, err = LoadModelIndex(filepath.Join(dataPath, ModelDir))
		if err != nil {
			return nil, err
		}
	}

	path := filepath.Join(dataPath, mapName+".map")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map %s: %w", mapName, err)
	}
	f, err := DecodeMapFile(data)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	registry, err := NewInstanceRegistry(f)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}

	nav, err := navmesh.New(NavParams)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", mapName, err)
	}

	m := &Map{
		dataPath:  dataPath,
		name:      mapName,
		opts:      opts,
		index:     index,
		cache:     NewModelCache(index),
		registry:  registry,
		nav:       nav,
		tiles:     make(map[tileKey]*Tile),
		temporary: make(map[uint64]*DoodadInstance),
	}

	if !registry.HasTerrain() {
		if err := m.loadGlobalTiles(); err != nil {
			return nil, err
		}
	}

	wmos, doodads := registry.Len()
	slog.Info("map opened", "map", mapName, "terrain", registry.HasTerrain(), "wmos", wmos, "doodads", doodads, "tiles", len(m.tiles))
	return m, nil
}

// Name returns the map name.
func (m *Map) Name() string { return m.name }

// NavMesh exposes the navigation mesh of the loaded tiles.
func (m *Map) NavMesh() *navmesh.NavMesh { return m.nav }

// Models exposes the model cache.
func (m *Map) Models() *ModelCache { return m.cache }

// Instances exposes the static placements.
func (m *Map) Instances() *InstanceRegistry { return m.registry }

// Tile returns the loaded tile (x, y).
func (m *Map) Tile(x, y int32) (*Tile, bool) {
	t, ok := m.tiles[tileKey{x, y}]
	return t, ok
}

// TileCount is the number of loaded tiles.
func (m *Map) TileCount() int { return len(m.tiles) }

// GameObjects is the number of registered temporary obstacles.
func (m *Map) GameObjects() int { return len(m.temporary) }

// Close unloads every tile, dropping all model references.
func (m *Map) Close() {
	for _, t := range m.tiles {
		m.unloadTile(t)
	}
	clear(m.loaded[:])
}

// tileAt returns the loaded tile containing world (x, y).
func (m *Map) tileAt(x, y float32) *Tile {
	tx, ty := WorldToTile(x, y)
	return m.tiles[tileKey{tx, ty}]
}

// tilesAlong returns the loaded tiles whose bounds the ray crosses, in tile
// order.
func (m *Map) tilesAlong(ray *geom.Ray) []*Tile {
	var out []*Tile
	for _, t := range m.tiles {
		if d, ok := ray.IntersectBox(t.bounds); ok && d <= 1 {
			out = append(out, t)
		}
	}
	sortTiles(out)
	return out
}

func (m *Map) loadModelForWMOInstance(id uint32) (*ModelHandle, error) {
	inst, err := m.registry.WMO(id)
	if err != nil {
		return nil, err
	}
	h, err := m.cache.EnsureWMO(inst.ModelKey)
	if err != nil {
		return nil, fmt.Errorf("wmo instance %d: %w", id, err)
	}
	inst.model = h.Weak()
	return h, nil
}

func (m *Map) loadModelForDoodadInstance(id uint32) (*ModelHandle, error) {
	inst, err := m.registry.Doodad(id)
	if err != nil {
		return nil, err
	}
	h, err := m.cache.EnsureDoodad(inst.ModelKey)
	if err != nil {
		return nil, fmt.Errorf("doodad instance %d: %w", id, err)
	}
	inst.model = h.Weak()
	return h, nil
}

package pathfind

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/pathfind/internal/binio"
	"github.com/udisondev/pathfind/internal/heightfield"
)

// NavDir is the tile file directory below the data path.
const NavDir = "Nav"

// RegionPath returns the tile file of region (x, y).
func RegionPath(dataPath, mapName string, x, y int) string {
	return filepath.Join(dataPath, NavDir, mapName, fmt.Sprintf("%02d_%02d.nav", x, y))
}

// GlobalPath returns the tile file of a map without terrain.
func GlobalPath(dataPath, mapName string) string {
	return filepath.Join(dataPath, NavDir, mapName, "Map.nav")
}

// HasRegions reports whether the map is made of terrain regions.
func (m *Map) HasRegions() bool {
	return m.registry.HasTerrain()
}

// HasRegion reports whether region (x, y) exists in the map.
func (m *Map) HasRegion(x, y int) bool {
	return m.registry.HasRegion(x, y)
}

// IsRegionLoaded reports whether region (x, y) is loaded.
func (m *Map) IsRegionLoaded(x, y int) bool {
	return validRegion(x, y) && m.loaded[y*Regions+x]
}

// LoadRegion loads every tile of region (x, y). It returns false when the
// region does not exist or its file is missing. On error no tile of the
// region stays loaded.
func (m *Map) LoadRegion(x, y int) (bool, error) {
	if !m.HasRegion(x, y) {
		return false, nil
	}
	if m.IsRegionLoaded(x, y) {
		return true, nil
	}

	path := RegionPath(m.dataPath, m.name, x, y)
	data, err := readNavFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("region file missing", "map", m.name, "x", x, "y", y, "file", path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading region %d,%d: %w", x, y, err)
	}

	n, err := m.applyNavFile(path, data, uint32(x), uint32(y))
	if err != nil {
		return false, err
	}
	m.loaded[y*Regions+x] = true
	slog.Info("region loaded", "map", m.name, "x", x, "y", y, "tiles", n)
	return true, nil
}

// UnloadRegion unloads every tile of region (x, y).
func (m *Map) UnloadRegion(x, y int) {
	if !m.IsRegionLoaded(x, y) {
		return
	}
	n := 0
	for tx := x * TilesPerRegion; tx < (x+1)*TilesPerRegion; tx++ {
		for ty := y * TilesPerRegion; ty < (y+1)*TilesPerRegion; ty++ {
			if t, ok := m.tiles[tileKey{int32(tx), int32(ty)}]; ok {
				m.unloadTile(t)
				n++
			}
		}
	}
	m.loaded[y*Regions+x] = false
	slog.Info("region unloaded", "map", m.name, "x", x, "y", y, "tiles", n)
}

// LoadAllRegions loads every region not loaded yet and returns how many were
// loaded. Files are read concurrently and applied in region order.
func (m *Map) LoadAllRegions() (int, error) {
	type pending struct {
		x, y int
		path string
		data []byte
	}
	var regions []pending
	for y := range Regions {
		for x := range Regions {
			if m.HasRegion(x, y) && !m.IsRegionLoaded(x, y) {
				regions = append(regions, pending{x: x, y: y, path: RegionPath(m.dataPath, m.name, x, y)})
			}
		}
	}

	var g errgroup.Group
	g.SetLimit(m.opts.LoadWorkers)
	for i := range regions {
		p := &regions[i]
		g.Go(func() error {
			data, err := readNavFile(p.path)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading region %d,%d: %w", p.x, p.y, err)
			}
			p.data = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	loaded := 0
	for _, p := range regions {
		if p.data == nil {
			slog.Warn("region file missing", "map", m.name, "x", p.x, "y", p.y, "file", p.path)
			continue
		}
		if _, err := m.applyNavFile(p.path, p.data, uint32(p.x), uint32(p.y)); err != nil {
			return loaded, err
		}
		m.loaded[p.y*Regions+p.x] = true
		loaded++
	}
	slog.Info("regions loaded", "map", m.name, "regions", loaded, "tiles", len(m.tiles))
	return loaded, nil
}

func (m *Map) loadGlobalTiles() error {
	path := GlobalPath(m.dataPath, m.name)
	data, err := readNavFile(path)
	if err != nil {
		return fmt.Errorf("reading map tiles: %w", err)
	}
	_, err = m.applyNavFile(path, data, globalTileCoord, globalTileCoord)
	return err
}

// applyNavFile registers every tile of an inflated nav file. Tiles loaded by
// the call are unloaded again when any of them fails.
func (m *Map) applyNavFile(path string, data []byte, x, y uint32) (int, error) {
	r := binio.NewReader(data)
	h, err := readNavHeader(r, path)
	if err != nil {
		return 0, err
	}
	global := x == globalTileCoord
	switch {
	case global && h.kind != NavKindWMO, !global && h.kind != NavKindADT:
		return 0, formatErrorf(path, "unexpected kind %#x", h.kind)
	case h.x != x || h.y != y:
		return 0, formatErrorf(path, "file holds %d,%d", h.x, h.y)
	}

	tiles := make([]*Tile, 0, h.tiles)
	for range h.tiles {
		rec, err := m.readTileRecord(r, path)
		if err == nil && !global {
			if rx, ry := TileRegion(rec.x, rec.y); rx != int(x) || ry != int(y) {
				err = formatErrorf(path, "tile %d,%d outside region", rec.x, rec.y)
			}
		}
		var t *Tile
		if err == nil {
			t, err = m.addTile(rec, path, global)
		}
		if err != nil {
			for _, t := range tiles {
				m.unloadTile(t)
			}
			return 0, err
		}
		tiles = append(tiles, t)
	}
	return len(tiles), nil
}

type tileRecord struct {
	x, y    int32
	wmos    []uint32
	doodads []uint32
	quad    *QuadHeights
	header  heightfield.Header
	spans   []byte
	hf      *heightfield.Heightfield
	mesh    []byte
}

func (m *Map) readTileRecord(r *binio.Reader, path string) (tileRecord, error) {
	rec := tileRecord{x: r.I32(), y: r.I32()}
	rec.wmos = make([]uint32, r.Count(4))
	for i := range rec.wmos {
		rec.wmos[i] = r.U32()
	}
	rec.doodads = make([]uint32, r.Count(4))
	for i := range rec.doodads {
		rec.doodads[i] = r.U32()
	}
	if r.U8() != 0 {
		rec.quad = readQuadHeights(r)
	}

	header, err := heightfield.ReadHeader(r)
	if err != nil {
		return rec, &FormatError{Path: path, Err: err}
	}
	rec.header = header
	start := r.Offset()
	if m.opts.EagerHeightFields {
		rec.hf, err = heightfield.ReadSpans(r, header)
	} else {
		err = heightfield.SkipSpans(r, header)
	}
	if err != nil {
		return rec, &FormatError{Path: path, Err: err}
	}
	end := r.Offset()
	r.Seek(start)
	rec.spans = slices.Clone(r.Bytes(end - start))

	rec.mesh = slices.Clone(r.Bytes(r.Count(1)))
	if err := r.Err(); err != nil {
		return rec, &FormatError{Path: path, Err: err}
	}
	return rec, nil
}

// addTile resolves the models of a tile and registers its mesh.
func (m *Map) addTile(rec tileRecord, path string, global bool) (*Tile, error) {
	key := tileKey{rec.x, rec.y}
	if _, ok := m.tiles[key]; ok {
		return nil, fmt.Errorf("tile %d,%d already loaded", rec.x, rec.y)
	}

	t := &Tile{
		x:         rec.x,
		y:         rec.y,
		bounds:    rec.header.Bounds(),
		wmoIDs:    rec.wmos,
		doodadIDs: rec.doodads,
		temporary: make(map[uint64]*DoodadInstance),
		quad:      rec.quad,
		header:    rec.header,
		hf:        rec.hf,
		source:    path,
		spans:     rec.spans,
	}
	if global && !slices.Contains(t.wmoIDs, GlobalWMOID) {
		t.wmoIDs = append(t.wmoIDs, GlobalWMOID)
	}

	for _, id := range t.wmoIDs {
		h, err := m.loadModelForWMOInstance(id)
		if err != nil {
			t.releaseModels()
			return nil, fmt.Errorf("tile %d,%d: %w", t.x, t.y, err)
		}
		t.models = append(t.models, h)
	}
	for _, id := range t.doodadIDs {
		h, err := m.loadModelForDoodadInstance(id)
		if err != nil {
			t.releaseModels()
			return nil, fmt.Errorf("tile %d,%d: %w", t.x, t.y, err)
		}
		t.models = append(t.models, h)
	}

	if len(rec.mesh) > 0 {
		ref, err := m.nav.AddTile(rec.mesh)
		if err != nil {
			t.releaseModels()
			return nil, fmt.Errorf("tile %d,%d: %w", t.x, t.y, err)
		}
		t.navRef = ref
		t.navData = rec.mesh
	}

	m.tiles[key] = t
	slog.Debug("tile loaded", "map", m.name, "x", t.x, "y", t.y, "wmos", len(t.wmoIDs), "doodads", len(t.doodadIDs))
	return t, nil
}

// unloadTile removes the mesh of t, releases its models and drops its
// references to temporary obstacles.
func (m *Map) unloadTile(t *Tile) {
	if t.navRef != 0 {
		if err := m.nav.RemoveTile(t.navRef); err != nil {
			slog.Warn("remove nav tile", "map", m.name, "x", t.x, "y", t.y, "err", err)
		}
		t.navRef = 0
	}
	t.releaseModels()
	for guid, inst := range t.temporary {
		inst.tiles--
		if inst.tiles == 0 {
			delete(m.temporary, guid)
			inst.handle.Release()
		}
	}
	clear(t.temporary)
	t.hf = nil
	delete(m.tiles, tileKey{t.x, t.y})
}

// baseHeightField decodes the persisted height field of t from the span
// payload kept at load time.
func (m *Map) baseHeightField(t *Tile) (*heightfield.Heightfield, error) {
	hf, err := heightfield.ReadSpans(binio.NewReader(t.spans), t.header)
	if err != nil {
		return nil, &FormatError{Path: t.source, Err: err}
	}
	return hf, nil
}

// heightField returns the current height field of t, materializing it from
// the span payload on first use.
func (m *Map) heightField(t *Tile) (*heightfield.Heightfield, error) {
	if t.hf != nil {
		return t.hf, nil
	}
	hf, err := m.baseHeightField(t)
	if err != nil {
		return nil, err
	}
	t.hf = hf
	return hf, nil
}

package pathfind

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/udisondev/pathfind/internal/geom"
)

type cacheKey struct {
	kind ModelKind
	key  string
}

type cacheEntry struct {
	key   cacheKey
	model *Model
	refs  int
	cache *ModelCache
}

// ModelHandle is a strong reference to a cached model. The model stays
// resident until every handle to it has been released.
type ModelHandle struct {
	entry    *cacheEntry
	released bool
}

// Model returns the referenced model, or nil after Release.
func (h *ModelHandle) Model() *Model {
	if h.released {
		return nil
	}
	return h.entry.model
}

// Weak returns a non-owning reference to the same model.
func (h *ModelHandle) Weak() WeakModel {
	return WeakModel{entry: h.entry}
}

// Release drops the reference. Releasing twice is a no-op.
func (h *ModelHandle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.entry.cache.release(h.entry)
}

// WeakModel is a non-owning model reference.
type WeakModel struct {
	entry *cacheEntry
}

// Get returns the model while any strong handle exists, nil otherwise.
func (w WeakModel) Get() *Model {
	if w.entry == nil || w.entry.refs == 0 {
		return nil
	}
	return w.entry.model
}

// ModelCache keeps at most one resident copy of every model, loaded on
// first use and evicted when its last handle is released.
type ModelCache struct {
	index   *ModelIndex
	entries map[cacheKey]*cacheEntry
	loads   int
}

// NewModelCache returns an empty cache resolving keys through index.
func NewModelCache(index *ModelIndex) *ModelCache {
	return &ModelCache{
		index:   index,
		entries: make(map[cacheKey]*cacheEntry),
	}
}

// Resident is the number of models currently loaded.
func (c *ModelCache) Resident() int {
	return len(c.entries)
}

// Loads is the number of model files deserialized so far.
func (c *ModelCache) Loads() int {
	return c.loads
}

// EnsureWMO returns a handle to the WMO model stored under key.
func (c *ModelCache) EnsureWMO(key string) (*ModelHandle, error) {
	return c.ensure(cacheKey{kind: ModelWMO, key: NormalizeKey(key)})
}

// EnsureDoodad returns a handle to the doodad model stored under key.
func (c *ModelCache) EnsureDoodad(key string) (*ModelHandle, error) {
	return c.ensure(cacheKey{kind: ModelDoodad, key: NormalizeKey(key)})
}

func (c *ModelCache) ensure(k cacheKey) (*ModelHandle, error) {
	if e, ok := c.entries[k]; ok {
		e.refs++
		return &ModelHandle{entry: e}, nil
	}

	model, err := c.load(k)
	if err != nil {
		return nil, err
	}
	e := &cacheEntry{key: k, model: model, refs: 1, cache: c}
	c.entries[k] = e
	return &ModelHandle{entry: e}, nil
}

func (c *ModelCache) release(e *cacheEntry) {
	e.refs--
	if e.refs > 0 {
		return
	}
	if c.entries[e.key] == e {
		delete(c.entries, e.key)
	}
	releasePlacements(e.model)
	slog.Debug("model evicted", "kind", e.key.kind, "key", e.key.key)
	e.model = nil
}

func releasePlacements(m *Model) {
	for _, set := range m.DoodadSets {
		for i := range set {
			if set[i].handle != nil {
				set[i].handle.Release()
			}
		}
	}
}

func (c *ModelCache) load(k cacheKey) (*Model, error) {
	path, ok := c.index.ModelPath(k.key)
	if !ok {
		return nil, &DanglingReferenceError{Kind: "model", Key: k.key}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DanglingReferenceError{Kind: "model", Key: k.key, Err: err}
	}
	f, err := decodeModelFile(data, k.kind)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	c.loads++
	slog.Debug("model loaded", "kind", k.kind, "key", k.key, "faces", f.Tree.FaceCount())

	model := &Model{
		Kind:   k.kind,
		Key:    k.key,
		Index:  f.Tree,
		RootID: f.RootID,
	}
	if k.kind != ModelWMO {
		return model, nil
	}

	model.NameSets = f.NameSets
	model.DoodadSets = make([][]DoodadPlacement, len(f.DoodadSets))
	for i, set := range f.DoodadSets {
		placements := make([]DoodadPlacement, len(set))
		model.DoodadSets[i] = placements
		for j, rec := range set {
			inv, err := geom.Inverse(rec.Transform)
			if err != nil {
				releasePlacements(model)
				return nil, &FormatError{Path: path, Err: fmt.Errorf("doodad set %d placement %d: %w", i, j, err)}
			}
			h, err := c.EnsureDoodad(rec.ModelKey)
			if err != nil {
				releasePlacements(model)
				return nil, fmt.Errorf("wmo %s doodad set %d: %w", k.key, i, err)
			}
			placements[j] = DoodadPlacement{
				Transform: rec.Transform,
				Inverse:   inv,
				Bounds:    rec.Bounds,
				ModelKey:  NormalizeKey(rec.ModelKey),
				handle:    h,
			}
		}
	}
	return model, nil
}

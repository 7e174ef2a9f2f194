package pathfind

import (
	"fmt"

	"github.com/udisondev/pathfind/internal/geom"
)

// WMOInstance is a static WMO placement.
type WMOInstance struct {
	ID        uint32
	DoodadSet uint16
	NameSet   uint16
	Transform geom.Matrix
	Inverse   geom.Matrix
	Bounds    geom.BoundingBox
	ModelKey  string

	model WeakModel
}

// Model returns the placed model while some tile holds it, nil otherwise.
func (i *WMOInstance) Model() *Model {
	return i.model.Get()
}

// DoodadInstance is a doodad placement: static when read from the map file,
// temporary when added at runtime as a game object.
type DoodadInstance struct {
	ID        uint64
	Transform geom.Matrix
	Inverse   geom.Matrix
	Bounds    geom.BoundingBox
	ModelKey  string

	model WeakModel

	// Temporary instances only: world space vertices, the owning handle and
	// the number of tiles referencing the instance.
	Vertices []geom.Vector3
	handle   *ModelHandle
	tiles    int
}

// Model returns the placed model while it is resident, nil otherwise.
func (i *DoodadInstance) Model() *Model {
	return i.model.Get()
}

// InstanceRegistry holds every static placement of a map. It is built once
// from the map file and never changes.
type InstanceRegistry struct {
	hasTerrain bool
	file       *MapFile
	wmos       map[uint32]*WMOInstance
	doodads    map[uint32]*DoodadInstance
}

// NewInstanceRegistry builds the registry, precomputing every inverse
// transform.
func NewInstanceRegistry(f *MapFile) (*InstanceRegistry, error) {
	r := &InstanceRegistry{
		hasTerrain: f.HasTerrain,
		file:       f,
		wmos:       make(map[uint32]*WMOInstance, len(f.WMOs)),
		doodads:    make(map[uint32]*DoodadInstance, len(f.Doodads)),
	}

	wmos := f.WMOs
	if !f.HasTerrain && f.GlobalWMO != nil {
		wmos = []WMORecord{*f.GlobalWMO}
	}
	for _, rec := range wmos {
		inv, err := geom.Inverse(rec.Transform)
		if err != nil {
			return nil, fmt.Errorf("wmo instance %d: %w", rec.ID, err)
		}
		r.wmos[rec.ID] = &WMOInstance{
			ID:        rec.ID,
			DoodadSet: rec.DoodadSet,
			NameSet:   rec.NameSet,
			Transform: rec.Transform,
			Inverse:   inv,
			Bounds:    rec.Bounds,
			ModelKey:  NormalizeKey(rec.ModelKey),
		}
	}
	for _, rec := range f.Doodads {
		inv, err := geom.Inverse(rec.Transform)
		if err != nil {
			return nil, fmt.Errorf("doodad instance %d: %w", rec.ID, err)
		}
		r.doodads[rec.ID] = &DoodadInstance{
			ID:        uint64(rec.ID),
			Transform: rec.Transform,
			Inverse:   inv,
			Bounds:    rec.Bounds,
			ModelKey:  NormalizeKey(rec.ModelKey),
		}
	}
	return r, nil
}

// HasTerrain reports whether the map is made of terrain regions.
func (r *InstanceRegistry) HasTerrain() bool {
	return r.hasTerrain
}

// HasRegion reports whether region (x, y) exists.
func (r *InstanceRegistry) HasRegion(x, y int) bool {
	return r.hasTerrain && r.file.HasRegion(x, y)
}

// WMO returns the static WMO instance id.
func (r *InstanceRegistry) WMO(id uint32) (*WMOInstance, error) {
	inst, ok := r.wmos[id]
	if !ok {
		return nil, &DanglingReferenceError{Kind: "wmo", ID: id}
	}
	return inst, nil
}

// Doodad returns the static doodad instance id.
func (r *InstanceRegistry) Doodad(id uint32) (*DoodadInstance, error) {
	inst, ok := r.doodads[id]
	if !ok {
		return nil, &DanglingReferenceError{Kind: "doodad", ID: id}
	}
	return inst, nil
}

// Len returns the number of static WMO and doodad instances.
func (r *InstanceRegistry) Len() (wmos, doodads int) {
	return len(r.wmos), len(r.doodads)
}

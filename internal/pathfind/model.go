package pathfind

import (
	"cmp"
	"maps"
	"slices"

	"github.com/udisondev/pathfind/internal/binio"
	"github.com/udisondev/pathfind/internal/bvh"
	"github.com/udisondev/pathfind/internal/geom"
)

// ModelKind distinguishes leaf doodad models from WMO models.
type ModelKind uint8

const (
	ModelDoodad ModelKind = iota
	ModelWMO
)

func (k ModelKind) String() string {
	if k == ModelWMO {
		return "wmo"
	}
	return "doodad"
}

// AreaZone is the area and zone a WMO name set maps to.
type AreaZone struct {
	Area uint32
	Zone uint32
}

// DoodadPlacement is a doodad nested in a WMO model, in WMO local space.
type DoodadPlacement struct {
	Transform geom.Matrix
	Inverse   geom.Matrix
	Bounds    geom.BoundingBox
	ModelKey  string

	handle *ModelHandle
}

// Model returns the placed doodad model. It stays resident while the
// owning WMO model is.
func (p *DoodadPlacement) Model() *Model {
	if p.handle == nil {
		return nil
	}
	return p.handle.Model()
}

// Model is an immutable collision model shared by every instance placing it.
type Model struct {
	Kind  ModelKind
	Key   string
	Index *bvh.Tree

	// WMO models only.
	RootID     uint32
	NameSets   map[uint32]AreaZone
	DoodadSets [][]DoodadPlacement
}

// DoodadSet returns the placements of set i, or nil when the model has no
// such set.
func (m *Model) DoodadSet(i int) []DoodadPlacement {
	if i < 0 || i >= len(m.DoodadSets) {
		return nil
	}
	return m.DoodadSets[i]
}

// PlacementRecord is a nested doodad placement as stored in a WMO model file.
type PlacementRecord struct {
	Transform geom.Matrix
	Bounds    geom.BoundingBox
	ModelKey  string
}

// ModelFile is the encoded form of a model.
type ModelFile struct {
	Kind       ModelKind
	Tree       *bvh.Tree
	RootID     uint32
	NameSets   map[uint32]AreaZone
	DoodadSets [][]PlacementRecord
}

// Encode serializes the model. The WMO trailer is written for WMO models only.
func (f *ModelFile) Encode() []byte {
	w := binio.NewWriter()
	f.Tree.Serialize(w)
	if f.Kind != ModelWMO {
		return w.Bytes()
	}

	w.U32(f.RootID)
	w.U32(uint32(len(f.NameSets)))
	for _, ns := range slices.SortedFunc(maps.Keys(f.NameSets), cmp.Compare) {
		az := f.NameSets[ns]
		w.U32(ns)
		w.U32(az.Area)
		w.U32(az.Zone)
	}
	w.U32(uint32(len(f.DoodadSets)))
	for _, set := range f.DoodadSets {
		w.U32(uint32(len(set)))
		for _, p := range set {
			writeTransform(w, p.Transform)
			writeBounds(w, p.Bounds)
			w.FixedString(p.ModelKey, ModelKeyLength)
		}
	}
	return w.Bytes()
}

const placementRecordSize = 16*4 + 6*4 + ModelKeyLength

// decodeModelFile parses a model file of the given kind.
func decodeModelFile(data []byte, kind ModelKind) (*ModelFile, error) {
	r := binio.NewReader(data)
	tree, err := bvh.Deserialize(r)
	if err != nil {
		return nil, err
	}
	f := &ModelFile{Kind: kind, Tree: tree}
	if kind != ModelWMO {
		return f, nil
	}

	f.RootID = r.U32()
	n := r.Count(12)
	f.NameSets = make(map[uint32]AreaZone, n)
	for range n {
		ns := r.U32()
		f.NameSets[ns] = AreaZone{Area: r.U32(), Zone: r.U32()}
	}
	f.DoodadSets = make([][]PlacementRecord, r.Count(4))
	for i := range f.DoodadSets {
		set := make([]PlacementRecord, r.Count(placementRecordSize))
		for j := range set {
			set[j] = PlacementRecord{
				Transform: readTransform(r),
				Bounds:    readBounds(r),
				ModelKey:  r.FixedString(ModelKeyLength),
			}
		}
		f.DoodadSets[i] = set
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

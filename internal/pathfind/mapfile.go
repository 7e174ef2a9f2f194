package pathfind

import (
	"fmt"

	"github.com/udisondev/pathfind/internal/binio"
	"github.com/udisondev/pathfind/internal/geom"
)

// WMORecord is a static WMO placement as stored in the map file.
type WMORecord struct {
	ID        uint32
	DoodadSet uint16
	NameSet   uint16
	Transform geom.Matrix
	Bounds    geom.BoundingBox
	ModelKey  string
}

// DoodadRecord is a static doodad placement as stored in the map file.
type DoodadRecord struct {
	ID        uint32
	Transform geom.Matrix
	Bounds    geom.BoundingBox
	ModelKey  string
}

// MapFile is the decoded map file: the region presence bitmap and every
// static placement of the map.
type MapFile struct {
	HasTerrain bool
	Regions    [Regions * Regions / 8]byte
	WMOs       []WMORecord
	Doodads    []DoodadRecord
	// GlobalWMO is the only placement of a map without terrain.
	GlobalWMO *WMORecord
}

// SetRegion marks region (x, y) as present.
func (f *MapFile) SetRegion(x, y int) {
	off := y*Regions + x
	f.Regions[off/8] |= 1 << (off % 8)
}

// HasRegion reports whether region (x, y) is present.
func (f *MapFile) HasRegion(x, y int) bool {
	if !validRegion(x, y) {
		return false
	}
	off := y*Regions + x
	return f.Regions[off/8]&(1<<(off%8)) != 0
}

func writeTransform(w *binio.Writer, m geom.Matrix) {
	for _, v := range geom.RowMajor(m) {
		w.F32(v)
	}
}

func readTransform(r *binio.Reader) geom.Matrix {
	var v [16]float32
	for i := range v {
		v[i] = r.F32()
	}
	return geom.FromRowMajor(v)
}

func writeBounds(w *binio.Writer, b geom.BoundingBox) {
	w.Vec3(b.Min)
	w.Vec3(b.Max)
}

func readBounds(r *binio.Reader) geom.BoundingBox {
	return geom.BoundingBox{Min: r.Vec3(), Max: r.Vec3()}
}

func writeWMORecord(w *binio.Writer, rec *WMORecord) {
	w.U32(rec.ID)
	w.U16(rec.DoodadSet)
	w.U16(rec.NameSet)
	writeTransform(w, rec.Transform)
	writeBounds(w, rec.Bounds)
	w.FixedString(rec.ModelKey, ModelKeyLength)
}

func readWMORecord(r *binio.Reader) WMORecord {
	return WMORecord{
		ID:        r.U32(),
		DoodadSet: r.U16(),
		NameSet:   r.U16(),
		Transform: readTransform(r),
		Bounds:    readBounds(r),
		ModelKey:  r.FixedString(ModelKeyLength),
	}
}

const (
	wmoRecordSize    = 4 + 2 + 2 + 16*4 + 6*4 + ModelKeyLength
	doodadRecordSize = 4 + 16*4 + 6*4 + ModelKeyLength
)

// Encode serializes the map file.
func (f *MapFile) Encode() []byte {
	w := binio.NewWriter()
	w.U32(MapSignature)
	w.U32(MapVersion)
	if !f.HasTerrain {
		w.U8(0)
		g := f.GlobalWMO
		if g == nil {
			g = &WMORecord{ID: GlobalWMOID, Transform: geom.Identity()}
		}
		writeWMORecord(w, g)
		return w.Bytes()
	}

	w.U8(1)
	w.Raw(f.Regions[:])
	w.U32(uint32(len(f.WMOs)))
	for i := range f.WMOs {
		writeWMORecord(w, &f.WMOs[i])
	}
	w.U32(uint32(len(f.Doodads)))
	for _, d := range f.Doodads {
		w.U32(d.ID)
		writeTransform(w, d.Transform)
		writeBounds(w, d.Bounds)
		w.FixedString(d.ModelKey, ModelKeyLength)
	}
	return w.Bytes()
}

// DecodeMapFile parses a map file.
func DecodeMapFile(data []byte) (*MapFile, error) {
	r := binio.NewReader(data)
	sig, ver := r.U32(), r.U32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if sig != MapSignature {
		return nil, fmt.Errorf("signature %#x", sig)
	}
	if ver != MapVersion {
		return nil, fmt.Errorf("version %d", ver)
	}

	f := &MapFile{HasTerrain: r.U8() != 0}
	if !f.HasTerrain {
		g := readWMORecord(r)
		if err := r.Err(); err != nil {
			return nil, err
		}
		f.GlobalWMO = &g
		return f, nil
	}

	copy(f.Regions[:], r.Bytes(len(f.Regions)))
	f.WMOs = make([]WMORecord, r.Count(wmoRecordSize))
	for i := range f.WMOs {
		f.WMOs[i] = readWMORecord(r)
	}
	f.Doodads = make([]DoodadRecord, r.Count(doodadRecordSize))
	for i := range f.Doodads {
		f.Doodads[i] = DoodadRecord{
			ID:        r.U32(),
			Transform: readTransform(r),
			Bounds:    readBounds(r),
			ModelKey:  r.FixedString(ModelKeyLength),
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

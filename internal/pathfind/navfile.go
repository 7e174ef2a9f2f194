package pathfind

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"

	"github.com/udisondev/pathfind/internal/binio"
	"github.com/udisondev/pathfind/internal/heightfield"
)

// TileRecord is the encoded form of a tile.
type TileRecord struct {
	X, Y        uint32
	WMOs        []uint32
	Doodads     []uint32
	Quad        *QuadHeights
	HeightField *heightfield.Heightfield
	Mesh        []byte
}

// NavFile is a compressed tile file: one per terrain region, or a single one
// for a map without terrain.
type NavFile struct {
	Kind  uint32
	X, Y  uint32
	Tiles []TileRecord
}

// Encode serializes and compresses the file.
func (f *NavFile) Encode() ([]byte, error) {
	w := binio.NewWriter()
	w.U32(NavSignature)
	w.U32(NavVersion)
	w.U32(f.Kind)
	w.U32(f.X)
	w.U32(f.Y)
	w.U32(uint32(len(f.Tiles)))
	for i := range f.Tiles {
		writeTileRecord(w, &f.Tiles[i])
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(w.Bytes()); err != nil {
		return nil, fmt.Errorf("compress nav file: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress nav file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTileRecord(w *binio.Writer, t *TileRecord) {
	w.U32(t.X)
	w.U32(t.Y)
	w.U32(uint32(len(t.WMOs)))
	for _, id := range t.WMOs {
		w.U32(id)
	}
	w.U32(uint32(len(t.Doodads)))
	for _, id := range t.Doodads {
		w.U32(id)
	}
	if t.Quad != nil {
		w.U8(1)
		writeQuadHeights(w, t.Quad)
	} else {
		w.U8(0)
	}
	heightfield.WriteHeader(w, t.HeightField.Header)
	t.HeightField.WriteSpans(w)
	w.U32(uint32(len(t.Mesh)))
	w.Raw(t.Mesh)
}

// readNavFile reads and inflates a nav file. A missing file is returned as
// the underlying os error.
func readNavFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	return data, nil
}

type navHeader struct {
	kind  uint32
	x, y  uint32
	tiles int
}

// tileRecordMinSize is the smallest possible encoded tile record.
const tileRecordMinSize = 4*2 + 4 + 4 + 1 + 4*2 + 4*6 + 4*2 + 4

func readNavHeader(r *binio.Reader, path string) (navHeader, error) {
	sig, ver := r.U32(), r.U32()
	h := navHeader{kind: r.U32(), x: r.U32(), y: r.U32()}
	h.tiles = r.Count(tileRecordMinSize)
	if err := r.Err(); err != nil {
		return h, &FormatError{Path: path, Err: err}
	}
	switch {
	case sig != NavSignature:
		return h, formatErrorf(path, "signature %#x", sig)
	case ver != NavVersion:
		return h, formatErrorf(path, "version %#x", ver)
	case h.kind != NavKindADT && h.kind != NavKindWMO:
		return h, formatErrorf(path, "kind %#x", h.kind)
	}
	return h, nil
}

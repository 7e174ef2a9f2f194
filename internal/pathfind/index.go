package pathfind

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/udisondev/pathfind/internal/binio"
)

// IndexFileName is the model index stored in the model directory.
const IndexFileName = "bvh.idx"

// ModelIndex resolves model keys to model files and game object display ids
// to model keys. It is produced by the offline build and can be extended
// with display entries from the database.
type ModelIndex struct {
	dir      string
	files    map[string]string
	displays map[uint32]string
}

// NewModelIndex returns an empty index for models stored in dir.
func NewModelIndex(dir string) *ModelIndex {
	return &ModelIndex{
		dir:      dir,
		files:    make(map[string]string),
		displays: make(map[uint32]string),
	}
}

// NormalizeKey canonicalizes a model key: lower case with forward slashes.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, `\`, "/"))
}

// IsWMOKey reports whether key names a WMO model.
func IsWMOKey(key string) bool {
	return strings.HasSuffix(NormalizeKey(key), ".wmo")
}

// AddModel maps key to a file in the model directory.
func (ix *ModelIndex) AddModel(key, file string) {
	ix.files[NormalizeKey(key)] = file
}

// AddDisplay maps a display id to a model key.
func (ix *ModelIndex) AddDisplay(id uint32, key string) {
	ix.displays[id] = NormalizeKey(key)
}

// MergeDisplays adds every entry of displays, overriding existing ones, and
// returns how many were added.
func (ix *ModelIndex) MergeDisplays(displays map[uint32]string) int {
	for id, key := range displays {
		ix.AddDisplay(id, key)
	}
	return len(displays)
}

// ModelPath returns the file backing key.
func (ix *ModelIndex) ModelPath(key string) (string, bool) {
	file, ok := ix.files[NormalizeKey(key)]
	if !ok {
		return "", false
	}
	return filepath.Join(ix.dir, file), true
}

// DisplayModel returns the model key of a display id.
func (ix *ModelIndex) DisplayModel(id uint32) (string, bool) {
	key, ok := ix.displays[id]
	return key, ok
}

// Len returns the number of models and display entries.
func (ix *ModelIndex) Len() (models, displays int) {
	return len(ix.files), len(ix.displays)
}

// Encode serializes the index with entries in sorted order.
func (ix *ModelIndex) Encode() []byte {
	w := binio.NewWriter()
	w.U32(IndexSignature)
	keys := slices.Sorted(maps.Keys(ix.files))
	w.U32(uint32(len(keys)))
	for _, k := range keys {
		w.String(k)
		w.String(ix.files[k])
	}
	ids := slices.Sorted(maps.Keys(ix.displays))
	w.U32(uint32(len(ids)))
	for _, id := range ids {
		w.U32(id)
		w.String(ix.displays[id])
	}
	return w.Bytes()
}

// LoadModelIndex reads the index file of dir.
func LoadModelIndex(dir string) (*ModelIndex, error) {
	path := filepath.Join(dir, IndexFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model index: %w", err)
	}

	ix := NewModelIndex(dir)
	r := binio.NewReader(data)
	if sig := r.U32(); r.Err() == nil && sig != IndexSignature {
		return nil, formatErrorf(path, "signature %#x", sig)
	}
	for range r.Count(8) {
		key := r.String()
		ix.AddModel(key, r.String())
	}
	for range r.Count(8) {
		id := r.U32()
		ix.AddDisplay(id, r.String())
	}
	if err := r.Err(); err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	return ix, nil
}

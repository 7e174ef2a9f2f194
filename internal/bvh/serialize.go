package bvh

import (
	"errors"
	"fmt"

	"github.com/udisondev/pathfind/internal/binio"
	"github.com/udisondev/pathfind/internal/geom"
)

const (
	StartMagic uint32 = 'B'<<24 | 'V'<<16 | 'H'<<8 | '1'
	EndMagic   uint32 = 'F'<<24 | 'O'<<16 | 'O'<<8 | 'B'
)

// ErrBadMagic is returned when either magic of a serialized tree is wrong.
var ErrBadMagic = errors.New("bad bvh magic")

// Serialize appends the tree to w.
func (t *Tree) Serialize(w *binio.Writer) {
	w.U32(StartMagic)

	w.U32(uint32(len(t.vertices)))
	for _, v := range t.vertices {
		w.Vec3(v)
	}

	w.U32(uint32(len(t.indices)))
	for _, i := range t.indices {
		w.I32(i)
	}

	w.U32(uint32(len(t.nodes)))
	for _, n := range t.nodes {
		w.U8(n.Faces)
		if n.IsLeaf() {
			w.U32(n.Start)
		} else {
			w.U32(n.Left)
			w.U32(n.Right)
		}
		w.Vec3(n.Bounds.Min)
		w.Vec3(n.Bounds.Max)
	}

	w.U32(EndMagic)
}

// Deserialize reads a tree written by Serialize and validates its references.
func Deserialize(r *binio.Reader) (*Tree, error) {
	if magic := r.U32(); r.Err() == nil && magic != StartMagic {
		return nil, fmt.Errorf("start magic %#x: %w", magic, ErrBadMagic)
	}

	t := &Tree{}
	nv := r.Count(12)
	t.vertices = make([]geom.Vector3, nv)
	for i := range t.vertices {
		t.vertices[i] = r.Vec3()
	}

	ni := r.Count(4)
	t.indices = make([]int32, ni)
	for i := range t.indices {
		t.indices[i] = r.I32()
	}

	nn := r.Count(29)
	t.nodes = make([]Node, nn)
	for i := range t.nodes {
		n := &t.nodes[i]
		n.Faces = r.U8()
		if n.Faces > 0 {
			n.Start = r.U32()
		} else {
			n.Left = r.U32()
			n.Right = r.U32()
		}
		n.Bounds.Min = r.Vec3()
		n.Bounds.Max = r.Vec3()
	}

	magic := r.U32()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read bvh: %w", err)
	}
	if magic != EndMagic {
		return nil, fmt.Errorf("end magic %#x: %w", magic, ErrBadMagic)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) validate() error {
	if len(t.indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(t.indices))
	}
	for _, i := range t.indices {
		if i < 0 || int(i) >= len(t.vertices) {
			return fmt.Errorf("vertex index %d out of range", i)
		}
	}
	faces := uint32(t.FaceCount())
	nodes := uint32(len(t.nodes))
	for i, n := range t.nodes {
		if n.IsLeaf() {
			if n.Start+uint32(n.Faces) > faces {
				return fmt.Errorf("node %d references faces past %d", i, faces)
			}
			continue
		}
		if n.Left <= uint32(i) || n.Right <= uint32(i) || n.Left >= nodes || n.Right >= nodes {
			return fmt.Errorf("node %d has invalid children %d, %d", i, n.Left, n.Right)
		}
	}
	return nil
}

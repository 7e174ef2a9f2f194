// Package bvh implements the bounding volume hierarchy used to ray cast
// against model geometry.
package bvh

import (
	"slices"

	"github.com/udisondev/pathfind/internal/geom"
)

const (
	// MaxFacesPerLeaf bounds the face run referenced by a leaf.
	MaxFacesPerLeaf = 6

	// splitTraversalCost is the fixed cost term of the surface area heuristic.
	splitTraversalCost = 0.125
)

// Node is one entry of the flat node array. Inner nodes have Faces == 0 and
// address their children through Left and Right; leaves address the face run
// [Start, Start+Faces).
type Node struct {
	Bounds geom.BoundingBox
	Faces  uint8
	Start  uint32
	Left   uint32
	Right  uint32
}

// IsLeaf reports whether the node references faces.
func (n Node) IsLeaf() bool {
	return n.Faces > 0
}

// Tree is an immutable spatial index over a triangle soup.
type Tree struct {
	vertices []geom.Vector3
	indices  []int32
	nodes    []Node
}

// Vertices returns the model space vertices.
func (t *Tree) Vertices() []geom.Vector3 { return t.vertices }

// Indices returns the face indices, three per face, in leaf order.
func (t *Tree) Indices() []int32 { return t.indices }

// Nodes returns the flat node array. Index 0 is the root.
func (t *Tree) Nodes() []Node { return t.nodes }

// FaceCount is the number of triangles.
func (t *Tree) FaceCount() int { return len(t.indices) / 3 }

// Bounds of the whole model. Empty trees return an invalid box.
func (t *Tree) Bounds() geom.BoundingBox {
	if len(t.nodes) == 0 {
		return geom.EmptyBox()
	}
	return t.nodes[0].Bounds
}

// Triangle returns the corners of face i.
func (t *Tree) Triangle(i int) (geom.Vector3, geom.Vector3, geom.Vector3) {
	return t.vertices[t.indices[i*3]], t.vertices[t.indices[i*3+1]], t.vertices[t.indices[i*3+2]]
}

type buildFace struct {
	index    int
	bounds   geom.BoundingBox
	centroid geom.Vector3
}

type builder struct {
	faces []buildFace
	nodes []Node
	// scratch buffers for the split search
	lower, upper []float32
}

// Build creates a tree over the triangles described by indices (three per
// face). The slices are copied.
func Build(vertices []geom.Vector3, indices []int32) *Tree {
	t := &Tree{
		vertices: slices.Clone(vertices),
	}
	n := len(indices) / 3
	if n == 0 {
		return t
	}

	b := &builder{
		faces: make([]buildFace, n),
		lower: make([]float32, n),
		upper: make([]float32, n),
	}
	for i := range n {
		box := geom.BoxFromPoints([]geom.Vector3{
			vertices[indices[i*3]],
			vertices[indices[i*3+1]],
			vertices[indices[i*3+2]],
		})
		b.faces[i] = buildFace{index: i, bounds: box, centroid: box.Center()}
	}

	b.nodes = append(b.nodes, Node{})
	b.build(0, 0, n)

	// Rewrite the index array in leaf order so leaves address contiguous runs.
	t.indices = make([]int32, 0, len(indices))
	for _, f := range b.faces {
		t.indices = append(t.indices, indices[f.index*3], indices[f.index*3+1], indices[f.index*3+2])
	}
	t.nodes = b.nodes
	return t
}

func (b *builder) build(node, start, count int) {
	bounds := geom.EmptyBox()
	for _, f := range b.faces[start : start+count] {
		bounds.Connect(f.bounds)
	}

	if count <= MaxFacesPerLeaf {
		b.nodes[node] = Node{Bounds: bounds, Faces: uint8(count), Start: uint32(start)}
		return
	}

	split := b.partition(start, count, bounds)

	left := len(b.nodes)
	b.nodes = append(b.nodes, Node{}, Node{})
	b.nodes[node] = Node{Bounds: bounds, Left: uint32(left), Right: uint32(left + 1)}

	b.build(left, start, split)
	b.build(left+1, start+split, count-split)
}

// partition sorts faces[start:start+count] along the best axis and returns
// the number of faces that go to the left child.
func (b *builder) partition(start, count int, bounds geom.BoundingBox) int {
	faces := b.faces[start : start+count]
	total := bounds.SurfaceArea()
	if total <= 0 {
		sortFaces(faces, longestAxis(bounds))
		return count / 2
	}
	invTotal := 1 / total

	bestAxis, bestIndex := 0, 0
	bestCost := float32(0)
	first := true

	for axis := range 3 {
		sortFaces(faces, axis)

		acc := geom.EmptyBox()
		for i := range count {
			acc.Connect(faces[i].bounds)
			b.lower[i] = acc.SurfaceArea() * invTotal
		}
		acc = geom.EmptyBox()
		for i := count - 1; i >= 0; i-- {
			acc.Connect(faces[i].bounds)
			b.upper[i] = acc.SurfaceArea() * invTotal
		}

		for i := 0; i < count-1; i++ {
			below := b.lower[i]
			above := b.upper[i+1]
			cost := splitTraversalCost + below*float32(i) + above*float32(count-i)
			if first || cost <= bestCost {
				first = false
				bestCost = cost
				bestAxis = axis
				bestIndex = i
			}
		}
	}

	if bestAxis != 2 {
		sortFaces(faces, bestAxis)
	}
	return bestIndex + 1
}

func sortFaces(faces []buildFace, axis int) {
	slices.SortFunc(faces, func(a, b buildFace) int {
		switch {
		case a.centroid[axis] < b.centroid[axis]:
			return -1
		case a.centroid[axis] > b.centroid[axis]:
			return 1
		}
		return a.index - b.index
	})
}

func longestAxis(b geom.BoundingBox) int {
	e := b.Extent()
	switch {
	case e[0] >= e[1] && e[0] >= e[2]:
		return 0
	case e[1] >= e[2]:
		return 1
	}
	return 2
}

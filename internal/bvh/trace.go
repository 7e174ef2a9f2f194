package bvh

import "github.com/udisondev/pathfind/internal/geom"

// IntersectRay finds the closest face hit by ray that is nearer than the
// ray's current best distance. On success the ray distance is updated and the
// face index is returned.
func (t *Tree) IntersectRay(ray *geom.Ray) (int, bool) {
	if len(t.nodes) == 0 {
		return -1, false
	}
	if _, ok := ray.IntersectBox(t.nodes[0].Bounds); !ok {
		return -1, false
	}
	face := -1
	t.trace(0, ray, &face)
	return face, face >= 0
}

func (t *Tree) trace(index uint32, ray *geom.Ray, face *int) {
	node := &t.nodes[index]
	if node.IsLeaf() {
		end := int(node.Start) + int(node.Faces)
		for i := int(node.Start); i < end; i++ {
			a, b, c := t.Triangle(i)
			if d, ok := ray.IntersectTriangle(a, b, c); ok && d < ray.Distance() {
				ray.SetDistance(d)
				*face = i
			}
		}
		return
	}

	leftDist, leftHit := ray.IntersectBox(t.nodes[node.Left].Bounds)
	rightDist, rightHit := ray.IntersectBox(t.nodes[node.Right].Bounds)

	near, far := node.Left, node.Right
	nearDist, farDist := leftDist, rightDist
	nearHit, farHit := leftHit, rightHit
	if rightHit && (!leftHit || rightDist < leftDist) {
		near, far = far, near
		nearDist, farDist = farDist, nearDist
		nearHit, farHit = farHit, nearHit
	}

	if nearHit && nearDist < ray.Distance() {
		t.trace(near, ray, face)
	}
	if farHit && farDist < ray.Distance() {
		t.trace(far, ray, face)
	}
}

package geom

// HeightOnTriangle interpolates the height of triangle (a, b, c) at the
// horizontal position of p when p lies inside its projection.
func HeightOnTriangle(p, a, b, c Vector3) (float32, bool) {
	const eps = 1e-4

	v0x, v0y := c[0]-a[0], c[1]-a[1]
	v1x, v1y := b[0]-a[0], b[1]-a[1]
	v2x, v2y := p[0]-a[0], p[1]-a[1]

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return 0, false
	}
	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv

	if u >= -eps && v >= -eps && u+v <= 1+eps {
		return a[2] + (c[2]-a[2])*u + (b[2]-a[2])*v, true
	}
	return 0, false
}

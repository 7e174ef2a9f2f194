package pathfind

import "math"

// The world grid is indexed from the north-west corner: tile and region x
// grow southward along world -Y, y grows along world -X.

// WorldToTile returns the tile containing world position (x, y).
func WorldToTile(x, y float32) (int32, int32) {
	tx := math.Floor((worldOrigin - float64(y)) / TileSize)
	ty := math.Floor((worldOrigin - float64(x)) / TileSize)
	return int32(tx), int32(ty)
}

// WorldToRegion returns the region containing world position (x, y).
func WorldToRegion(x, y float32) (int, int) {
	rx := math.Floor((worldOrigin - float64(y)) / RegionSize)
	ry := math.Floor((worldOrigin - float64(x)) / RegionSize)
	return int(rx), int(ry)
}

// TileNorthwestCorner returns the world position of the tile corner with
// the greatest X and Y.
func TileNorthwestCorner(tx, ty int32) (float32, float32) {
	x := worldOrigin - float64(ty)*TileSize
	y := worldOrigin - float64(tx)*TileSize
	return float32(x), float32(y)
}

// TileRegion returns the region a tile belongs to.
func TileRegion(tx, ty int32) (int, int) {
	return int(tx) / TilesPerRegion, int(ty) / TilesPerRegion
}

func validRegion(x, y int) bool {
	return x >= 0 && x < Regions && y >= 0 && y < Regions
}

package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slopedQuad rises one yard per quad along world -X.
func slopedQuad() *QuadHeights {
	q := &QuadHeights{}
	for row := 0; row <= QuadsPerTile; row++ {
		base := row * quadRowStride
		for i := 0; i < quadMidOffset; i++ {
			q.Heights[base+i] = float32(row)
		}
		if row < QuadsPerTile {
			for i := 0; i < QuadsPerTile; i++ {
				q.Heights[base+quadMidOffset+i] = float32(row) + 0.5
			}
		}
	}
	return q
}

func TestQuadHeight(t *testing.T) {
	const quadWidth = TileSize / QuadsPerTile
	q := slopedQuad()
	nwX, nwY := TileNorthwestCorner(3, 5)

	tests := []struct {
		name   string
		dx, dy float32 // distance from the north-west corner, in quads
		want   float32
	}{
		{"corner", 0, 0, 0},
		{"midpoint", 0.5, 0.5, 0.5},
		{"inside", 2.25, 1.5, 2.25},
		{"last row", 7.75, 7.9, 7.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := q.Height(3, 5, nwX-tt.dx*quadWidth, nwY-tt.dy*quadWidth)
			require.True(t, ok)
			assert.InDelta(t, tt.want, h, 1e-3)
		})
	}

	_, ok := q.Height(3, 5, nwX+1, nwY-1)
	assert.False(t, ok, "outside the tile")
}

func TestQuadHoles(t *testing.T) {
	const quadWidth = TileSize / QuadsPerTile
	q := slopedQuad()
	q.SetHole(2, 6)
	assert.True(t, q.IsHole(2, 6))
	assert.False(t, q.IsHole(6, 2))

	nwX, nwY := TileNorthwestCorner(0, 0)
	_, ok := q.Height(0, 0, nwX-6.5*quadWidth, nwY-2.5*quadWidth)
	assert.False(t, ok)
	_, ok = q.Height(0, 0, nwX-2.5*quadWidth, nwY-6.5*quadWidth)
	assert.True(t, ok)
}

func TestWorldToTile(t *testing.T) {
	nwX, nwY := TileNorthwestCorner(31, 40)
	tx, ty := WorldToTile(nwX-1, nwY-1)
	assert.Equal(t, int32(31), tx)
	assert.Equal(t, int32(40), ty)

	rx, ry := TileRegion(tx, ty)
	assert.Equal(t, 1, rx)
	assert.Equal(t, 2, ry)

	wx, wy := WorldToRegion(nwX-1, nwY-1)
	assert.Equal(t, rx, wx)
	assert.Equal(t, ry, wy)
}

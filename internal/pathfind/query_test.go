package pathfind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathfind/internal/geom"
	"github.com/udisondev/pathfind/internal/pathfind"
	"github.com/udisondev/pathfind/internal/testutil"
)

func TestFindHeights(t *testing.T) {
	m := loadedTerrain(t)

	tests := []struct {
		name string
		pos  geom.Vector3
		want []float32
	}{
		{"open ground", testutil.OpenGround, []float32{0}},
		{"house floor and roof", testutil.HouseCenter, []float32{0, testutil.HouseHeight}},
		{"unloaded", geom.Vector3{17040, 16520, 0}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.FindHeights(tt.pos.X(), tt.pos.Y())
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 0.01)
			}
		})
	}
}

func TestFindPreciseZ(t *testing.T) {
	m := loadedTerrain(t)

	z, err := m.FindPreciseZ(testutil.OpenGround.X(), testutil.OpenGround.Y(), 0.2)
	require.NoError(t, err)
	assert.Equal(t, float32(0), z)

	z, err = m.FindPreciseZ(testutil.HouseCenter.X(), testutil.HouseCenter.Y(), 4.1)
	require.NoError(t, err)
	assert.InDelta(t, testutil.HouseHeight, z, 0.001)

	_, err = m.FindPreciseZ(testutil.HolePoint.X(), testutil.HolePoint.Y(), 0)
	require.ErrorIs(t, err, pathfind.ErrNoHeightCandidate)
}

func TestFindHeight(t *testing.T) {
	m := loadedTerrain(t)

	z, ok := m.FindHeight(geom.Vector3{17040, 17060, 0.3}, testutil.OpenGround.X(), testutil.OpenGround.Y())
	require.True(t, ok)
	assert.InDelta(t, 0, z, 0.01)

	_, ok = m.FindHeight(testutil.OpenGround, 17040, 16520)
	assert.False(t, ok)
}

func TestZoneAndArea(t *testing.T) {
	m := loadedTerrain(t)

	zone, area, ok := m.ZoneAndArea(testutil.HouseCenter.Add(geom.Vector3{0, 0, 10}))
	require.True(t, ok)
	assert.Equal(t, testutil.HouseZone, zone)
	assert.Equal(t, testutil.HouseArea, area)

	zone, area, ok = m.ZoneAndArea(testutil.OpenGround.Add(geom.Vector3{0, 0, 2}))
	require.True(t, ok)
	assert.Equal(t, testutil.TerrainZone, zone)
	assert.Equal(t, testutil.TerrainArea, area)

	// no tile loaded there
	_, _, ok = m.ZoneAndArea(geom.Vector3{17040, 16520, 0})
	assert.False(t, ok)
}

func TestZoneAndAreaUnmappedNameSet(t *testing.T) {
	m := loadedTerrain(t)

	inst, err := m.Instances().WMO(testutil.HouseID)
	require.NoError(t, err)
	require.NotNil(t, inst.Model())
	delete(inst.Model().NameSets, uint32(inst.NameSet))

	// the roof hit still decides the pair, which falls back to zero
	zone, area, ok := m.ZoneAndArea(testutil.HouseCenter.Add(geom.Vector3{0, 0, 10}))
	require.True(t, ok)
	assert.Zero(t, zone)
	assert.Zero(t, area)
}

func TestLineOfSight(t *testing.T) {
	m := loadedTerrain(t)

	tests := []struct {
		name        string
		start, stop geom.Vector3
		doodads     bool
		want        bool
	}{
		{"through house", geom.Vector3{17050, 17060, 1}, geom.Vector3{17050, 17040, 1}, false, false},
		{"over house", geom.Vector3{17050, 17060, 10}, geom.Vector3{17050, 17040, 10}, false, true},
		{"barrel ignored", geom.Vector3{17052, 17045, 4.5}, geom.Vector3{17052, 17058, 4.5}, false, true},
		{"barrel blocks", geom.Vector3{17052, 17045, 4.5}, geom.Vector3{17052, 17058, 4.5}, true, false},
		{"rock ignored", geom.Vector3{17050, 17030, 0.5}, geom.Vector3{17050, 17010, 0.5}, false, true},
		{"rock blocks", geom.Vector3{17050, 17030, 0.5}, geom.Vector3{17050, 17010, 0.5}, true, false},
		{"across tiles", geom.Vector3{17050, 17060, 1}, geom.Vector3{17050, 17010, 1}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.LineOfSight(tt.start, tt.stop, tt.doodads))
		})
	}
}

func TestRayIndependentOfTileOrder(t *testing.T) {
	m := loadedTerrain(t)
	a, _ := m.Tile(0, 0)
	b, _ := m.Tile(1, 0)

	start := geom.Vector3{17050, 17060, 0.5}
	end := geom.Vector3{17050, 17010, 0.5}

	d1, hit1 := m.RayDistance(start, end, []*pathfind.Tile{a, b}, true)
	d2, hit2 := m.RayDistance(start, end, []*pathfind.Tile{b, a}, true)
	require.True(t, hit1)
	require.True(t, hit2)
	assert.Equal(t, d1, d2)

	// the house front face is 7 yards into a 50 yard ray
	assert.InDelta(t, 7.0/50.0, d1, 1e-4)

	// only the rock remains behind the house
	d3, hit3 := m.RayDistance(geom.Vector3{17050, 17040, 0.5}, end, []*pathfind.Tile{b, a}, true)
	require.True(t, hit3)
	assert.InDelta(t, 19.5/30.0, d3, 1e-4)
}

func pathLength(points []geom.Vector3) float32 {
	var l float32
	for i := 1; i < len(points); i++ {
		l += geom.Distance2D(points[i-1], points[i])
	}
	return l
}

func TestFindPath(t *testing.T) {
	m := loadedTerrain(t)

	start := testutil.OpenGround
	end := geom.Vector3{17040, 17010, 0}
	path := m.FindPath(start, end, false)
	require.NotEmpty(t, path)

	assert.Less(t, geom.Distance2D(path[0], start), float32(0.5))
	assert.Less(t, geom.Distance2D(path[len(path)-1], end), float32(0.5))
	assert.LessOrEqual(t, pathLength(path), float32(48*1.1))
	for _, p := range path {
		assert.InDelta(t, 0, p.Z(), 0.3)
	}
}

func TestFindPathAroundHouse(t *testing.T) {
	m := loadedTerrain(t)

	start := geom.Vector3{17050, 17058, 0}
	end := geom.Vector3{17050, 17042, 0}
	path := m.FindPath(start, end, false)
	require.NotEmpty(t, path)
	require.Greater(t, len(path), 2)

	// sample every segment and make sure none crosses the house footprint
	inside := func(p geom.Vector3) bool {
		return p.X() > 17047.5 && p.X() < 17052.5 && p.Y() > 17047.5 && p.Y() < 17052.5
	}
	for i := 1; i < len(path); i++ {
		for s := float32(0); s <= 1; s += 0.05 {
			assert.False(t, inside(geom.Lerp(path[i-1], path[i], s)), "segment %d crosses the house", i)
		}
	}
}

func TestFindPathNotFound(t *testing.T) {
	m := loadedTerrain(t)

	// nothing loaded there
	assert.Nil(t, m.FindPath(testutil.OpenGround, geom.Vector3{17040, 16520, 0}, true))

	// the roof is not connected to the ground
	roof := testutil.HouseCenter.Add(geom.Vector3{0, 0, testutil.HouseHeight})
	assert.Nil(t, m.FindPath(testutil.OpenGround, roof, false))
	partial := m.FindPath(testutil.OpenGround, roof, true)
	require.NotEmpty(t, partial)
	assert.InDelta(t, 0, partial[len(partial)-1].Z(), 0.3)
}

func TestFindRandomPointAroundCircle(t *testing.T) {
	m := loadedTerrain(t)

	for range 20 {
		p, ok := m.FindRandomPointAroundCircle(testutil.OpenGround, 3)
		require.True(t, ok)
		assert.InDelta(t, 0, p.Z(), 0.3)
		// the whole polygon reached within the radius is sampled
		x, y := pathfind.WorldToTile(p.X(), p.Y())
		assert.Equal(t, int32(0), y)
		assert.Contains(t, []int32{0, 1}, x)
	}

	_, ok := m.FindRandomPointAroundCircle(geom.Vector3{17040, 16520, 0}, 3)
	assert.False(t, ok)
}

func TestFindPointInBetweenVectors(t *testing.T) {
	m := loadedTerrain(t)

	p, ok := m.FindPointInBetweenVectors(testutil.OpenGround, geom.Vector3{17040, 17010, 0}, 10)
	require.True(t, ok)
	assert.InDelta(t, 17040, p.X(), 0.01)
	assert.InDelta(t, 17048, p.Y(), 0.01)
	assert.InDelta(t, 0, p.Z(), 0.3)

	_, ok = m.FindPointInBetweenVectors(testutil.OpenGround, testutil.OpenGround, 1)
	assert.False(t, ok)
}

func TestFindPointInBetweenVectorsBeyondEnd(t *testing.T) {
	m := loadedTerrain(t)

	_, ok := m.FindPointInBetweenVectors(testutil.OpenGround, geom.Vector3{17040, 17050, 0}, 100)
	assert.False(t, ok)

	// exactly at the end still resolves
	p, ok := m.FindPointInBetweenVectors(testutil.OpenGround, geom.Vector3{17040, 17050, 0}, 8)
	require.True(t, ok)
	assert.InDelta(t, 17050, p.Y(), 0.01)
}

func TestFindPointInBetweenVectorsEndHeight(t *testing.T) {
	m := loadedTerrain(t)

	// nothing within reach of the start height, the end height snaps
	start := testutil.OpenGround.Add(geom.Vector3{0, 0, 30})
	p, ok := m.FindPointInBetweenVectors(start, geom.Vector3{17040, 17010, 0}, 10)
	require.True(t, ok)
	assert.InDelta(t, 0, p.Z(), 0.3)

	// neither height is near the mesh
	_, ok = m.FindPointInBetweenVectors(start, geom.Vector3{17040, 17010, 30}, 10)
	assert.False(t, ok)
}

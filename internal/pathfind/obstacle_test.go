package pathfind_test

import (
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathfind/internal/geom"
	"github.com/udisondev/pathfind/internal/pathfind"
	"github.com/udisondev/pathfind/internal/testutil"
)

func heightsAt(t *testing.T, m *pathfind.Map, p geom.Vector3) []float32 {
	t.Helper()
	got, err := m.FindHeights(p.X(), p.Y())
	require.NoError(t, err)
	return got
}

func TestAddGameObject(t *testing.T) {
	m := loadedTerrain(t)
	tile, _ := m.Tile(0, 0)
	oldRef := tile.NavRef()
	require.NotZero(t, oldRef)
	resident := m.Models().Resident()

	require.NoError(t, m.AddGameObjectWithOrientation(1, testutil.CrateDisplay, testutil.OpenGround, 0, 0))

	heights := heightsAt(t, m, testutil.OpenGround)
	require.Len(t, heights, 1)
	assert.InDelta(t, testutil.CrateHeight, heights[0], 0.01)

	newRef := tile.NavRef()
	assert.NotEqual(t, oldRef, newRef)
	assert.Equal(t, 2, m.NavMesh().TileCount())
	assert.False(t, m.NavMesh().HasTile(oldRef))
	navRef, ok := m.NavMesh().TileRefAt(testutil.OpenGround)
	require.True(t, ok)
	assert.Equal(t, newRef, navRef)

	assert.True(t, tile.HeightFieldLoaded())
	assert.Len(t, tile.Temporary(), 1)
	assert.Equal(t, 1, m.GameObjects())
	assert.Equal(t, resident+1, m.Models().Resident())

	// the neighbouring tile is untouched
	other, _ := m.Tile(1, 0)
	assert.Empty(t, other.Temporary())
	assert.False(t, other.HeightFieldLoaded())
}

func TestAddGameObjectForms(t *testing.T) {
	m := loadedTerrain(t)
	p1 := geom.Vector3{17040, 17045, 0}
	p2 := geom.Vector3{17040, 17040, 0}

	require.NoError(t, m.AddGameObjectWithQuaternion(1, testutil.CrateDisplay, p1, mgl32.QuatRotate(0.5, mgl32.Vec3{0, 0, 1}), 0))
	require.NoError(t, m.AddGameObject(2, testutil.CrateDisplay, p2, geom.Identity(), 0))
	assert.Equal(t, 2, m.GameObjects())

	for _, p := range []geom.Vector3{p1, p2} {
		heights := heightsAt(t, m, p)
		require.Len(t, heights, 1)
		assert.InDelta(t, testutil.CrateHeight, heights[0], 0.01)
	}
}

func TestAddGameObjectRejects(t *testing.T) {
	m := loadedTerrain(t)
	require.NoError(t, m.AddGameObjectWithOrientation(1, testutil.CrateDisplay, testutil.OpenGround, 0, 0))

	err := m.AddGameObjectWithOrientation(1, testutil.CrateDisplay, geom.Vector3{17040, 17040, 0}, 0, 0)
	require.ErrorIs(t, err, pathfind.ErrDuplicateGameObject)

	err = m.AddGameObjectWithOrientation(2, testutil.HouseDisplay, geom.Vector3{17040, 17040, 0}, 0, 0)
	require.ErrorIs(t, err, pathfind.ErrUnsupportedFeature)

	err = m.AddGameObjectWithOrientation(3, 999, geom.Vector3{17040, 17040, 0}, 0, 0)
	var de *pathfind.DanglingReferenceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "display", de.Kind)

	var zero geom.Matrix
	err = m.AddGameObject(4, testutil.CrateDisplay, geom.Vector3{17040, 17040, 0}, zero, 0)
	require.ErrorIs(t, err, geom.ErrNotInvertible)

	assert.Equal(t, 1, m.GameObjects())
}

func TestAddGameObjectOutsideLoadedTiles(t *testing.T) {
	m := loadedTerrain(t)
	resident := m.Models().Resident()

	require.NoError(t, m.AddGameObjectWithOrientation(1, testutil.CrateDisplay, geom.Vector3{17040, 16520, 0}, 0, 0))
	assert.Equal(t, 0, m.GameObjects())
	assert.Equal(t, resident, m.Models().Resident())
}

func TestAddGameObjectAcrossTiles(t *testing.T) {
	m := loadedTerrain(t)
	a, _ := m.Tile(0, 0)
	b, _ := m.Tile(1, 0)

	_, borderY := pathfind.TileNorthwestCorner(1, 0)
	require.NoError(t, m.AddGameObjectWithOrientation(1, testutil.CrateDisplay, geom.Vector3{17040, borderY, 0}, 0, 0))

	assert.Len(t, a.Temporary(), 1)
	assert.Len(t, b.Temporary(), 1)
	assert.Equal(t, 2, m.NavMesh().TileCount())

	// both tiles belong to region (0,0)
	m.UnloadRegion(0, 0)
	assert.Equal(t, 0, m.GameObjects())
}

func TestRemoveGameObject(t *testing.T) {
	m := loadedTerrain(t)
	resident := m.Models().Resident()
	before := heightsAt(t, m, testutil.OpenGround)

	require.NoError(t, m.AddGameObjectWithOrientation(1, testutil.CrateDisplay, testutil.OpenGround, 0, 0))
	require.NoError(t, m.AddGameObjectWithOrientation(2, testutil.CrateDisplay, geom.Vector3{17040, 17040, 0}, 0, 0))

	ok, err := m.RemoveGameObject(1)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, before, heightsAt(t, m, testutil.OpenGround))
	heights := heightsAt(t, m, geom.Vector3{17040, 17040, 0})
	require.Len(t, heights, 1)
	assert.InDelta(t, testutil.CrateHeight, heights[0], 0.01)
	assert.Equal(t, 1, m.GameObjects())

	ok, err = m.RemoveGameObject(1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.RemoveGameObject(2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, m.GameObjects())
	assert.Equal(t, resident, m.Models().Resident())
	assert.Equal(t, 2, m.NavMesh().TileCount())
}

func TestGameObjectsWithoutRegionFile(t *testing.T) {
	w := testutil.BuildWorld(t)
	m := openTerrain(t, w, pathfind.Options{})
	ok, err := m.LoadRegion(0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	before := heightsAt(t, m, testutil.OpenGround)

	// height fields come from the spans kept at load time
	require.NoError(t, os.Remove(pathfind.RegionPath(w.DataPath, testutil.TerrainMap, 0, 0)))

	require.NoError(t, m.AddGameObjectWithOrientation(1, testutil.CrateDisplay, testutil.OpenGround, 0, 0))
	heights := heightsAt(t, m, testutil.OpenGround)
	require.Len(t, heights, 1)
	assert.InDelta(t, testutil.CrateHeight, heights[0], 0.01)

	ok, err = m.RemoveGameObject(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, before, heightsAt(t, m, testutil.OpenGround))
}

func TestUnloadDropsGameObjects(t *testing.T) {
	m := loadedTerrain(t)
	resident := m.Models().Resident()
	require.NoError(t, m.AddGameObjectWithOrientation(1, testutil.CrateDisplay, testutil.OpenGround, 0, 0))

	m.UnloadRegion(0, 0)
	assert.Equal(t, 0, m.GameObjects())
	assert.Equal(t, 0, m.Models().Resident())

	ok, err := m.LoadRegion(0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resident, m.Models().Resident())
	assert.Equal(t, []float32{0}, heightsAt(t, m, testutil.OpenGround))
}

func TestLineOfSightGameObject(t *testing.T) {
	m := loadedTerrain(t)
	start := geom.Vector3{17036, 17058, 0.5}
	stop := geom.Vector3{17044, 17058, 0.5}
	require.True(t, m.LineOfSight(start, stop, true))

	require.NoError(t, m.AddGameObjectWithOrientation(1, testutil.CrateDisplay, testutil.OpenGround, 0, 0))
	assert.False(t, m.LineOfSight(start, stop, true))
	assert.True(t, m.LineOfSight(start, stop, false))
}

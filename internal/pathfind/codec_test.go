package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathfind/internal/binio"
	"github.com/udisondev/pathfind/internal/geom"
)

func TestMapFileRoundTrip(t *testing.T) {
	transform := geom.Translation(geom.Vector3{1, 2, 3}).Mul4(geom.RotationZ(0.3))
	f := &MapFile{HasTerrain: true}
	f.SetRegion(3, 7)
	f.WMOs = []WMORecord{{ID: 5, DoodadSet: 1, NameSet: 2, Transform: transform, ModelKey: "a.wmo"}}
	f.Doodads = []DoodadRecord{{ID: 9, Transform: geom.Identity(), ModelKey: "b.m2"}}

	got, err := DecodeMapFile(f.Encode())
	require.NoError(t, err)
	assert.True(t, got.HasRegion(3, 7))
	assert.False(t, got.HasRegion(7, 3))
	assert.False(t, got.HasRegion(64, 0))
	require.Len(t, got.WMOs, 1)
	assert.Equal(t, f.WMOs[0], got.WMOs[0])
	require.Len(t, got.Doodads, 1)
	assert.Equal(t, "b.m2", got.Doodads[0].ModelKey)

	_, err = DecodeMapFile([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestInstanceRegistry(t *testing.T) {
	var singular geom.Matrix
	_, err := NewInstanceRegistry(&MapFile{HasTerrain: true, WMOs: []WMORecord{{ID: 1, Transform: singular}}})
	require.ErrorIs(t, err, geom.ErrNotInvertible)

	r, err := NewInstanceRegistry(&MapFile{
		HasTerrain: true,
		Doodads:    []DoodadRecord{{ID: 4, Transform: geom.Identity(), ModelKey: `World\Rock.M2`}},
	})
	require.NoError(t, err)
	d, err := r.Doodad(4)
	require.NoError(t, err)
	assert.Equal(t, "world/rock.m2", d.ModelKey)
	assert.Nil(t, d.Model())

	_, err = r.WMO(4)
	var de *DanglingReferenceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "wmo", de.Kind)
}

func TestNavHeader(t *testing.T) {
	header := func(sig, ver, kind uint32) *binio.Reader {
		w := binio.NewWriter()
		for _, v := range []uint32{sig, ver, kind, 0, 0, 0} {
			w.U32(v)
		}
		return binio.NewReader(w.Bytes())
	}

	_, err := readNavHeader(header(NavSignature, NavVersion, NavKindADT), "ok")
	require.NoError(t, err)

	for _, r := range []*binio.Reader{
		header(MapSignature, NavVersion, NavKindADT),
		header(NavSignature, 4, NavKindADT),
		header(NavSignature, NavVersion, 7),
		binio.NewReader([]byte{1}),
	} {
		_, err := readNavHeader(r, "bad")
		var fe *FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "bad", fe.Path)
	}
}

func TestHitRank(t *testing.T) {
	wmo := hitRank{class: hitWMO, id: 9}
	nested := hitRank{class: hitWMO, id: 9, sub: 1}
	static := hitRank{class: hitStaticDoodad, id: 1}
	temp := hitRank{class: hitTemporary, id: 0}

	assert.Negative(t, wmo.compare(nested))
	assert.Negative(t, nested.compare(static))
	assert.Negative(t, static.compare(temp))
	assert.Negative(t, hitRank{class: hitWMO, id: 2}.compare(wmo))
	assert.Zero(t, temp.compare(temp))
}
